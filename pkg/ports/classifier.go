package ports

import (
	"context"
	"image"
)

// Category is a single labeled score produced by a classifier.
type Category struct {
	Label string  `json:"label" msgpack:"label"`
	Score float32 `json:"score" msgpack:"score"`
}

// ClassifierOptions configures classifier construction.
type ClassifierOptions struct {
	// MaxResults caps the number of categories returned by Classify.
	MaxResults int
	// NumThreads is the parallelism the model may use for one inference.
	NumThreads int
}

// Classifier is a streaming video-action classifier. It keeps temporal
// context between Classify calls, so calls must be made in timestamp order
// and never concurrently.
type Classifier interface {
	// Reset clears the temporal context.
	Reset() error

	// Classify runs inference on one frame and returns at most MaxResults
	// categories ordered by descending score.
	Classify(ctx context.Context, frame image.Image) ([]Category, error)

	// PreprocessForDisplay returns the frame as the model sees it.
	PreprocessForDisplay(frame image.Image) (image.Image, error)

	// Close releases model resources. It must be called exactly once.
	Close() error
}

// ContextResetter is implemented by classifiers whose reset may block,
// such as one backed by another process. Callers holding a context
// should prefer ResetContext over Reset.
type ContextResetter interface {
	ResetContext(ctx context.Context) error
}
