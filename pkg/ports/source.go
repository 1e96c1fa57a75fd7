package ports

import (
	"context"
	"errors"
	"image"
)

// ErrNoFrame is returned by VideoSource.FrameAt when the source has no
// decodable frame at the requested offset.
var ErrNoFrame = errors.New("ports: no frame at offset")

// VideoSource is a decoded video stream owned by a single run.
type VideoSource interface {
	// DurationMs returns the total duration in milliseconds.
	DurationMs() int

	// FrameAt decodes the frame shown at offsetMs.
	FrameAt(ctx context.Context, offsetMs int) (image.Image, error)

	// Rotation returns the container rotation hint in degrees (0, 90, 180 or 270).
	Rotation() int

	// Close releases the underlying decoder and file handles.
	Close() error
}

// SourceOpener resolves a user-supplied path into a VideoSource.
type SourceOpener interface {
	Open(ctx context.Context, path string) (VideoSource, error)
}

// StreamInfo describes the encoded video stream. Zero fields are unknown.
type StreamInfo struct {
	Codec      string
	Width      int
	Height     int
	FrameCount int
	Keyframes  int
}

// StreamDescriber is implemented by sources that can read stream details
// from the container.
type StreamDescriber interface {
	StreamInfo() StreamInfo
}
