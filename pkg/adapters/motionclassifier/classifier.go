// Package motionclassifier provides a built-in streaming action classifier.
//
// Each frame is reduced to color, contrast and motion features. Motion is
// measured against the previous frame and smoothed over time, so results
// depend on the frames seen since the last Reset.
package motionclassifier

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/user/vidaction/pkg/imageprep"
	"github.com/user/vidaction/pkg/labelmap"
	"github.com/user/vidaction/pkg/ports"
	"github.com/user/vidaction/pkg/scoring"
)

// ErrClosed is returned when the classifier is used after Close.
var ErrClosed = errors.New("motionclassifier: classifier closed")

// temporal holds the context carried between frames.
type temporal struct {
	prevLuma  []float32
	motionEMA float32
	lumaEMA   float32
	frames    int
}

// Classifier implements ports.Classifier.
type Classifier struct {
	mu     sync.Mutex
	model  Model
	labels []string
	opts   ports.ClassifierOptions
	state  temporal
	closed bool
}

// New loads the model and label assets and creates a classifier.
func New(modelPath, labelPath string, opts ports.ClassifierOptions) (*Classifier, error) {
	model, err := LoadModel(modelPath)
	if err != nil {
		return nil, err
	}
	labels, err := labelmap.LoadFile(labelPath)
	if err != nil {
		return nil, err
	}
	return NewFromModel(model, labels, opts)
}

// NewFromModel creates a classifier from an in-memory model.
func NewFromModel(model Model, labels []string, opts ports.ClassifierOptions) (*Classifier, error) {
	if err := model.Validate(len(labels)); err != nil {
		return nil, err
	}
	if opts.NumThreads <= 0 {
		opts.NumThreads = 1
	}
	return &Classifier{
		model:  model,
		labels: labels,
		opts:   opts,
	}, nil
}

// Labels returns the label list the classifier scores.
func (c *Classifier) Labels() []string {
	return c.labels
}

// Reset clears the temporal context.
func (c *Classifier) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.state = temporal{}
	return nil
}

// Classify scores one frame and advances the temporal context.
func (c *Classifier) Classify(ctx context.Context, frame image.Image) ([]ports.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	input, err := imageprep.ForModel(frame, c.model.InputSize)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}

	features := c.extract(input)

	logits := make([]float32, len(c.labels))
	for i, row := range c.model.Weights {
		var sum float32
		for j, w := range row {
			sum += w * features[j]
		}
		if len(c.model.Bias) > 0 {
			sum += c.model.Bias[i]
		}
		logits[i] = sum
	}

	return scoring.TopK(c.labels, scoring.Softmax(logits), c.opts.MaxResults), nil
}

// PreprocessForDisplay returns the center-cropped, resized model input.
func (c *Classifier) PreprocessForDisplay(frame image.Image) (image.Image, error) {
	return imageprep.ForModel(frame, c.model.InputSize)
}

// Close releases the temporal buffers. Further calls fail with ErrClosed.
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	c.closed = true
	c.state = temporal{}
	return nil
}

// partial holds per-worker sums over a band of rows.
type partial struct {
	r, g, b     float64
	luma, luma2 float64
	motion      float64
}

// extract computes the feature vector for a model-sized frame and updates
// the temporal context. Caller holds c.mu.
func (c *Classifier) extract(img *image.RGBA) []float32 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	luma := make([]float32, w*h)
	prev := c.state.prevLuma
	if len(prev) != len(luma) {
		prev = nil
	}

	workers := c.opts.NumThreads
	if workers > h {
		workers = h
	}
	parts := make([]partial, workers)
	rowsPer := (h + workers - 1) / workers

	var wg sync.WaitGroup
	for wi := 0; wi < workers; wi++ {
		y0 := wi * rowsPer
		y1 := y0 + rowsPer
		if y1 > h {
			y1 = h
		}
		wg.Add(1)
		go func(p *partial, y0, y1 int) {
			defer wg.Done()
			for y := y0; y < y1; y++ {
				for x := 0; x < w; x++ {
					i := img.PixOffset(x, y)
					r := float64(img.Pix[i]) / 255
					g := float64(img.Pix[i+1]) / 255
					b := float64(img.Pix[i+2]) / 255
					l := 0.299*r + 0.587*g + 0.114*b

					p.r += r
					p.g += g
					p.b += b
					p.luma += l
					p.luma2 += l * l

					k := y*w + x
					luma[k] = float32(l)
					if prev != nil {
						p.motion += math.Abs(l - float64(prev[k]))
					}
				}
			}
		}(&parts[wi], y0, y1)
	}
	wg.Wait()

	var total partial
	for _, p := range parts {
		total.r += p.r
		total.g += p.g
		total.b += p.b
		total.luma += p.luma
		total.luma2 += p.luma2
		total.motion += p.motion
	}

	n := float64(w * h)
	meanLuma := total.luma / n
	variance := total.luma2/n - meanLuma*meanLuma
	if variance < 0 {
		variance = 0
	}
	motion := float32(total.motion / n)

	decay := c.model.Decay
	if c.state.frames == 0 {
		c.state.motionEMA = motion
		c.state.lumaEMA = float32(meanLuma)
	} else {
		c.state.motionEMA = decay*c.state.motionEMA + (1-decay)*motion
		c.state.lumaEMA = decay*c.state.lumaEMA + (1-decay)*float32(meanLuma)
	}
	c.state.prevLuma = luma
	c.state.frames++

	features := make([]float32, NumFeatures)
	features[featMeanR] = float32(total.r / n)
	features[featMeanG] = float32(total.g / n)
	features[featMeanB] = float32(total.b / n)
	features[featLumaSpread] = float32(math.Sqrt(variance))
	features[featMotion] = motion
	features[featMotionEMA] = c.state.motionEMA
	features[featLumaEMA] = c.state.lumaEMA
	return features
}

// Ensure Classifier implements ports.Classifier
var _ ports.Classifier = (*Classifier)(nil)
