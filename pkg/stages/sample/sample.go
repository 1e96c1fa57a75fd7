// Package sample implements the sampling-and-reset loop.
//
// The loop walks a video source at a fixed step, classifies every decoded
// frame with a stateful classifier, and periodically resets the classifier.
// Results known before each reset are appended to the detections log so no
// result is lost when the temporal context is cleared.
package sample

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/user/vidaction/pkg/imageprep"
	"github.com/user/vidaction/pkg/pipeline"
	"github.com/user/vidaction/pkg/ports"
	"github.com/user/vidaction/pkg/scoring"
)

var (
	// ErrInvalidFPS is returned when the sampling rate does not give a step of at least 1 ms.
	ErrInvalidFPS = errors.New("sample: fps must be between 1 and 1000")
	// ErrNoSource is returned when SampleInput has no source.
	ErrNoSource = errors.New("sample: no video source")
)

// Stage runs the sampling-and-reset loop against one classifier.
// A Stage is not safe for concurrent use; callers serialise runs.
type Stage struct {
	classifier ports.Classifier
	display    ports.DisplaySink
	progress   ports.ProgressSink
	logger     ports.Logger
}

// New creates a new sample stage.
func New(classifier ports.Classifier, display ports.DisplaySink, progress ports.ProgressSink, logger ports.Logger) *Stage {
	return &Stage{
		classifier: classifier,
		display:    display,
		progress:   progress,
		logger:     logger.WithComponent("sample"),
	}
}

// Execute samples input.Source from 0 to its duration and returns run counters.
// On error the partial result is returned alongside it.
func (s *Stage) Execute(ctx context.Context, input pipeline.SampleInput) (pipeline.SampleResult, error) {
	var result pipeline.SampleResult

	if input.Source == nil {
		return result, ErrNoSource
	}
	step := input.StepMs()
	if step <= 0 {
		return result, fmt.Errorf("%w: got %d", ErrInvalidFPS, input.FPS)
	}

	duration := input.Source.DurationMs()
	if duration < 0 {
		duration = 0
	}
	result.DurationMs = duration
	result.StepMs = step
	result.Ticks = pipeline.TickCount(duration, step)

	rotation := 0
	if hint := input.Source.Rotation(); hint != 0 {
		if input.Rotation == pipeline.RotationApply {
			rotation = hint
			s.logger.Debug("Applying rotation of %d degrees", hint)
		} else {
			s.logger.Debug("Ignoring rotation hint of %d degrees", hint)
		}
	}

	if err := s.reset(ctx); err != nil {
		return result, fmt.Errorf("reset classifier: %w", err)
	}

	s.progress.SetMax(duration / 1000)
	s.progress.SetProgress(0)

	s.logger.Debug("Sampling %d ms every %d ms (%d ticks), reset after %d ms",
		duration, step, result.Ticks, input.ResetAfterMs)

	var last []ports.Category
	elapsed := 0

	for t := 0; t < duration; t += step {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		s.progress.SetProgress(t / 1000)

		frame, err := input.Source.FrameAt(ctx, t)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			result.DecodeFailures++
			s.logger.Warn("Failed to decode frame at %d ms: %v", t, err)
		} else {
			categories, err := s.classify(ctx, frame, rotation, t, input.MaxResults)
			if err != nil {
				return result, err
			}
			last = categories
			result.FramesClassified++
		}

		elapsed += step
		if elapsed > input.ResetAfterMs {
			s.emit(&result, t, last)
			if err := s.reset(ctx); err != nil {
				return result, fmt.Errorf("reset classifier at %d ms: %w", t, err)
			}
			last = nil
			elapsed = 0
			result.Resets++
			s.logger.Debug("Classifier reset at %d ms", t)
		}
	}

	if input.OnFinalizing != nil {
		input.OnFinalizing()
	}
	s.emit(&result, duration, last)
	s.progress.SetProgress(duration / 1000)

	s.logger.Debug("Sampling done: %d frames classified, %d decode failures, %d resets",
		result.FramesClassified, result.DecodeFailures, result.Resets)

	return result, nil
}

// reset clears the classifier, through ResetContext when it has one so a
// stuck reset still observes cancellation.
func (s *Stage) reset(ctx context.Context) error {
	if r, ok := s.classifier.(ports.ContextResetter); ok {
		return r.ResetContext(ctx)
	}
	return s.classifier.Reset()
}

// classify runs one frame through the classifier and shows the preview.
func (s *Stage) classify(ctx context.Context, frame image.Image, rotation, t, maxResults int) ([]ports.Category, error) {
	if rotation != 0 {
		rotated, err := imageprep.Rotate(frame, rotation)
		if err != nil {
			return nil, fmt.Errorf("rotate frame at %d ms: %w", t, err)
		}
		frame = rotated
	}

	categories, err := s.classifier.Classify(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("classify frame at %d ms: %w", t, err)
	}
	if categories == nil {
		categories = []ports.Category{}
	}
	categories = scoring.Cap(categories, maxResults)

	display, err := s.classifier.PreprocessForDisplay(frame)
	if err != nil {
		return nil, fmt.Errorf("preprocess frame at %d ms: %w", t, err)
	}

	s.display.ShowPreview(ports.Preview{
		TimestampMs: t,
		Image:       display,
		Categories:  ports.CloneCategories(categories),
	})
	return categories, nil
}

// emit appends the known results to the detections log.
func (s *Stage) emit(result *pipeline.SampleResult, t int, categories []ports.Category) {
	d := ports.Detections{
		TimestampMs: t,
		Categories:  ports.CloneCategories(categories),
	}
	s.display.AppendDetections(d)
	result.Emissions = append(result.Emissions, d)
}
