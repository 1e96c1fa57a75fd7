// Package orchestrator coordinates sampling runs over a shared classifier.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ideamans/go-l10n"

	"github.com/user/vidaction/pkg/pipeline"
	"github.com/user/vidaction/pkg/ports"
)

var (
	// ErrRunInProgress is returned when Run is called while another run holds the classifier.
	ErrRunInProgress = errors.New("orchestrator: a run is already in progress")
	// ErrClosed is returned when Run is called after Close.
	ErrClosed = errors.New("orchestrator: closed")
	// ErrSourceUnavailable wraps failures to open the video source.
	ErrSourceUnavailable = errors.New("orchestrator: video source unavailable")
)

// State is the coordinator's run state.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// Config contains the settings for one run.
type Config struct {
	VideoPath string

	FPS          int
	ResetAfterMs int
	MaxResults   int
	Rotation     pipeline.RotationPolicy
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	d := pipeline.DefaultSampleInput()
	return Config{
		FPS:          d.FPS,
		ResetAfterMs: d.ResetAfterMs,
		MaxResults:   d.MaxResults,
		Rotation:     d.Rotation,
	}
}

// Orchestrator owns the classifier and runs one sampling run at a time.
type Orchestrator struct {
	sampleStage pipeline.Stage[pipeline.SampleInput, pipeline.SampleResult]
	opener      ports.SourceOpener
	classifier  ports.Classifier
	display     ports.DisplaySink
	logger      ports.Logger

	// run is held for the whole of a run, so classify and reset calls
	// from different runs never interleave.
	run    sync.Mutex
	state  atomic.Int32
	closed atomic.Bool
}

// New creates a new Orchestrator. The classifier is closed by Close.
func New(
	sampleStage pipeline.Stage[pipeline.SampleInput, pipeline.SampleResult],
	opener ports.SourceOpener,
	classifier ports.Classifier,
	display ports.DisplaySink,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		sampleStage: sampleStage,
		opener:      opener,
		classifier:  classifier,
		display:     display,
		logger:      logger,
	}
}

// State returns the current run state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Run opens the video at config.VideoPath and samples it to the end.
// It fails fast with ErrRunInProgress if another run is active.
func (o *Orchestrator) Run(ctx context.Context, config Config) (RunResult, error) {
	if o.closed.Load() {
		return RunResult{}, ErrClosed
	}
	if !o.run.TryLock() {
		return RunResult{}, ErrRunInProgress
	}
	defer o.run.Unlock()
	if o.closed.Load() {
		return RunResult{}, ErrClosed
	}

	o.state.Store(int32(StateRunning))
	defer o.state.Store(int32(StateIdle))

	started := time.Now()
	o.logger.Info(l10n.F("Opening %s", config.VideoPath))

	source, err := o.opener.Open(ctx, config.VideoPath)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			o.logger.Info(l10n.T("Run cancelled"))
			return RunResult{VideoPath: config.VideoPath, Settings: config, Cancelled: true}, ctxErr
		}
		err = fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
		o.logger.Error(l10n.F("Failed to open video: %s", err))
		o.display.ShowError(err)
		return RunResult{}, err
	}
	defer func() {
		if err := source.Close(); err != nil {
			o.logger.Warn(l10n.F("Failed to close video: %s", err))
		}
	}()

	input := pipeline.SampleInput{
		Source:       source,
		FPS:          config.FPS,
		ResetAfterMs: config.ResetAfterMs,
		MaxResults:   config.MaxResults,
		Rotation:     config.Rotation,
		OnFinalizing: func() {
			o.state.Store(int32(StateFinalizing))
		},
	}

	o.logger.Info(l10n.F("Sampling %d ms at %d fps", source.DurationMs(), config.FPS))
	sample, err := o.sampleStage.Execute(ctx, input)

	result := RunResult{
		VideoPath:        config.VideoPath,
		DurationMs:       sample.DurationMs,
		RotationHint:     source.Rotation(),
		Settings:         config,
		StepMs:           sample.StepMs,
		Ticks:            sample.Ticks,
		FramesClassified: sample.FramesClassified,
		DecodeFailures:   sample.DecodeFailures,
		Resets:           sample.Resets,
		Emissions:        sample.Emissions,
		Elapsed:          time.Since(started),
	}
	if d, ok := source.(ports.StreamDescriber); ok {
		result.Stream = d.StreamInfo()
	}

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			result.Cancelled = true
			o.logger.Info(l10n.T("Run cancelled"))
			return result, err
		}
		o.logger.Error(l10n.F("Run failed: %s", err))
		o.display.ShowError(err)
		return result, fmt.Errorf("sample stage: %w", err)
	}

	o.logger.Info(l10n.F("Run completed: %d frames classified, %d resets", result.FramesClassified, result.Resets))
	return result, nil
}

// Close waits for an in-flight run and closes the classifier. Later calls
// return ErrClosed.
func (o *Orchestrator) Close() error {
	if o.closed.Swap(true) {
		return ErrClosed
	}

	o.run.Lock()
	defer o.run.Unlock()

	return o.classifier.Close()
}

// RunResult contains the results of a run for summary generation.
type RunResult struct {
	VideoPath    string
	DurationMs   int
	RotationHint int // Degrees reported by the source
	Stream       ports.StreamInfo

	Settings Config

	StepMs           int
	Ticks            int
	FramesClassified int
	DecodeFailures   int
	Resets           int
	Emissions        []ports.Detections

	Elapsed   time.Duration
	Cancelled bool
}
