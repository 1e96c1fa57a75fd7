// Package summarizer provides summary generation for classification runs.
package summarizer

import (
	"time"

	"github.com/user/vidaction/pkg/orchestrator"
	"github.com/user/vidaction/pkg/ports"
)

// Summary contains all data collected during a classification run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time

	// Input video
	Video VideoInfo

	// Run settings
	Settings Settings

	// Counters and timing
	Run RunInfo

	// Detections log entries, in emission order
	Detections []ports.Detections
}

// VideoInfo contains information about the classified video.
type VideoInfo struct {
	Path         string
	DurationMs   int
	FileSize     int64
	RotationHint int
	Stream       ports.StreamInfo // Container details, when the source read them
}

// Settings contains the run configuration.
type Settings struct {
	FPS          int
	StepMs       int
	ResetAfterMs int
	MaxResults   int
	Rotation     string
	Classifier   string
	NumThreads   int
}

// RunInfo contains run counters.
type RunInfo struct {
	Ticks            int
	FramesClassified int
	DecodeFailures   int
	Resets           int
	ElapsedMs        int64
	Cancelled        bool
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithVideo sets video information.
func (b *Builder) WithVideo(video VideoInfo) *Builder {
	b.summary.Video = video
	return b
}

// WithSettings sets run settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithRun sets run counters.
func (b *Builder) WithRun(run RunInfo) *Builder {
	b.summary.Run = run
	return b
}

// WithDetections sets the detections log.
func (b *Builder) WithDetections(detections []ports.Detections) *Builder {
	b.summary.Detections = detections
	return b
}

// WithRunResult fills video, settings, counters and detections from a run
// result. Classifier name, thread count and file size are left to the caller.
func (b *Builder) WithRunResult(r orchestrator.RunResult) *Builder {
	b.summary.Video.Path = r.VideoPath
	b.summary.Video.DurationMs = r.DurationMs
	b.summary.Video.RotationHint = r.RotationHint
	b.summary.Video.Stream = r.Stream

	b.summary.Settings.FPS = r.Settings.FPS
	b.summary.Settings.StepMs = r.StepMs
	b.summary.Settings.ResetAfterMs = r.Settings.ResetAfterMs
	b.summary.Settings.MaxResults = r.Settings.MaxResults
	b.summary.Settings.Rotation = string(r.Settings.Rotation)

	b.summary.Run = RunInfo{
		Ticks:            r.Ticks,
		FramesClassified: r.FramesClassified,
		DecodeFailures:   r.DecodeFailures,
		Resets:           r.Resets,
		ElapsedMs:        r.Elapsed.Milliseconds(),
		Cancelled:        r.Cancelled,
	}
	b.summary.Detections = r.Emissions
	return b
}

// WithClassifier sets the classifier description.
func (b *Builder) WithClassifier(name string, numThreads int) *Builder {
	b.summary.Settings.Classifier = name
	b.summary.Settings.NumThreads = numThreads
	return b
}

// WithFileSize sets the video file size in bytes.
func (b *Builder) WithFileSize(size int64) *Builder {
	b.summary.Video.FileSize = size
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
