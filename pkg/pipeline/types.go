package pipeline

import (
	"fmt"

	"github.com/user/vidaction/pkg/ports"
)

// RotationPolicy decides what happens with a source's rotation hint.
type RotationPolicy string

const (
	// RotationIgnore reads the hint but leaves frames as decoded.
	RotationIgnore RotationPolicy = "ignore"
	// RotationApply rotates every decoded frame by the hint before classification.
	RotationApply RotationPolicy = "apply"
)

// ParseRotationPolicy validates a rotation policy name.
func ParseRotationPolicy(s string) (RotationPolicy, error) {
	switch RotationPolicy(s) {
	case RotationIgnore, "":
		return RotationIgnore, nil
	case RotationApply:
		return RotationApply, nil
	default:
		return "", fmt.Errorf("unknown rotation policy %q", s)
	}
}

// =============================================================================
// Sample Stage Types
// =============================================================================

// SampleInput contains parameters for one sampling run.
type SampleInput struct {
	Source       ports.VideoSource
	FPS          int            // Sampling rate (default: 5)
	ResetAfterMs int            // Classifier reset threshold (default: 15000)
	MaxResults   int            // Cap on categories per result (default: 3)
	Rotation     RotationPolicy // What to do with the source rotation hint

	// OnFinalizing is called once after the last tick, before the final emission.
	OnFinalizing func()
}

// DefaultSampleInput returns SampleInput with default values.
func DefaultSampleInput() SampleInput {
	return SampleInput{
		FPS:          5,
		ResetAfterMs: 15000,
		MaxResults:   3,
		Rotation:     RotationIgnore,
	}
}

// StepMs returns the tick step, 1000/FPS rounded down.
func (in SampleInput) StepMs() int {
	if in.FPS <= 0 {
		return 0
	}
	return 1000 / in.FPS
}

// SampleResult summarises a completed sampling run.
type SampleResult struct {
	DurationMs       int
	StepMs           int
	Ticks            int // Ticks scheduled: ceil(DurationMs / StepMs)
	FramesClassified int
	DecodeFailures   int
	Resets           int

	// Emissions holds every entry appended to the detections log, in order.
	Emissions []ports.Detections
}

// TickCount returns the number of ticks scheduled for a duration and step.
func TickCount(durationMs, stepMs int) int {
	if durationMs <= 0 || stepMs <= 0 {
		return 0
	}
	return (durationMs + stepMs - 1) / stepMs
}
