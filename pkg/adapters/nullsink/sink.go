// Package nullsink provides display and progress sinks that discard everything.
package nullsink

import "github.com/user/vidaction/pkg/ports"

// Sink discards previews, detections, errors and progress.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// ShowPreview does nothing.
func (s *Sink) ShowPreview(p ports.Preview) {}

// AppendDetections does nothing.
func (s *Sink) AppendDetections(d ports.Detections) {}

// ShowError does nothing.
func (s *Sink) ShowError(err error) {}

// SetMax does nothing.
func (s *Sink) SetMax(seconds int) {}

// SetProgress does nothing.
func (s *Sink) SetProgress(seconds int) {}

var (
	_ ports.DisplaySink  = (*Sink)(nil)
	_ ports.ProgressSink = (*Sink)(nil)
)
