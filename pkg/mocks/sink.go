package mocks

import (
	"sync"

	"github.com/user/vidaction/pkg/ports"
)

// DisplaySink is a mock implementation of ports.DisplaySink and
// ports.ProgressSink that records every call in order.
type DisplaySink struct {
	mu sync.RWMutex

	Previews   []ports.Preview
	Detections []ports.Detections
	Errors     []error
	Max        []int
	Progress   []int

	// Events records call names in arrival order, e.g. "preview", "detections".
	Events []string
}

// NewDisplaySink creates a new mock DisplaySink.
func NewDisplaySink() *DisplaySink {
	return &DisplaySink{}
}

func (m *DisplaySink) ShowPreview(p ports.Preview) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Previews = append(m.Previews, p)
	m.Events = append(m.Events, "preview")
}

func (m *DisplaySink) AppendDetections(d ports.Detections) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Detections = append(m.Detections, d)
	m.Events = append(m.Events, "detections")
}

func (m *DisplaySink) ShowError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, err)
	m.Events = append(m.Events, "error")
}

func (m *DisplaySink) SetMax(seconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Max = append(m.Max, seconds)
}

func (m *DisplaySink) SetProgress(seconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Progress = append(m.Progress, seconds)
}

// GetDetections returns a copy of the recorded detections (for test verification).
func (m *DisplaySink) GetDetections() []ports.Detections {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ports.Detections(nil), m.Detections...)
}

// GetPreviews returns a copy of the recorded previews (for test verification).
func (m *DisplaySink) GetPreviews() []ports.Preview {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ports.Preview(nil), m.Previews...)
}

// GetErrors returns a copy of the recorded errors (for test verification).
func (m *DisplaySink) GetErrors() []error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]error(nil), m.Errors...)
}

// GetProgress returns a copy of the recorded progress values (for test verification).
func (m *DisplaySink) GetProgress() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.Progress...)
}

var (
	_ ports.DisplaySink  = (*DisplaySink)(nil)
	_ ports.ProgressSink = (*DisplaySink)(nil)
)
