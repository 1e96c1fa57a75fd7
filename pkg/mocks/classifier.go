package mocks

import (
	"context"
	"image"
	"sync"

	"github.com/user/vidaction/pkg/ports"
)

// Classifier is a mock implementation of ports.Classifier.
// By default Classify returns Results and counts calls.
type Classifier struct {
	mu sync.Mutex

	Results []ports.Category

	ResetFunc                func() error
	ClassifyFunc             func(ctx context.Context, frame image.Image) ([]ports.Category, error)
	PreprocessForDisplayFunc func(frame image.Image) (image.Image, error)
	CloseFunc                func() error

	// Calls records "reset" and "classify" in call order.
	Calls         []string
	ClassifyCount int
	ResetCount    int
	CloseCount    int
	Frames        []image.Image
}

func (m *Classifier) Reset() error {
	m.mu.Lock()
	m.ResetCount++
	m.Calls = append(m.Calls, "reset")
	m.mu.Unlock()

	if m.ResetFunc != nil {
		return m.ResetFunc()
	}
	return nil
}

func (m *Classifier) Classify(ctx context.Context, frame image.Image) ([]ports.Category, error) {
	m.mu.Lock()
	m.ClassifyCount++
	m.Calls = append(m.Calls, "classify")
	m.Frames = append(m.Frames, frame)
	m.mu.Unlock()

	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, frame)
	}
	return ports.CloneCategories(m.Results), nil
}

func (m *Classifier) PreprocessForDisplay(frame image.Image) (image.Image, error) {
	if m.PreprocessForDisplayFunc != nil {
		return m.PreprocessForDisplayFunc(frame)
	}
	return frame, nil
}

func (m *Classifier) Close() error {
	m.mu.Lock()
	m.CloseCount++
	m.mu.Unlock()

	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// GetCalls returns a copy of the recorded call sequence (for test verification).
func (m *Classifier) GetCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}

var _ ports.Classifier = (*Classifier)(nil)
