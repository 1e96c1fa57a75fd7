package mocks

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/user/vidaction/pkg/ports"
)

// VideoSource is a mock implementation of ports.VideoSource.
// By default FrameAt returns a small frame whose red channel encodes the
// offset in tenths of a second, modulo 256.
type VideoSource struct {
	mu sync.Mutex

	Duration int
	Rotate   int

	FrameAtFunc func(ctx context.Context, offsetMs int) (image.Image, error)
	CloseFunc   func() error

	Offsets    []int
	CloseCount int
}

func (m *VideoSource) DurationMs() int { return m.Duration }

func (m *VideoSource) Rotation() int { return m.Rotate }

func (m *VideoSource) FrameAt(ctx context.Context, offsetMs int) (image.Image, error) {
	m.mu.Lock()
	m.Offsets = append(m.Offsets, offsetMs)
	m.mu.Unlock()

	if m.FrameAtFunc != nil {
		return m.FrameAtFunc(ctx, offsetMs)
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	c := color.RGBA{R: uint8(offsetMs / 100), A: 255}
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img, nil
}

func (m *VideoSource) Close() error {
	m.mu.Lock()
	m.CloseCount++
	m.mu.Unlock()

	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// GetOffsets returns a copy of the requested offsets (for test verification).
func (m *VideoSource) GetOffsets() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.Offsets...)
}

// GetCloseCount returns how many times Close was called.
func (m *VideoSource) GetCloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CloseCount
}

var _ ports.VideoSource = (*VideoSource)(nil)

// SourceOpener is a mock implementation of ports.SourceOpener.
type SourceOpener struct {
	Source   ports.VideoSource
	OpenFunc func(ctx context.Context, path string) (ports.VideoSource, error)

	mu    sync.Mutex
	Paths []string
}

func (m *SourceOpener) Open(ctx context.Context, path string) (ports.VideoSource, error) {
	m.mu.Lock()
	m.Paths = append(m.Paths, path)
	m.mu.Unlock()

	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, path)
	}
	return m.Source, nil
}

var _ ports.SourceOpener = (*SourceOpener)(nil)
