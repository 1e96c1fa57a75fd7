// Package memsource provides video sources backed by decoded frames in memory.
package memsource

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sort"
	"strings"

	"github.com/user/vidaction/pkg/ports"
)

// ErrEmptyDir is returned by LoadDir when a directory holds no images.
var ErrEmptyDir = errors.New("memsource: no images in directory")

// Frame is a decoded frame and the offset at which it starts showing.
type Frame struct {
	OffsetMs int
	Image    image.Image
}

// Source serves frames with at-or-before lookup: FrameAt returns the last
// frame whose offset is not after the requested one.
type Source struct {
	frames     []Frame
	durationMs int
	rotation   int
	closed     bool
}

// New creates a source from frames, which are sorted by offset.
func New(frames []Frame, durationMs, rotation int) *Source {
	sorted := make([]Frame, len(frames))
	copy(sorted, frames)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OffsetMs < sorted[j].OffsetMs
	})
	return &Source{
		frames:     sorted,
		durationMs: durationMs,
		rotation:   rotation,
	}
}

// DurationMs returns the declared duration.
func (s *Source) DurationMs() int { return s.durationMs }

// Rotation returns the declared rotation hint.
func (s *Source) Rotation() int { return s.rotation }

// FrameAt returns the frame showing at offsetMs, or ports.ErrNoFrame.
func (s *Source) FrameAt(ctx context.Context, offsetMs int) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.closed {
		return nil, fmt.Errorf("memsource: source closed")
	}

	// first frame starting after offsetMs
	i := sort.Search(len(s.frames), func(i int) bool {
		return s.frames[i].OffsetMs > offsetMs
	})
	if i == 0 {
		return nil, fmt.Errorf("%w: %d ms", ports.ErrNoFrame, offsetMs)
	}
	f := s.frames[i-1]
	if f.Image == nil {
		return nil, fmt.Errorf("%w: %d ms", ports.ErrNoFrame, offsetMs)
	}
	return f.Image, nil
}

// Close releases the frames.
func (s *Source) Close() error {
	s.closed = true
	s.frames = nil
	return nil
}

var _ ports.VideoSource = (*Source)(nil)

// imageExtensions maps file extensions to decode formats.
var imageExtensions = map[string]ports.ImageFormat{
	".png":  ports.FormatPNG,
	".jpg":  ports.FormatJPEG,
	".jpeg": ports.FormatJPEG,
}

// LoadDir reads an image sequence from dir, in file name order, as a video
// at fps frames per second. Frame i starts at i*1000/fps ms and the duration
// is n*1000/fps ms. Files with other extensions are skipped.
func LoadDir(fs ports.FileSystem, renderer ports.Renderer, dir string, fps int) (*Source, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("memsource: invalid fps %d", fps)
	}

	names, err := fs.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var frames []Frame
	for _, name := range names {
		format, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
		if !ok {
			continue
		}
		data, err := fs.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		img, err := renderer.DecodeImage(data, format)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		frames = append(frames, Frame{
			OffsetMs: len(frames) * 1000 / fps,
			Image:    img,
		})
	}

	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDir, dir)
	}
	return New(frames, len(frames)*1000/fps, 0), nil
}

// Opener opens image-sequence directories as sources.
type Opener struct {
	FS       ports.FileSystem
	Renderer ports.Renderer
	FPS      int
}

// Open loads the directory at path.
func (o *Opener) Open(ctx context.Context, path string) (ports.VideoSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadDir(o.FS, o.Renderer, path, o.FPS)
}

var _ ports.SourceOpener = (*Opener)(nil)
