// Package filesink provides a display sink that writes run output to files.
package filesink

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/user/vidaction/pkg/display"
	"github.com/user/vidaction/pkg/ports"
)

// File names written under the base directory.
const (
	PreviewFile    = "preview.png"
	AnnotatedFile  = "preview-annotated.png"
	DetectionsFile = "detections.txt"
	ErrorsFile     = "errors.txt"
)

// Options configures the sink.
type Options struct {
	// Annotate also writes a preview with the categories drawn on it.
	Annotate bool
	// FontPath is a TrueType font for annotations; empty uses the built-in face.
	FontPath string
	// Theme colors the annotated preview.
	Theme Theme
}

// Sink writes previews and the detections log to files.
type Sink struct {
	baseDir  string
	fs       ports.FileSystem
	renderer ports.Renderer
	logger   ports.Logger
	opts     Options

	mu      sync.Mutex
	prepped bool
}

// New creates a new file sink writing under baseDir.
func New(baseDir string, fs ports.FileSystem, renderer ports.Renderer, logger ports.Logger, opts Options) *Sink {
	return &Sink{
		baseDir:  baseDir,
		fs:       fs,
		renderer: renderer,
		logger:   logger.WithComponent("filesink"),
		opts:     opts,
	}
}

func (s *Sink) ensureDir() error {
	if s.prepped {
		return nil
	}
	if err := s.fs.MkdirAll(s.baseDir); err != nil {
		return err
	}
	s.prepped = true
	return nil
}

// ShowPreview replaces the preview image, and the annotated preview if enabled.
func (s *Sink) ShowPreview(p ports.Preview) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writePreview(p); err != nil {
		s.logger.Warn("Failed to write preview at %d ms: %v", p.TimestampMs, err)
	}
}

func (s *Sink) writePreview(p ports.Preview) error {
	if p.Image == nil {
		return nil
	}
	if err := s.ensureDir(); err != nil {
		return err
	}

	data, err := s.renderer.EncodeImage(p.Image, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	if err := s.fs.WriteFile(filepath.Join(s.baseDir, PreviewFile), data); err != nil {
		return err
	}

	if !s.opts.Annotate {
		return nil
	}
	annotated := Annotate(s.renderer, p, s.opts.FontPath, s.opts.Theme)
	data, err = s.renderer.EncodeImage(annotated, ports.FormatPNG, 0)
	if err != nil {
		return fmt.Errorf("encode annotated preview: %w", err)
	}
	return s.fs.WriteFile(filepath.Join(s.baseDir, AnnotatedFile), data)
}

// AppendDetections appends an entry to the detections log. Entries with no
// known results are not written.
func (s *Sink) AppendDetections(d ports.Detections) {
	text := display.FormatDetections(d)
	if text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDir(); err != nil {
		s.logger.Warn("Failed to create output directory: %v", err)
		return
	}
	if err := s.fs.AppendFile(filepath.Join(s.baseDir, DetectionsFile), []byte(text+"\n")); err != nil {
		s.logger.Warn("Failed to append detections: %v", err)
	}
}

// ShowError appends the error to the errors file.
func (s *Sink) ShowError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if derr := s.ensureDir(); derr != nil {
		s.logger.Warn("Failed to create output directory: %v", derr)
		return
	}
	if werr := s.fs.AppendFile(filepath.Join(s.baseDir, ErrorsFile), []byte(err.Error()+"\n")); werr != nil {
		s.logger.Warn("Failed to write error: %v", werr)
	}
}

// Ensure Sink implements ports.DisplaySink
var _ ports.DisplaySink = (*Sink)(nil)
