// Package consolesink provides a display sink that prints to a terminal.
package consolesink

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"

	"github.com/user/vidaction/pkg/display"
	"github.com/user/vidaction/pkg/ports"
)

const progressWidth = 30

// Sink prints the detections log and run errors to a writer. Previews are
// logged at debug level. When the writer is a terminal a progress bar is
// redrawn in place.
type Sink struct {
	out      io.Writer
	logger   ports.Logger
	terminal bool

	mu          sync.Mutex
	max         int
	progressing bool
}

// New creates a console sink writing to out.
func New(out io.Writer, logger ports.Logger) *Sink {
	s := &Sink{
		out:    out,
		logger: logger.WithComponent("console"),
	}
	if f, ok := out.(*os.File); ok {
		s.terminal = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return s
}

// ShowPreview logs the preview's top category.
func (s *Sink) ShowPreview(p ports.Preview) {
	if len(p.Categories) == 0 {
		s.logger.Debug("Preview at %s s: no categories", display.FormatSeconds(p.TimestampMs))
		return
	}
	top := p.Categories[0]
	s.logger.Debug("Preview at %s s: %s (%s)", display.FormatSeconds(p.TimestampMs), top.Label, display.FormatScore(top.Score))
}

// AppendDetections prints a detections entry followed by a blank line.
// Nothing is printed when no results were known.
func (s *Sink) AppendDetections(d ports.Detections) {
	text := display.FormatDetections(d)
	if text == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.breakProgress()
	fmt.Fprint(s.out, "\n"+text)
}

// ShowError prints the error.
func (s *Sink) ShowError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.breakProgress()
	fmt.Fprintln(s.out, l10n.F("Error: %s", err.Error()))
}

// SetMax sets the progress bar length in seconds.
func (s *Sink) SetMax(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.max = seconds
}

// SetProgress redraws the progress bar. It ends the line once max is reached.
func (s *Sink) SetProgress(seconds int) {
	if !s.terminal {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Fprint(s.out, "\r"+renderBar(seconds, s.max))
	s.progressing = true
	if seconds >= s.max {
		s.breakProgress()
	}
}

func (s *Sink) breakProgress() {
	if s.progressing {
		fmt.Fprintln(s.out)
		s.progressing = false
	}
}

func renderBar(seconds, max int) string {
	filled := progressWidth
	if max > 0 {
		if seconds < 0 {
			seconds = 0
		}
		if seconds > max {
			seconds = max
		}
		filled = seconds * progressWidth / max
	}
	return fmt.Sprintf("[%s%s] %d/%d s",
		strings.Repeat("#", filled), strings.Repeat(".", progressWidth-filled), seconds, max)
}

var (
	_ ports.DisplaySink  = (*Sink)(nil)
	_ ports.ProgressSink = (*Sink)(nil)
)
