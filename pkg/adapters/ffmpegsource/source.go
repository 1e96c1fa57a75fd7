// Package ffmpegsource provides video sources backed by ffprobe and ffmpeg.
//
// Each FrameAt call runs ffmpeg once, seeking to the offset and piping a
// single PNG frame back. Frames are returned as decoded, without applying
// the container rotation.
package ffmpegsource

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/user/vidaction/pkg/adapters/mp4probe"
	"github.com/user/vidaction/pkg/ports"
)

var (
	// ErrClosed is returned by FrameAt after Close.
	ErrClosed = errors.New("ffmpegsource: source closed")
	// ErrNotAFile is returned when the path names a directory.
	ErrNotAFile = errors.New("ffmpegsource: not a regular file")
)

// Options configures the opener.
type Options struct {
	FFmpegPath  string // Custom ffmpeg path; empty searches PATH
	FFprobePath string // Custom ffprobe path; empty searches PATH

	// KeyframeSeek returns the nearest keyframe at or before each offset
	// instead of decoding up to the exact frame. Offsets snap to the
	// container's sync sample table when it has one.
	KeyframeSeek bool
}

// Opener resolves video paths into sources.
type Opener struct {
	ffmpeg   string
	ffprobe  string
	opts     Options
	runner   Runner
	renderer ports.Renderer
	logger   ports.Logger
}

// NewOpener locates ffmpeg and ffprobe and returns an Opener that decodes
// frames with renderer.
func NewOpener(opts Options, renderer ports.Renderer, logger ports.Logger) (*Opener, error) {
	ffmpeg, err := findBinary("ffmpeg", opts.FFmpegPath)
	if err != nil {
		return nil, err
	}
	ffprobe, err := findBinary("ffprobe", opts.FFprobePath)
	if err != nil {
		return nil, err
	}
	return NewOpenerWithRunner(ffmpeg, ffprobe, opts, ExecRunner{}, renderer, logger), nil
}

// NewOpenerWithRunner creates an Opener that runs commands through runner.
func NewOpenerWithRunner(ffmpeg, ffprobe string, opts Options, runner Runner, renderer ports.Renderer, logger ports.Logger) *Opener {
	return &Opener{
		ffmpeg:   ffmpeg,
		ffprobe:  ffprobe,
		opts:     opts,
		runner:   runner,
		renderer: renderer,
		logger:   logger.WithComponent("ffmpeg"),
	}
}

// Open probes path and returns a source for it.
func (o *Opener) Open(ctx context.Context, path string) (ports.VideoSource, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat video: %w", err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotAFile, path)
	}

	// The container header is read directly when possible; ffprobe fills in
	// rotation and anything mp4ff cannot parse.
	info, perr := mp4probe.ProbeFile(path)
	if perr != nil {
		o.logger.Debug("Container probe failed, relying on ffprobe: %v", perr)
		info = mp4probe.Info{}
	} else {
		o.logger.Debug("Container: codec %s, %dx%d, %d ms", info.Codec, info.Width, info.Height, info.DurationMs)
		if o.opts.KeyframeSeek && info.KeyframesMs != nil {
			o.logger.Debug("Keyframe seek: %d keyframes in %d frames", len(info.KeyframesMs), info.FrameCount)
		}
	}

	out, err := o.runner.Run(ctx, o.ffprobe, probeArgs(path)...)
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	md, err := parseProbe(out)
	if err != nil {
		return nil, err
	}
	if md.DurationMs == 0 && perr == nil {
		md.DurationMs = info.DurationMs
	}

	o.logger.Debug("Video %s: %d ms, rotation %d", path, md.DurationMs, md.Rotation)

	return &Source{
		path:     path,
		ffmpeg:   o.ffmpeg,
		meta:     md,
		info:     info,
		keyframe: o.opts.KeyframeSeek,
		runner:   o.runner,
		renderer: o.renderer,
	}, nil
}

var _ ports.SourceOpener = (*Opener)(nil)

// Source is a video file decoded frame by frame with ffmpeg.
type Source struct {
	path     string
	ffmpeg   string
	meta     metadata
	info     mp4probe.Info
	keyframe bool
	runner   Runner
	renderer ports.Renderer

	mu     sync.Mutex
	closed bool
}

// DurationMs returns the probed duration.
func (s *Source) DurationMs() int { return s.meta.DurationMs }

// Rotation returns the container rotation hint.
func (s *Source) Rotation() int { return s.meta.Rotation }

// StreamInfo returns what the container header declared.
func (s *Source) StreamInfo() ports.StreamInfo {
	info := ports.StreamInfo{
		Width:      s.info.Width,
		Height:     s.info.Height,
		FrameCount: s.info.FrameCount,
		Keyframes:  len(s.info.KeyframesMs),
	}
	if s.info.Codec != "" && s.info.Codec != mp4probe.CodecUnknown {
		info.Codec = string(s.info.Codec)
	}
	return info
}

func (s *Source) frameArgs(offsetMs int) []string {
	args := []string{"-v", "error", "-noautorotate"}
	seek := offsetMs
	if s.keyframe {
		// A known keyframe time is sought exactly, so ffmpeg decodes that
		// frame alone.
		if k, ok := s.info.KeyframeAtOrBefore(offsetMs); ok {
			seek = k
		} else {
			args = append(args, "-noaccurate_seek")
		}
	}
	return append(args,
		"-ss", fmt.Sprintf("%d.%03d", seek/1000, seek%1000),
		"-i", s.path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
}

// FrameAt decodes the frame shown at offsetMs. It returns ports.ErrNoFrame
// when ffmpeg produces no output for that offset.
func (s *Source) FrameAt(ctx context.Context, offsetMs int) (image.Image, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	out, err := s.runner.Run(ctx, s.ffmpeg, s.frameArgs(offsetMs)...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("extract frame at %d ms: %w", offsetMs, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %d ms", ports.ErrNoFrame, offsetMs)
	}

	img, err := s.renderer.DecodeImage(out, ports.FormatPNG)
	if err != nil {
		return nil, fmt.Errorf("decode frame at %d ms: %w", offsetMs, err)
	}
	return img, nil
}

// Close marks the source closed. No process outlives a FrameAt call.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var (
	_ ports.VideoSource     = (*Source)(nil)
	_ ports.StreamDescriber = (*Source)(nil)
)
