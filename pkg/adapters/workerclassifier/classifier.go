// Package workerclassifier runs classification in an external worker process.
//
// The worker reads requests on stdin and answers each on stdout, one
// length-prefixed msgpack message per request. The worker owns the model
// and its temporal state; this side crops and resizes frames before sending.
package workerclassifier

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/user/vidaction/pkg/imageprep"
	"github.com/user/vidaction/pkg/ports"
	"github.com/user/vidaction/pkg/scoring"
)

var (
	// ErrClosed is returned when the classifier is used after Close.
	ErrClosed = errors.New("workerclassifier: classifier closed")
	// ErrBroken is returned after a request was abandoned mid-flight and
	// the stream can no longer be trusted.
	ErrBroken = errors.New("workerclassifier: worker stream out of sync")
	// ErrWorker wraps errors reported by the worker.
	ErrWorker = errors.New("workerclassifier: worker error")
)

// Options configures the worker.
type Options struct {
	Command   string   // Worker executable
	Args      []string // Extra arguments
	ModelPath string
	LabelPath string
	InputSize int // Square frame edge sent to the worker (default: 172)

	ports.ClassifierOptions
}

const defaultInputSize = 172

// shutdownTimeout bounds how long Close waits for the worker to exit.
const shutdownTimeout = 2 * time.Second

// resetTimeout bounds a Reset made without a context.
const resetTimeout = 10 * time.Second

// Classifier implements ports.Classifier over a worker connection.
type Classifier struct {
	mu     sync.Mutex
	r      io.Reader
	w      io.WriteCloser
	opts   Options
	cmd    *exec.Cmd
	done   chan error // process exit, nil when not spawned
	logger ports.Logger

	resetTimeout time.Duration

	closed bool
	broken bool
}

// Start spawns the worker process. The worker is called as
//
//	<command> [args...] --model <path> --labels <path> --max-results <n> --threads <n>
func Start(opts Options, logger ports.Logger) (*Classifier, error) {
	if opts.Command == "" {
		return nil, fmt.Errorf("workerclassifier: no worker command")
	}

	args := append([]string{}, opts.Args...)
	args = append(args,
		"--model", opts.ModelPath,
		"--labels", opts.LabelPath,
		"--max-results", strconv.Itoa(opts.MaxResults),
		"--threads", strconv.Itoa(opts.NumThreads),
	)

	cmd := exec.Command(opts.Command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start worker: %w", err)
	}

	c := NewFromConn(stdout, stdin, opts, logger)
	c.cmd = cmd
	c.logger.Debug("Worker started with pid %d", cmd.Process.Pid)

	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			c.logger.Debug("worker: %s", scanner.Text())
		}
	}()

	c.done = make(chan error, 1)
	go func() {
		c.done <- cmd.Wait()
	}()

	return c, nil
}

// NewFromConn creates a classifier speaking to a worker over r and w.
func NewFromConn(r io.Reader, w io.WriteCloser, opts Options, logger ports.Logger) *Classifier {
	if opts.InputSize <= 0 {
		opts.InputSize = defaultInputSize
	}
	return &Classifier{
		r:            r,
		w:            w,
		opts:         opts,
		logger:       logger.WithComponent("worker"),
		resetTimeout: resetTimeout,
	}
}

// roundTrip sends req and waits for the response. If ctx ends first the
// stream is marked broken. Caller holds c.mu.
func (c *Classifier) roundTrip(ctx context.Context, req Request) (Response, error) {
	if c.closed {
		return Response{}, ErrClosed
	}
	if c.broken {
		return Response{}, ErrBroken
	}

	type result struct {
		resp Response
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		var res result
		if err := WriteMessage(c.w, req); err != nil {
			res.err = err
		} else {
			res.err = ReadMessage(c.r, &res.resp)
		}
		ch <- res
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			c.broken = true
			return Response{}, fmt.Errorf("%s: %w", req.Op, res.err)
		}
		if res.resp.Error != "" {
			return Response{}, fmt.Errorf("%w: %s: %s", ErrWorker, req.Op, res.resp.Error)
		}
		return res.resp, nil
	case <-ctx.Done():
		c.broken = true
		return Response{}, ctx.Err()
	}
}

// Reset asks the worker to clear its temporal context. A worker that does
// not answer within the reset timeout leaves the stream broken.
func (c *Classifier) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.resetTimeout)
	defer cancel()
	return c.ResetContext(ctx)
}

// ResetContext is Reset bounded by ctx.
func (c *Classifier) ResetContext(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.roundTrip(ctx, Request{Op: OpReset})
	return err
}

// Classify sends one frame to the worker.
func (c *Classifier) Classify(ctx context.Context, frame image.Image) ([]ports.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	input, err := imageprep.ForModel(frame, c.opts.InputSize)
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	resp, err := c.roundTrip(ctx, Request{
		Op:     OpClassify,
		Frame:  packRGB(input),
		Width:  c.opts.InputSize,
		Height: c.opts.InputSize,
	})
	if err != nil {
		return nil, err
	}
	if resp.Categories == nil {
		return []ports.Category{}, nil
	}
	return scoring.Cap(resp.Categories, c.opts.MaxResults), nil
}

// PreprocessForDisplay returns the frame as sent to the worker.
func (c *Classifier) PreprocessForDisplay(frame image.Image) (image.Image, error) {
	return imageprep.ForModel(frame, c.opts.InputSize)
}

// Close tells the worker to exit and waits for it. Later calls return ErrClosed.
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	var closeErr error
	if !c.broken {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		_, closeErr = c.roundTrip(ctx, Request{Op: OpClose})
		cancel()
	}
	c.closed = true

	if err := c.w.Close(); err != nil && closeErr == nil {
		closeErr = err
	}

	if c.done != nil {
		select {
		case err := <-c.done:
			if err != nil {
				c.logger.Debug("Worker exited: %v", err)
			}
		case <-time.After(shutdownTimeout):
			c.logger.Warn("Worker did not exit, killing it")
			c.cmd.Process.Kill()
			<-c.done
		}
	}
	return closeErr
}

// packRGB drops the alpha channel of a zero-origin RGBA image.
func packRGB(img *image.RGBA) []byte {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	out := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < w; x++ {
			out = append(out, row[x*4], row[x*4+1], row[x*4+2])
		}
	}
	return out
}

var (
	_ ports.Classifier      = (*Classifier)(nil)
	_ ports.ContextResetter = (*Classifier)(nil)
)
