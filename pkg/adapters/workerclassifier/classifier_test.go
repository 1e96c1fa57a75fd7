package workerclassifier

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/user/vidaction/pkg/adapters/logger"
	"github.com/user/vidaction/pkg/ports"
)

// fakeWorker answers requests from the classifier over in-memory pipes.
// It counts frames since the last reset and reports the count as a label.
type fakeWorker struct {
	requests []Request
	hangOp   string
	failOp   string
	received chan struct{} // closed when a hanging worker gets its request
}

func (f *fakeWorker) serve(r io.Reader, w io.Writer) {
	frames := 0
	for {
		var req Request
		if err := ReadMessage(r, &req); err != nil {
			return
		}
		f.requests = append(f.requests, req)

		if req.Op == f.hangOp {
			close(f.received)
			return
		}

		var resp Response
		switch {
		case req.Op == f.failOp:
			resp.Error = "model exploded"
		case req.Op == OpReset:
			frames = 0
		case req.Op == OpClassify:
			frames++
			resp.Categories = []ports.Category{
				{Label: "low", Score: 0.05},
				{Label: "frames", Score: float32(frames) / 10},
				{Label: "high", Score: 0.9},
			}
		}
		if err := WriteMessage(w, resp); err != nil {
			return
		}
		if req.Op == OpClose {
			return
		}
	}
}

func startFake(t *testing.T, worker *fakeWorker, maxResults int) *Classifier {
	t.Helper()
	reqR, reqW := io.Pipe()
	respR, respW := io.Pipe()

	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.serve(reqR, respW)
	}()
	t.Cleanup(func() {
		reqR.Close()
		respW.Close()
		<-done
	})

	opts := Options{InputSize: 8}
	opts.MaxResults = maxResults
	return NewFromConn(respR, reqW, opts, logger.NewNoop())
}

func solid(c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestProtocol_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	in := Response{Categories: []ports.Category{{Label: "waving", Score: 0.75}}}
	require.NoError(t, WriteMessage(&buf, in))

	require.Equal(t, byte(0), buf.Bytes()[0], "length prefix is big-endian")

	var out Response
	require.NoError(t, ReadMessage(&buf, &out))
	require.Equal(t, in, out)
}

func TestProtocol_RejectsOversizedPrefix(t *testing.T) {
	buf := bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	var out Response
	require.Error(t, ReadMessage(buf, &out))
}

func TestProtocol_TruncatedBody(t *testing.T) {
	buf := bytes.NewReader([]byte{0, 0, 0, 10, 1, 2})
	var out Response
	require.ErrorIs(t, ReadMessage(buf, &out), io.ErrUnexpectedEOF)
}

func TestClassifier_Classify(t *testing.T) {
	worker := &fakeWorker{}
	c := startFake(t, worker, 2)

	got, err := c.Classify(context.Background(), solid(color.RGBA{R: 255, B: 255, A: 255}))
	require.NoError(t, err)
	require.Equal(t, []ports.Category{
		{Label: "high", Score: 0.9},
		{Label: "frames", Score: 0.1},
	}, got)

	req := worker.requests[0]
	require.Equal(t, OpClassify, req.Op)
	require.Equal(t, 8, req.Width)
	require.Equal(t, 8, req.Height)
	require.Len(t, req.Frame, 8*8*3)
	require.Equal(t, []byte{255, 0, 255}, req.Frame[:3])
}

func TestClassifier_ResetClearsWorkerState(t *testing.T) {
	worker := &fakeWorker{}
	c := startFake(t, worker, 3)
	ctx := context.Background()
	frame := solid(color.RGBA{A: 255})

	for i := 0; i < 3; i++ {
		_, err := c.Classify(ctx, frame)
		require.NoError(t, err)
	}
	require.NoError(t, c.Reset())

	got, err := c.Classify(ctx, frame)
	require.NoError(t, err)
	require.Equal(t, "frames", got[1].Label)
	require.InDelta(t, 0.1, got[1].Score, 1e-6)
}

func TestClassifier_WorkerError(t *testing.T) {
	c := startFake(t, &fakeWorker{failOp: OpClassify}, 3)

	_, err := c.Classify(context.Background(), solid(color.RGBA{A: 255}))
	require.ErrorIs(t, err, ErrWorker)
	require.Contains(t, err.Error(), "model exploded")

	// a reported error keeps the stream usable
	require.NoError(t, c.Reset())
}

func TestClassifier_CancelledMidRequest(t *testing.T) {
	worker := &fakeWorker{hangOp: OpClassify, received: make(chan struct{})}
	c := startFake(t, worker, 3)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Classify(ctx, solid(color.RGBA{A: 255}))
		errCh <- err
	}()
	<-worker.received
	cancel()

	require.ErrorIs(t, <-errCh, context.Canceled)
	require.ErrorIs(t, c.Reset(), ErrBroken)
}

func TestClassifier_ResetContextCancelled(t *testing.T) {
	worker := &fakeWorker{hangOp: OpReset, received: make(chan struct{})}
	c := startFake(t, worker, 3)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- c.ResetContext(ctx)
	}()
	<-worker.received
	cancel()

	require.ErrorIs(t, <-errCh, context.Canceled)
	_, err := c.Classify(context.Background(), solid(color.RGBA{A: 255}))
	require.ErrorIs(t, err, ErrBroken)
}

func TestClassifier_ResetTimesOut(t *testing.T) {
	worker := &fakeWorker{hangOp: OpReset, received: make(chan struct{})}
	c := startFake(t, worker, 3)
	c.resetTimeout = 50 * time.Millisecond

	require.ErrorIs(t, c.Reset(), context.DeadlineExceeded)
	require.ErrorIs(t, c.Reset(), ErrBroken)
}

func TestClassifier_Close(t *testing.T) {
	worker := &fakeWorker{}
	c := startFake(t, worker, 3)

	require.NoError(t, c.Close())
	require.Equal(t, OpClose, worker.requests[len(worker.requests)-1].Op)
	require.ErrorIs(t, c.Close(), ErrClosed)

	_, err := c.Classify(context.Background(), solid(color.RGBA{A: 255}))
	require.ErrorIs(t, err, ErrClosed)
}

func TestClassifier_PreprocessForDisplay(t *testing.T) {
	c := startFake(t, &fakeWorker{}, 3)

	img, err := c.PreprocessForDisplay(solid(color.RGBA{A: 255}))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 8, 8), img.Bounds())
}

func TestStart_RequiresCommand(t *testing.T) {
	_, err := Start(Options{}, logger.NewNoop())
	require.Error(t, err)
}
