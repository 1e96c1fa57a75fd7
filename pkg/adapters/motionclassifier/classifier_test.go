package motionclassifier

import (
	"context"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/vidaction/pkg/ports"
)

func solidFrame(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func stripedFrame(offset int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			v := uint8(0)
			if ((x+offset)/4)%2 == 0 {
				v = 255
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func newTestClassifier(t *testing.T, opts ports.ClassifierOptions) *Classifier {
	t.Helper()
	c, err := New(filepath.Join("testdata", "model.yaml"), filepath.Join("testdata", "labels.txt"), opts)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestNew_LoadsAssets(t *testing.T) {
	c := newTestClassifier(t, ports.ClassifierOptions{MaxResults: 3, NumThreads: 1})
	require.Len(t, c.Labels(), 4)
	require.Equal(t, "waving hand", c.Labels()[0])
}

func TestNew_MissingModel(t *testing.T) {
	_, err := New(filepath.Join("testdata", "missing.yaml"), filepath.Join("testdata", "labels.txt"), ports.ClassifierOptions{})
	require.Error(t, err)
}

func TestNew_LabelMismatch(t *testing.T) {
	model, err := LoadModel(filepath.Join("testdata", "model.yaml"))
	require.NoError(t, err)

	_, err = NewFromModel(model, []string{"only one"}, ports.ClassifierOptions{})
	require.ErrorIs(t, err, ErrInvalidModel)
}

func TestModel_Validate(t *testing.T) {
	row := make([]float32, NumFeatures)
	base := Model{Architecture: Architecture, InputSize: 8, Decay: 0.5, Weights: [][]float32{row}}

	tests := []struct {
		name   string
		mutate func(m *Model)
		ok     bool
	}{
		{name: "valid", mutate: func(m *Model) {}, ok: true},
		{name: "wrong architecture", mutate: func(m *Model) { m.Architecture = "movinet" }},
		{name: "zero input", mutate: func(m *Model) { m.InputSize = 0 }},
		{name: "decay of one", mutate: func(m *Model) { m.Decay = 1 }},
		{name: "short row", mutate: func(m *Model) { m.Weights = [][]float32{{1, 2}} }},
		{name: "bias mismatch", mutate: func(m *Model) { m.Bias = []float32{1, 2} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base
			tt.mutate(&m)
			err := m.Validate(1)
			if tt.ok {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, ErrInvalidModel)
			}
		})
	}
}

func TestClassify_CapsAndOrders(t *testing.T) {
	c := newTestClassifier(t, ports.ClassifierOptions{MaxResults: 3, NumThreads: 1})

	got, err := c.Classify(context.Background(), solidFrame(color.RGBA{R: 255, A: 255}))
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		require.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
	require.Equal(t, "looking at red", got[0].Label)
}

func TestClassify_MotionNeedsTemporalContext(t *testing.T) {
	c := newTestClassifier(t, ports.ClassifierOptions{MaxResults: 1, NumThreads: 1})
	ctx := context.Background()

	first, err := c.Classify(ctx, stripedFrame(0))
	require.NoError(t, err)
	require.Equal(t, "sitting still", first[0].Label)

	second, err := c.Classify(ctx, stripedFrame(4))
	require.NoError(t, err)
	require.Equal(t, "waving hand", second[0].Label)
}

func TestReset_MatchesFreshClassifier(t *testing.T) {
	opts := ports.ClassifierOptions{MaxResults: 4, NumThreads: 1}
	ctx := context.Background()

	used := newTestClassifier(t, opts)
	for i := 0; i < 5; i++ {
		_, err := used.Classify(ctx, stripedFrame(i))
		require.NoError(t, err)
	}
	require.NoError(t, used.Reset())
	require.NoError(t, used.Reset())

	fresh := newTestClassifier(t, opts)

	frame := stripedFrame(2)
	want, err := fresh.Classify(ctx, frame)
	require.NoError(t, err)
	got, err := used.Classify(ctx, frame)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestClassify_ThreadsAgree(t *testing.T) {
	ctx := context.Background()
	single := newTestClassifier(t, ports.ClassifierOptions{MaxResults: 4, NumThreads: 1})
	multi := newTestClassifier(t, ports.ClassifierOptions{MaxResults: 4, NumThreads: 4})

	for i := 0; i < 3; i++ {
		a, err := single.Classify(ctx, stripedFrame(i*3))
		require.NoError(t, err)
		b, err := multi.Classify(ctx, stripedFrame(i*3))
		require.NoError(t, err)
		require.Len(t, b, len(a))
		for j := range a {
			require.Equal(t, a[j].Label, b[j].Label)
			require.InDelta(t, a[j].Score, b[j].Score, 1e-4)
		}
	}
}

func TestClassify_CancelledContext(t *testing.T) {
	c := newTestClassifier(t, ports.ClassifierOptions{MaxResults: 3})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Classify(ctx, solidFrame(color.RGBA{A: 255}))
	require.ErrorIs(t, err, context.Canceled)
}

func TestPreprocessForDisplay(t *testing.T) {
	c := newTestClassifier(t, ports.ClassifierOptions{MaxResults: 3})

	img, err := c.PreprocessForDisplay(solidFrame(color.RGBA{G: 255, A: 255}))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 16, 16), img.Bounds())
}

func TestClose(t *testing.T) {
	c, err := New(filepath.Join("testdata", "model.yaml"), filepath.Join("testdata", "labels.txt"), ports.ClassifierOptions{})
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.ErrorIs(t, c.Close(), ErrClosed)
	require.ErrorIs(t, c.Reset(), ErrClosed)

	_, err = c.Classify(context.Background(), solidFrame(color.RGBA{A: 255}))
	require.ErrorIs(t, err, ErrClosed)
}
