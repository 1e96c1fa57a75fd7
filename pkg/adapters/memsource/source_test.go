package memsource

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"

	"github.com/user/vidaction/pkg/mocks"
	"github.com/user/vidaction/pkg/ports"
)

func frameOfWidth(w int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, 1))
}

func TestSource_FrameAt(t *testing.T) {
	s := New([]Frame{
		{OffsetMs: 400, Image: frameOfWidth(3)},
		{OffsetMs: 100, Image: frameOfWidth(1)},
		{OffsetMs: 200, Image: frameOfWidth(2)},
	}, 600, 0)

	tests := []struct {
		offset    int
		wantWidth int
		wantErr   error
	}{
		{offset: 0, wantErr: ports.ErrNoFrame},
		{offset: 99, wantErr: ports.ErrNoFrame},
		{offset: 100, wantWidth: 1},
		{offset: 199, wantWidth: 1},
		{offset: 200, wantWidth: 2},
		{offset: 399, wantWidth: 2},
		{offset: 599, wantWidth: 3},
	}

	for _, tt := range tests {
		img, err := s.FrameAt(context.Background(), tt.offset)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("offset %d: expected %v, got %v", tt.offset, tt.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("offset %d: unexpected error: %v", tt.offset, err)
		}
		if img.Bounds().Dx() != tt.wantWidth {
			t.Errorf("offset %d: expected frame %d, got %d", tt.offset, tt.wantWidth, img.Bounds().Dx())
		}
	}
}

func TestSource_NilImageIsNoFrame(t *testing.T) {
	s := New([]Frame{{OffsetMs: 0}}, 100, 0)
	if _, err := s.FrameAt(context.Background(), 50); !errors.Is(err, ports.ErrNoFrame) {
		t.Errorf("expected ErrNoFrame, got %v", err)
	}
}

func TestSource_Close(t *testing.T) {
	s := New([]Frame{{OffsetMs: 0, Image: frameOfWidth(1)}}, 100, 90)
	if s.Rotation() != 90 || s.DurationMs() != 100 {
		t.Errorf("unexpected metadata")
	}
	s.Close()
	if _, err := s.FrameAt(context.Background(), 0); err == nil {
		t.Error("expected error after close")
	}
}

func TestLoadDir(t *testing.T) {
	fs := mocks.NewFileSystem()
	dir := "frames"
	fs.AddFile(filepath.Join(dir, "0002.png"), []byte{2})
	fs.AddFile(filepath.Join(dir, "0001.jpg"), []byte{1})
	fs.AddFile(filepath.Join(dir, "notes.txt"), []byte("skip me"))
	fs.AddFile(filepath.Join(dir, "0003.PNG"), []byte{3})

	var formats []ports.ImageFormat
	renderer := &mocks.Renderer{
		DecodeImageFunc: func(data []byte, format ports.ImageFormat) (image.Image, error) {
			formats = append(formats, format)
			return frameOfWidth(int(data[0])), nil
		},
	}

	s, err := LoadDir(fs, renderer, dir, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.DurationMs() != 750 {
		t.Errorf("expected 750 ms, got %d", s.DurationMs())
	}
	wantFormats := []ports.ImageFormat{ports.FormatJPEG, ports.FormatPNG, ports.FormatPNG}
	for i, f := range wantFormats {
		if formats[i] != f {
			t.Errorf("file %d: expected format %d, got %d", i, f, formats[i])
		}
	}

	img, err := s.FrameAt(context.Background(), 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Bounds().Dx() != 3 {
		t.Errorf("expected third frame at 500 ms, got %d", img.Bounds().Dx())
	}
}

func TestLoadDir_Errors(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile(filepath.Join("text", "a.txt"), []byte("x"))

	if _, err := LoadDir(fs, &mocks.Renderer{}, "text", 5); !errors.Is(err, ErrEmptyDir) {
		t.Errorf("expected ErrEmptyDir, got %v", err)
	}
	if _, err := LoadDir(fs, &mocks.Renderer{}, "missing", 5); err == nil {
		t.Error("expected error for a missing directory")
	}
	if _, err := LoadDir(fs, &mocks.Renderer{}, "text", 0); err == nil {
		t.Error("expected error for fps 0")
	}

	renderer := &mocks.Renderer{
		DecodeImageFunc: func(data []byte, format ports.ImageFormat) (image.Image, error) {
			return nil, errors.New("corrupt")
		},
	}
	fs.AddFile(filepath.Join("bad", "a.png"), []byte{0})
	if _, err := LoadDir(fs, renderer, "bad", 5); err == nil {
		t.Error("expected decode error")
	}
}

func TestOpener(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.AddFile(filepath.Join("seq", "a.png"), []byte{1})

	opener := &Opener{FS: fs, Renderer: &mocks.Renderer{}, FPS: 5}
	source, err := opener.Open(context.Background(), "seq")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.DurationMs() != 200 {
		t.Errorf("expected 200 ms, got %d", source.DurationMs())
	}
}
