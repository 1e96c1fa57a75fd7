package imageprep

import (
	"image"
	"image/color"
	"testing"
)

func newTestImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	return img
}

func TestToRGBA_NonZeroOrigin(t *testing.T) {
	src := newTestImage(10, 10).SubImage(image.Rect(2, 3, 6, 8))
	got := ToRGBA(src)

	if got.Rect != image.Rect(0, 0, 4, 5) {
		t.Fatalf("expected zero-origin 4x5, got %v", got.Rect)
	}
	r, g, _, _ := got.At(0, 0).RGBA()
	if r>>8 != 2 || g>>8 != 3 {
		t.Errorf("expected pixel from (2,3), got r=%d g=%d", r>>8, g>>8)
	}
}

func TestToRGBA_NoCopyWhenAlreadyRGBA(t *testing.T) {
	src := newTestImage(4, 4)
	if ToRGBA(src) != src {
		t.Error("expected the same image to be returned")
	}
}

func TestCenterSquare(t *testing.T) {
	got := CenterSquare(newTestImage(20, 10))
	if got.Bounds().Dx() != 10 || got.Bounds().Dy() != 10 {
		t.Fatalf("expected 10x10, got %v", got.Bounds())
	}
	r, _, _, _ := got.At(0, 0).RGBA()
	if r>>8 != 5 {
		t.Errorf("expected crop to start at x=5, got %d", r>>8)
	}
}

func TestForModel(t *testing.T) {
	got, err := ForModel(newTestImage(64, 48), 32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Bounds() != image.Rect(0, 0, 32, 32) {
		t.Errorf("expected 32x32, got %v", got.Bounds())
	}
}

func TestForModel_Invalid(t *testing.T) {
	if _, err := ForModel(newTestImage(4, 4), 0); err == nil {
		t.Error("expected error for zero size")
	}
	if _, err := ForModel(image.NewRGBA(image.Rect(0, 0, 0, 0)), 8); err == nil {
		t.Error("expected error for empty frame")
	}
}

func TestRotate(t *testing.T) {
	src := newTestImage(3, 2) // pixel (x,y) has R=x, G=y

	tests := []struct {
		degrees    int
		wantBounds image.Rectangle
		// where source pixel (2,0) ends up
		wantX, wantY int
	}{
		{degrees: 90, wantBounds: image.Rect(0, 0, 2, 3), wantX: 1, wantY: 2},
		{degrees: 180, wantBounds: image.Rect(0, 0, 3, 2), wantX: 0, wantY: 1},
		{degrees: 270, wantBounds: image.Rect(0, 0, 2, 3), wantX: 0, wantY: 0},
		{degrees: -90, wantBounds: image.Rect(0, 0, 2, 3), wantX: 0, wantY: 0},
	}

	for _, tt := range tests {
		got, err := Rotate(src, tt.degrees)
		if err != nil {
			t.Fatalf("rotate %d: unexpected error: %v", tt.degrees, err)
		}
		if got.Bounds() != tt.wantBounds {
			t.Errorf("rotate %d: expected bounds %v, got %v", tt.degrees, tt.wantBounds, got.Bounds())
			continue
		}
		r, g, _, _ := got.At(tt.wantX, tt.wantY).RGBA()
		if r>>8 != 2 || g>>8 != 0 {
			t.Errorf("rotate %d: expected source pixel (2,0) at (%d,%d), got r=%d g=%d",
				tt.degrees, tt.wantX, tt.wantY, r>>8, g>>8)
		}
	}
}

func TestRotate_ZeroIsIdentity(t *testing.T) {
	src := newTestImage(3, 2)
	got, err := Rotate(src, 360)
	if err != nil {
		t.Fatal(err)
	}
	if got != image.Image(src) {
		t.Error("expected the same image for a full turn")
	}
}

func TestRotate_Unsupported(t *testing.T) {
	if _, err := Rotate(newTestImage(2, 2), 45); err == nil {
		t.Error("expected error for 45 degrees")
	}
}
