package ggrenderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/user/vidaction/pkg/ports"
)

func TestRenderer_CreateCanvas(t *testing.T) {
	r := New()

	canvas := r.CreateCanvas(100, 100, color.White)
	if canvas == nil {
		t.Fatal("expected canvas to be created")
	}

	img := canvas.ToImage()
	bounds := img.Bounds()

	if bounds.Dx() != 100 || bounds.Dy() != 100 {
		t.Errorf("expected 100x100, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_EncodeDecodeJPEG(t *testing.T) {
	r := New()

	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			img.Set(x, y, color.RGBA{R: 255, G: 0, B: 0, A: 255})
		}
	}

	data, err := r.EncodeImage(img, ports.FormatJPEG, 80)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected non-empty data")
	}

	decoded, err := r.DecodeImage(data, ports.FormatJPEG)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}

	bounds := decoded.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 50 {
		t.Errorf("expected 50x50, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderer_EncodeDecodePNG(t *testing.T) {
	r := New()

	img := image.NewRGBA(image.Rect(0, 0, 30, 20))
	img.Set(3, 4, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	data, err := r.EncodeImage(img, ports.FormatPNG, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}

	decoded, err := r.DecodeImage(data, ports.FormatPNG)
	if err != nil {
		t.Fatalf("DecodeImage failed: %v", err)
	}
	r1, g1, b1, _ := decoded.At(3, 4).RGBA()
	if r1>>8 != 10 || g1>>8 != 20 || b1>>8 != 30 {
		t.Errorf("PNG should be lossless, got %d,%d,%d", r1>>8, g1>>8, b1>>8)
	}
}

func TestRenderer_DecodeAuto(t *testing.T) {
	r := New()
	data, err := r.EncodeImage(image.NewRGBA(image.Rect(0, 0, 4, 4)), ports.FormatPNG, 0)
	if err != nil {
		t.Fatalf("EncodeImage failed: %v", err)
	}

	if _, err := r.DecodeImage(data, ports.FormatAuto); err != nil {
		t.Errorf("auto decode failed: %v", err)
	}
	if _, err := r.DecodeImage([]byte("garbage"), ports.FormatAuto); err == nil {
		t.Error("expected error for garbage data")
	}
}

func TestRenderer_EncodeUnsupported(t *testing.T) {
	if _, err := New().EncodeImage(image.NewRGBA(image.Rect(0, 0, 1, 1)), ports.FormatAuto, 0); err == nil {
		t.Error("expected error for FormatAuto encode")
	}
}

func TestCanvas_DrawRect(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(100, 100, color.White)

	canvas.DrawRect(10, 10, 50, 50, color.RGBA{R: 255, A: 255})

	img := canvas.ToImage()
	red, g, b, _ := img.At(30, 30).RGBA()
	if red>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("expected red pixel, got %d,%d,%d", red>>8, g>>8, b>>8)
	}
}

func TestCanvas_DrawImageScaled(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(40, 40, color.White)

	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.Set(x, y, color.RGBA{B: 255, A: 255})
		}
	}
	canvas.DrawImageScaled(src, 0, 0, 40, 40)

	_, _, b, _ := canvas.ToImage().At(20, 20).RGBA()
	if b>>8 < 200 {
		t.Errorf("expected the scaled image to cover the canvas, got blue %d", b>>8)
	}
}

func TestCanvas_DrawText(t *testing.T) {
	r := New()
	canvas := r.CreateCanvas(200, 50, color.White)

	style := ports.TextStyle{
		FontSize: 14,
		Color:    color.Black,
	}

	canvas.DrawText("waving hand 0.91", 10, 25, style)

	img := canvas.ToImage()
	dark := false
	for x := 10; x < 100 && !dark; x++ {
		for y := 15; y < 35; y++ {
			if r1, _, _, _ := img.At(x, y).RGBA(); r1 < 0x8000 {
				dark = true
				break
			}
		}
	}
	if !dark {
		t.Error("expected text pixels to be drawn")
	}
}

func TestCanvas_DrawText_MissingFont(t *testing.T) {
	canvas := New().CreateCanvas(100, 30, color.White)

	// falls back to the built-in face
	canvas.DrawText("x", 5, 15, ports.TextStyle{FontSize: 12, FontPath: "/nonexistent.ttf", Color: color.Black})
}
