// Package imageprep normalises decoded frames before they reach a model.
package imageprep

import (
	"fmt"
	"image"
	stddraw "image/draw"

	"golang.org/x/image/draw"
)

// ToRGBA returns img as a zero-origin *image.RGBA, converting only when needed.
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	stddraw.Draw(rgba, rgba.Bounds(), img, b.Min, stddraw.Src)
	return rgba
}

// CenterSquare crops the largest centered square out of img.
func CenterSquare(img image.Image) image.Image {
	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2

	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	stddraw.Draw(dst, dst.Bounds(), img, image.Pt(x0, y0), stddraw.Src)
	return dst
}

// Resize scales img to width x height with Catmull-Rom interpolation.
func Resize(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// ForModel crops the center square and resizes it to size x size.
func ForModel(img image.Image, size int) (*image.RGBA, error) {
	if size <= 0 {
		return nil, fmt.Errorf("imageprep: invalid model input size %d", size)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("imageprep: empty frame")
	}
	return Resize(CenterSquare(img), size, size), nil
}

// Rotate rotates img clockwise by degrees, which must be 0, 90, 180 or 270.
func Rotate(img image.Image, degrees int) (image.Image, error) {
	degrees = ((degrees % 360) + 360) % 360
	if degrees == 0 {
		return img, nil
	}

	src := ToRGBA(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()

	var dst *image.RGBA
	switch degrees {
	case 90, 270:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	case 180:
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	default:
		return nil, fmt.Errorf("imageprep: unsupported rotation %d", degrees)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch degrees {
			case 90:
				dx, dy = h-1-y, x
			case 180:
				dx, dy = w-1-x, h-1-y
			case 270:
				dx, dy = y, w-1-x
			}
			si := src.PixOffset(x, y)
			di := dst.PixOffset(dx, dy)
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst, nil
}
