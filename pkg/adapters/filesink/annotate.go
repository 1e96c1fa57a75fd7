package filesink

import (
	"fmt"
	"image"
	"image/color"

	"github.com/user/vidaction/pkg/display"
	"github.com/user/vidaction/pkg/ports"
)

// Annotation layout, in pixels.
const (
	annotatedWidth = 480
	lineHeight     = 22
	textPadding    = 8
	fontSize       = 14
)

// Theme holds the annotation colors. Nil fields use DefaultTheme.
type Theme struct {
	Background color.Color
	Bar        color.Color
	Text       color.Color
}

// DefaultTheme returns the default annotation colors.
func DefaultTheme() Theme {
	return Theme{
		Background: color.RGBA{R: 24, G: 24, B: 24, A: 255},
		Bar:        color.RGBA{R: 46, G: 125, B: 50, A: 255},
		Text:       color.RGBA{R: 255, G: 255, B: 255, A: 255},
	}
}

func (t Theme) withDefaults() Theme {
	d := DefaultTheme()
	if t.Background == nil {
		t.Background = d.Background
	}
	if t.Bar == nil {
		t.Bar = d.Bar
	}
	if t.Text == nil {
		t.Text = d.Text
	}
	return t
}

// Annotate draws p.Image scaled to a fixed width with one bar per category
// underneath, sized by score.
func Annotate(renderer ports.Renderer, p ports.Preview, fontPath string, theme Theme) image.Image {
	theme = theme.withDefaults()

	b := p.Image.Bounds()
	imgHeight := annotatedWidth
	if b.Dx() > 0 {
		imgHeight = b.Dy() * annotatedWidth / b.Dx()
	}

	rows := len(p.Categories) + 1
	height := imgHeight + rows*lineHeight + textPadding

	canvas := renderer.CreateCanvas(annotatedWidth, height, theme.Background)
	canvas.DrawImageScaled(p.Image, 0, 0, annotatedWidth, imgHeight)

	style := ports.TextStyle{FontSize: fontSize, FontPath: fontPath, Color: theme.Text}

	y := imgHeight + textPadding/2
	canvas.DrawText(fmt.Sprintf("t = %s s", display.FormatSeconds(p.TimestampMs)), textPadding, y+lineHeight/2, style)

	for _, c := range p.Categories {
		y += lineHeight
		score := c.Score
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		barWidth := int(float32(annotatedWidth-2*textPadding) * score)
		canvas.DrawRect(textPadding, y+2, barWidth, lineHeight-4, theme.Bar)
		canvas.DrawText(fmt.Sprintf("%s  %s", c.Label, display.FormatScore(c.Score)), textPadding+4, y+lineHeight/2, style)
	}

	return canvas.ToImage()
}
