package gauge

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Overlay colors.
var (
	colorDial   = color.RGBA{0, 255, 0, 0}
	colorCenter = color.RGBA{255, 128, 0, 0}
	colorNeedle = color.RGBA{255, 0, 255, 0}
	colorZero   = color.RGBA{255, 255, 0, 0}
	colorAnchor = color.RGBA{255, 0, 0, 0}
	colorMark   = color.RGBA{0, 160, 255, 0}
	colorText   = color.RGBA{0, 255, 0, 0}
)

// TextOrigin is where the reading text is drawn.
var TextOrigin = image.Pt(50, 50)

// Annotator draws the dial, needle, tick guides and reading on a frame.
type Annotator struct {
	scale *Scale
}

// NewAnnotator creates an annotator for scale.
func NewAnnotator(scale *Scale) *Annotator {
	return &Annotator{scale: scale}
}

// Draw overlays res on img. Results without a reading draw nothing.
func (a *Annotator) Draw(img *gocv.Mat, res Result) {
	if !res.OK() || res.Dial == nil {
		return
	}
	dial := *res.Dial

	gocv.Circle(img, dial.Center, dial.Radius, colorDial, 2)
	c := dial.Center
	gocv.Rectangle(img, image.Rect(c.X-5, c.Y-5, c.X+5, c.Y+5), colorCenter, -1)

	if res.Needle != nil {
		gocv.Rectangle(img, res.Needle.Box, colorNeedle, 1)
	}

	if ticks, ok := a.scale.Ticks(); ok {
		for _, m := range ticks.Marks(dial) {
			gocv.Circle(img, m, 2, colorMark, -1)
		}
		for _, g := range ticks.Guides(dial) {
			if g.Zero {
				gocv.Line(img, g.From, g.To, colorZero, 2)
				continue
			}
			gocv.Line(img, g.From, g.To, colorAnchor, 2)
			gocv.PutText(img, g.Label, g.To, gocv.FontHersheySimplex, 1, colorAnchor, 2)
		}
	}

	gocv.PutText(img, Caption(res), TextOrigin, gocv.FontHersheySimplex, 1, colorText, 2)
}

// Caption returns the text shown for a result.
func Caption(res Result) string {
	if !res.OK() {
		return ""
	}
	if res.State == Locked {
		return fmt.Sprintf("Fixed Value: %s", res.Displayed.Label)
	}
	return fmt.Sprintf("Value: %s", res.Displayed.Label)
}
