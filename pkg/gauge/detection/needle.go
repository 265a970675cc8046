package detection

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// NeedleExtractor isolates the needle inside a located dial.
type NeedleExtractor struct {
	config Config
}

// NewNeedleExtractor creates an extractor with the given parameters.
func NewNeedleExtractor(cfg Config) *NeedleExtractor {
	return &NeedleExtractor{config: cfg}
}

// Extract finds the needle contour inside dial. Edges are computed on the
// whole frame and then masked to the inset dial disc, so the mask border
// and the dial rim never show up as contours.
func (e *NeedleExtractor) Extract(frame gocv.Mat, dial DialRegion) (NeedleSegment, bool) {
	if frame.Empty() || dial.Radius <= 0 {
		return NeedleSegment{}, false
	}

	gray := gocv.NewMat()
	defer gray.Close()
	toGray(frame, &gray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := e.config.NeedleBlurKernel
	gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, e.config.CannyLow, e.config.CannyHigh)

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(e.config.CloseKernel, e.config.CloseKernel))
	defer kernel.Close()
	gocv.MorphologyEx(edges, &edges, gocv.MorphClose, kernel)

	mask := gocv.Zeros(edges.Rows(), edges.Cols(), gocv.MatTypeCV8UC1)
	defer mask.Close()
	inner := int(float64(dial.Radius) * e.config.RimInset)
	gocv.Circle(&mask, dial.Center, inner, color.RGBA{255, 255, 255, 255}, -1)

	masked := gocv.NewMat()
	defer masked.Close()
	gocv.BitwiseAnd(edges, mask, &masked)

	contours := gocv.FindContours(masked, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	return SelectNeedle(contours.ToPoints(), e.config.MinNeedleLength)
}

// SelectNeedle picks the contour with the longest closed arc length. The
// needle is thin, so perimeter separates it from blobs better than area.
// Contours with fewer than MinEllipsePoints points or shorter than
// minLength are dropped before any fitting happens.
func SelectNeedle(contours [][]image.Point, minLength float64) (NeedleSegment, bool) {
	best := -1
	bestLength := 0.0

	for i, c := range contours {
		if len(c) < MinEllipsePoints {
			continue
		}
		length := arcLength(c)
		if length < minLength || length <= bestLength {
			continue
		}
		best = i
		bestLength = length
	}

	if best < 0 {
		return NeedleSegment{}, false
	}

	pts := gocv.NewPointVectorFromPoints(contours[best])
	defer pts.Close()

	box := gocv.BoundingRect(pts)
	fit := gocv.FitEllipse(pts)
	if math.IsNaN(fit.Angle) || (fit.Width == 0 && fit.Height == 0) {
		return NeedleSegment{}, false
	}

	return NeedleSegment{
		Box:    box,
		Center: image.Pt(box.Min.X+box.Dx()/2, box.Min.Y+box.Dy()/2),
		Ellipse: Ellipse{
			Center: fit.Center,
			Width:  fit.Width,
			Height: fit.Height,
			Angle:  fit.Angle,
		},
		Length: bestLength,
		Points: len(contours[best]),
	}, true
}

func arcLength(c []image.Point) float64 {
	pts := gocv.NewPointVectorFromPoints(c)
	defer pts.Close()
	return gocv.ArcLength(pts, true)
}
