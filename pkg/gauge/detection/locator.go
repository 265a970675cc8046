package detection

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// DialLocator finds the circular dial face in a frame with a Hough
// transform over the frame's edge map.
type DialLocator struct {
	config Config
}

// NewDialLocator creates a locator with the given parameters.
func NewDialLocator(cfg Config) *DialLocator {
	return &DialLocator{config: cfg}
}

// Locate returns the dial in frame, or false when no circle satisfies the
// radius and accumulator constraints.
//
// When the transform reports several circles the first one in its native
// order is used. No re-ranking is done.
func (l *DialLocator) Locate(frame gocv.Mat) (DialRegion, bool) {
	if frame.Empty() {
		return DialRegion{}, false
	}

	gray := gocv.NewMat()
	defer gray.Close()
	toGray(frame, &gray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := l.config.BlurKernel
	gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), l.config.BlurSigma, l.config.BlurSigma, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, l.config.CannyLow, l.config.CannyHigh)

	circles := gocv.NewMat()
	defer circles.Close()
	gocv.HoughCirclesWithParams(edges, &circles, gocv.HoughGradient,
		l.config.HoughDP, l.config.HoughMinDist,
		l.config.HoughParam1, l.config.HoughParam2,
		l.config.MinRadius, l.config.MaxRadius)

	if circles.Empty() || circles.Cols() == 0 {
		return DialRegion{}, false
	}

	// circles is 1xN with (x, y, r) triplets
	x := float64(circles.GetFloatAt(0, 0))
	y := float64(circles.GetFloatAt(0, 1))
	r := float64(circles.GetFloatAt(0, 2))

	dial := DialRegion{
		Center: image.Pt(int(math.Round(x)), int(math.Round(y))),
		Radius: int(math.Round(r)),
	}
	if dial.Radius <= 0 {
		return DialRegion{}, false
	}
	return dial, true
}

// toGray converts a BGR, BGRA or single channel frame to grayscale.
func toGray(src gocv.Mat, dst *gocv.Mat) {
	switch src.Channels() {
	case 1:
		src.CopyTo(dst)
	case 4:
		gocv.CvtColor(src, dst, gocv.ColorBGRAToGray)
	default:
		gocv.CvtColor(src, dst, gocv.ColorBGRToGray)
	}
}
