package detection

import "math"

// Angle is a needle orientation in degrees within (-90, 90].
//
// 0 means the needle's major axis is horizontal. The value is axial: a
// needle and its 180 degree rotation share one angle. Positive angles turn
// clockwise on screen because image rows grow downwards.
type Angle float64

// Degrees returns the angle as a plain float.
func (a Angle) Degrees() float64 {
	return float64(a)
}

// ResolveAngle projects a needle's ellipse fit onto the major axis
// orientation. OpenCV reports the angle of the Width axis, so a fit whose
// Height is the longer side is rotated a quarter turn.
func ResolveAngle(seg NeedleSegment) Angle {
	a := seg.Ellipse.Angle
	if seg.Ellipse.Width < seg.Ellipse.Height {
		a += 90
	}
	return Angle(NormalizeAngle(a))
}

// NormalizeAngle folds any orientation in degrees into (-90, 90].
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 180)
	switch {
	case a <= -90:
		a += 180
	case a > 90:
		a -= 180
	}
	return a
}
