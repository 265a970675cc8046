// Package detection locates a dial face in a camera frame and reduces its
// needle to a single oriented segment using OpenCV primitives.
package detection

import (
	"fmt"
	"image"
)

// MinEllipsePoints is the smallest contour OpenCV can fit an ellipse to.
const MinEllipsePoints = 5

// DialRegion is the circular dial face found in a frame, in pixels.
type DialRegion struct {
	Center image.Point `json:"center"`
	Radius int         `json:"radius"`
}

// Bounds returns the square enclosing the dial.
func (d DialRegion) Bounds() image.Rectangle {
	return image.Rect(d.Center.X-d.Radius, d.Center.Y-d.Radius, d.Center.X+d.Radius, d.Center.Y+d.Radius)
}

// Contains reports whether p lies inside or on the dial circle.
func (d DialRegion) Contains(p image.Point) bool {
	dx := p.X - d.Center.X
	dy := p.Y - d.Center.Y
	return dx*dx+dy*dy <= d.Radius*d.Radius
}

// Ellipse is the best-fit ellipse of a contour as reported by OpenCV.
// Angle is in degrees, measured from the horizontal to the Width axis.
type Ellipse struct {
	Center image.Point `json:"center"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Angle  float64     `json:"angle"`
}

// NeedleSegment is the contour selected as the needle inside a dial.
type NeedleSegment struct {
	Box     image.Rectangle `json:"box"`
	Center  image.Point     `json:"center"`
	Ellipse Ellipse         `json:"ellipse"`
	Length  float64         `json:"length"` // closed arc length in pixels
	Points  int             `json:"points"`
}

// Config holds the tunable parameters of both detection stages.
type Config struct {
	// Dial location
	BlurKernel   int     `yaml:"blur_kernel"`    // Gaussian kernel size (odd)
	BlurSigma    float64 `yaml:"blur_sigma"`     // Gaussian sigma
	CannyLow     float32 `yaml:"canny_low"`      // Lower hysteresis threshold
	CannyHigh    float32 `yaml:"canny_high"`     // Upper hysteresis threshold
	HoughDP      float64 `yaml:"hough_dp"`       // Accumulator resolution ratio
	HoughMinDist float64 `yaml:"hough_min_dist"` // Minimum distance between circle centers
	HoughParam1  float64 `yaml:"hough_param1"`   // Internal edge threshold
	HoughParam2  float64 `yaml:"hough_param2"`   // Accumulator threshold
	MinRadius    int     `yaml:"min_radius"`
	MaxRadius    int     `yaml:"max_radius"`

	// Needle extraction
	NeedleBlurKernel int     `yaml:"needle_blur_kernel"` // Gaussian kernel inside the dial (odd)
	CloseKernel      int     `yaml:"close_kernel"`       // Morphological closing kernel
	RimInset         float64 `yaml:"rim_inset"`          // Fraction of the radius kept by the mask
	MinNeedleLength  float64 `yaml:"min_needle_length"`  // Shortest accepted contour, pixels
}

// DefaultConfig returns the parameters tuned for a barometer filling a
// good part of a 640x480 to 1080p frame.
func DefaultConfig() Config {
	return Config{
		BlurKernel:   15,
		BlurSigma:    2,
		CannyLow:     50,
		CannyHigh:    150,
		HoughDP:      1,
		HoughMinDist: 100,
		HoughParam1:  50,
		HoughParam2:  60,
		MinRadius:    50,
		MaxRadius:    300,

		NeedleBlurKernel: 5,
		CloseKernel:      3,
		RimInset:         0.85,
		MinNeedleLength:  20,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.BlurKernel < 1 || c.BlurKernel%2 == 0 {
		errors = append(errors, fmt.Sprintf("blur_kernel must be a positive odd number, got %d", c.BlurKernel))
	}
	if c.NeedleBlurKernel < 1 || c.NeedleBlurKernel%2 == 0 {
		errors = append(errors, fmt.Sprintf("needle_blur_kernel must be a positive odd number, got %d", c.NeedleBlurKernel))
	}
	if c.BlurSigma < 0 {
		errors = append(errors, "blur_sigma must not be negative")
	}
	if c.CannyLow <= 0 || c.CannyHigh <= c.CannyLow {
		errors = append(errors, "canny thresholds must satisfy 0 < canny_low < canny_high")
	}
	if c.HoughDP < 1 {
		errors = append(errors, "hough_dp must be >= 1")
	}
	if c.HoughMinDist <= 0 {
		errors = append(errors, "hough_min_dist must be positive")
	}
	if c.HoughParam1 <= 0 || c.HoughParam2 <= 0 {
		errors = append(errors, "hough_param1 and hough_param2 must be positive")
	}
	if c.MinRadius < 0 {
		errors = append(errors, "min_radius must not be negative")
	}
	if c.MaxRadius != 0 && c.MaxRadius < c.MinRadius {
		errors = append(errors, "max_radius must be 0 (unbounded) or >= min_radius")
	}
	if c.CloseKernel < 1 {
		errors = append(errors, "close_kernel must be positive")
	}
	if c.RimInset <= 0 || c.RimInset > 1 {
		errors = append(errors, "rim_inset must be in (0, 1]")
	}
	if c.MinNeedleLength < 0 {
		errors = append(errors, "min_needle_length must not be negative")
	}

	return errors
}
