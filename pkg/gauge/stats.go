package gauge

import (
	"math"

	"github.com/teslashibe/go-gauge/pkg/gauge/detection"
	"gonum.org/v1/gonum/stat"
)

// DefaultStatsWindow is the number of recent angles kept for statistics.
const DefaultStatsWindow = 30

// StatsSummary describes the recent needle angles of a session.
type StatsSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`   // axial mean, degrees in (-90, 90]
	StdDev float64 `json:"stddev"` // spread around Mean, degrees
	Last   float64 `json:"last"`
}

// AngleStats keeps a rolling window of needle angles. Angles are axial, so
// the mean is taken on doubled angles and halved back, which keeps -89 and
// 89 next to each other.
type AngleStats struct {
	window []float64
	next   int
	full   bool
	last   float64
}

// NewAngleStats creates a window holding up to size angles.
func NewAngleStats(size int) *AngleStats {
	if size < 1 {
		size = DefaultStatsWindow
	}
	return &AngleStats{window: make([]float64, size)}
}

// Add records one angle.
func (s *AngleStats) Add(a detection.Angle) {
	s.window[s.next] = a.Degrees()
	s.last = a.Degrees()
	s.next++
	if s.next == len(s.window) {
		s.next = 0
		s.full = true
	}
}

// Len returns the number of angles held.
func (s *AngleStats) Len() int {
	if s.full {
		return len(s.window)
	}
	return s.next
}

// Summary computes the axial mean and spread of the window.
func (s *AngleStats) Summary() StatsSummary {
	n := s.Len()
	if n == 0 {
		return StatsSummary{}
	}

	doubled := make([]float64, n)
	for i := 0; i < n; i++ {
		doubled[i] = 2 * s.window[i] * math.Pi / 180
	}
	mean := detection.NormalizeAngle(stat.CircularMean(doubled, nil) / 2 * 180 / math.Pi)

	sum := StatsSummary{Count: n, Mean: mean, Last: s.last}
	if n < 2 {
		return sum
	}

	devs := make([]float64, n)
	for i := 0; i < n; i++ {
		devs[i] = detection.NormalizeAngle(s.window[i] - mean)
	}
	_, sum.StdDev = stat.PopMeanStdDev(devs, nil)
	return sum
}
