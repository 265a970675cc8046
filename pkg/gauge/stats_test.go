package gauge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/teslashibe/go-gauge/pkg/gauge/detection"
)

func TestAngleStats_Empty(t *testing.T) {
	s := NewAngleStats(5)
	assert.Equal(t, StatsSummary{}, s.Summary())
	assert.Zero(t, s.Len())
}

func TestAngleStats_Mean(t *testing.T) {
	s := NewAngleStats(10)
	for _, a := range []float64{10, 20, 30} {
		s.Add(detection.Angle(a))
	}

	sum := s.Summary()
	assert.Equal(t, 3, sum.Count)
	assert.InDelta(t, 20, sum.Mean, 0.5)
	assert.InDelta(t, 8.165, sum.StdDev, 0.1)
	assert.Equal(t, 30.0, sum.Last)
}

func TestAngleStats_WrapsAroundVertical(t *testing.T) {
	s := NewAngleStats(10)
	s.Add(detection.Angle(88))
	s.Add(detection.Angle(-88))

	sum := s.Summary()
	// 88 and -88 are 4 degrees apart through vertical, not 176.
	assert.InDelta(t, 0, detection.NormalizeAngle(sum.Mean-90), 0.5)
	assert.InDelta(t, 2, sum.StdDev, 0.5)
}

func TestAngleStats_RollingWindow(t *testing.T) {
	s := NewAngleStats(3)
	for _, a := range []float64{-60, -60, -60, 40, 40, 40} {
		s.Add(detection.Angle(a))
	}

	sum := s.Summary()
	assert.Equal(t, 3, sum.Count)
	assert.InDelta(t, 40, sum.Mean, 0.01)
	assert.InDelta(t, 0, sum.StdDev, 0.01)
}

func TestNewAngleStats_DefaultSize(t *testing.T) {
	s := NewAngleStats(0)
	for i := 0; i < DefaultStatsWindow+5; i++ {
		s.Add(0)
	}
	assert.Equal(t, DefaultStatsWindow, s.Len())
}
