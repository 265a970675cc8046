package gauge

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teslashibe/go-gauge/pkg/gauge/detection"
)

func defaultProfile(t *testing.T) *IntervalProfile {
	t.Helper()
	p, err := NewIntervalProfile(DefaultIntervals())
	require.NoError(t, err)
	return p
}

func TestIntervalProfile_Bands(t *testing.T) {
	p := defaultProfile(t)

	tests := []struct {
		name  string
		from  float64
		to    float64
		label string
	}{
		{"stormy", -89.9, -45.1, LabelStormy},
		{"normal", -44.9, 44.9, LabelNormal},
		{"sunny", 45.1, 90, LabelSunny},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for a := tc.from; a <= tc.to; a += 0.5 {
				got := p.Map(detection.Angle(a))
				assert.True(t, got.Known, "angle %v", a)
				assert.Equal(t, tc.label, got.Label, "angle %v", a)
			}
			assert.Equal(t, tc.label, p.Map(detection.Angle(tc.to)).Label)
		})
	}
}

func TestIntervalProfile_BoundaryGoesToFirstDeclared(t *testing.T) {
	p := defaultProfile(t)

	assert.Equal(t, LabelStormy, p.Map(-45).Label, "-45 is shared by Stormy and Normal")
	assert.Equal(t, LabelNormal, p.Map(45).Label, "45 is shared by Normal and Sunny")
	assert.Equal(t, LabelSunny, p.Map(90).Label)
}

func TestIntervalProfile_OutsideDomain(t *testing.T) {
	p := defaultProfile(t)

	for _, a := range []float64{-90, -90.5, -180, 90.01, 135, 400, math.NaN(), math.Inf(1)} {
		got := p.Map(detection.Angle(a))
		assert.False(t, got.Known, "angle %v", a)
		assert.Equal(t, LabelUnknown, got.Label, "angle %v", a)
	}
}

func TestNewIntervalProfile_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		intervals []Interval
	}{
		{"overlap", []Interval{{-90, 10, "A"}, {0, 90, "B"}}},
		{"gap", []Interval{{-90, 0, "A"}, {10, 90, "B"}}},
		{"short of -90", []Interval{{-80, 0, "A"}, {0, 90, "B"}}},
		{"short of 90", []Interval{{-90, 0, "A"}, {0, 80, "B"}}},
		{"inverted", []Interval{{-90, 90, "A"}, {90, 80, "B"}}},
		{"missing label", []Interval{{-90, 90, ""}}},
		{"reserved label", []Interval{{-90, 90, LabelUnknown}}},
		{"out of order", []Interval{{0, 90, "B"}, {-90, 0, "A"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewIntervalProfile(tc.intervals)
			assert.Nil(t, p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))

			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.NotEmpty(t, cfgErr.Problems)
		})
	}
}

func TestNewIntervalProfile_Empty(t *testing.T) {
	_, err := NewIntervalProfile(nil)
	assert.ErrorIs(t, err, ErrNoIntervals)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewIntervalProfile_CopiesInput(t *testing.T) {
	in := DefaultIntervals()
	p, err := NewIntervalProfile(in)
	require.NoError(t, err)

	in[1].Label = "Changed"
	assert.Equal(t, LabelNormal, p.Map(0).Label)
}

func TestTickProfile_Step(t *testing.T) {
	ticks := DefaultTickProfile()
	assert.InDelta(t, 360.0/41, ticks.Step(), 1e-9)
	assert.Zero(t, TickProfile{}.Step())
}

func TestTickProfile_Guides(t *testing.T) {
	dial := detection.DialRegion{Center: image.Pt(100, 100), Radius: 80}
	guides := DefaultTickProfile().Guides(dial)

	require.Len(t, guides, 3)

	assert.True(t, guides[0].Zero)
	assert.Equal(t, image.Pt(180, 100), guides[0].To)

	assert.Equal(t, "100", guides[1].Label)
	assert.Equal(t, image.Pt(161, 151), guides[1].To) // 80*cos40=61.3, 80*sin40=51.4

	assert.Equal(t, "0", guides[2].Label)
	assert.Equal(t, image.Pt(44, 156), guides[2].To) // 80*cos135=-56.6, 80*sin135=56.6

	for _, g := range guides {
		assert.Equal(t, dial.Center, g.From)
	}
}

func TestTickProfile_Marks(t *testing.T) {
	dial := detection.DialRegion{Center: image.Pt(0, 0), Radius: 100}
	marks := DefaultTickProfile().Marks(dial)

	require.Len(t, marks, 41)
	assert.Equal(t, image.Pt(100, 0), marks[0])
	for _, m := range marks {
		d := math.Hypot(float64(m.X), float64(m.Y))
		assert.InDelta(t, 100, d, 1.5)
	}
}

func TestNewScale(t *testing.T) {
	s, err := NewScale(DefaultScaleConfig())
	require.NoError(t, err)

	assert.Equal(t, LabelNormal, s.Map(0).Label)
	assert.Len(t, s.Intervals(), 3)

	ticks, ok := s.Ticks()
	require.True(t, ok)
	assert.Equal(t, 41, ticks.Divisions)
}

func TestNewScale_WithoutTicks(t *testing.T) {
	s, err := NewScale(ScaleConfig{Intervals: DefaultIntervals()})
	require.NoError(t, err)

	_, ok := s.Ticks()
	assert.False(t, ok)
}

func TestNewScale_BadTicks(t *testing.T) {
	_, err := NewScale(ScaleConfig{Intervals: DefaultIntervals(), Ticks: &TickProfile{Divisions: 0}})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestScale_ConfigRoundTrip(t *testing.T) {
	in := DefaultScaleConfig()
	s, err := NewScale(in)
	require.NoError(t, err)

	out := s.Config()
	assert.Equal(t, in, out)

	out.Ticks.Anchors[0].Label = "changed"
	again, _ := s.Ticks()
	assert.Equal(t, "100", again.Anchors[0].Label, "Config must not alias the scale")

	bare, err := NewScale(ScaleConfig{Intervals: DefaultIntervals()})
	require.NoError(t, err)
	assert.Nil(t, bare.Config().Ticks)
}
