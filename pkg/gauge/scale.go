package gauge

import (
	"fmt"
	"image"
	"math"

	"github.com/teslashibe/go-gauge/pkg/gauge/detection"
)

// Barometer labels used by the default scale.
const (
	LabelStormy  = "Stormy"
	LabelNormal  = "Normal"
	LabelSunny   = "Sunny"
	LabelUnknown = "Unknown"
)

// Bounds of the needle angle domain, in degrees. The domain is (MinAngle, MaxAngle].
const (
	MinAngle = -90.0
	MaxAngle = 90.0
)

// Reading is the value a scale assigns to one needle angle.
type Reading struct {
	Label string `json:"label"`
	Known bool   `json:"known"` // false when no interval matched
}

// Unknown is returned for angles outside every interval.
var Unknown = Reading{Label: LabelUnknown}

// String returns the label.
func (r Reading) String() string {
	return r.Label
}

// Interval maps the closed angle range [Min, Max] to a label.
type Interval struct {
	Min   float64 `yaml:"min" json:"min"`
	Max   float64 `yaml:"max" json:"max"`
	Label string  `yaml:"label" json:"label"`
}

// Contains reports whether angle lies in the closed range.
func (iv Interval) Contains(angle float64) bool {
	return angle >= iv.Min && angle <= iv.Max
}

// IntervalProfile is an ordered list of contiguous intervals covering
// [-90, 90]. Neighbours share their boundary value; lookup is first match
// in declared order, so a shared boundary belongs to the earlier interval.
type IntervalProfile struct {
	intervals []Interval
}

// NewIntervalProfile validates intervals and builds a profile. Intervals
// must be declared in ascending order, each starting where the previous one
// ends, and together span exactly [-90, 90].
func NewIntervalProfile(intervals []Interval) (*IntervalProfile, error) {
	if len(intervals) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, ErrNoIntervals)
	}

	var problems []string
	for i, iv := range intervals {
		if iv.Label == "" {
			problems = append(problems, fmt.Sprintf("interval %d has no label", i))
		}
		if iv.Label == LabelUnknown {
			problems = append(problems, fmt.Sprintf("interval %d uses the reserved label %q", i, LabelUnknown))
		}
		if math.IsNaN(iv.Min) || math.IsNaN(iv.Max) || iv.Min > iv.Max {
			problems = append(problems, fmt.Sprintf("interval %d (%s) has min %v > max %v", i, iv.Label, iv.Min, iv.Max))
		}
		if i == 0 {
			continue
		}
		prev := intervals[i-1]
		switch {
		case iv.Min < prev.Max:
			problems = append(problems, fmt.Sprintf("interval %d (%s) overlaps %s", i, iv.Label, prev.Label))
		case iv.Min > prev.Max:
			problems = append(problems, fmt.Sprintf("gap between %s and %s (%v..%v)", prev.Label, iv.Label, prev.Max, iv.Min))
		}
	}

	if first := intervals[0]; first.Min != MinAngle {
		problems = append(problems, fmt.Sprintf("first interval must start at %v, starts at %v", MinAngle, first.Min))
	}
	if last := intervals[len(intervals)-1]; last.Max != MaxAngle {
		problems = append(problems, fmt.Sprintf("last interval must end at %v, ends at %v", MaxAngle, last.Max))
	}

	if err := newConfigError("scale", problems); err != nil {
		return nil, err
	}

	return &IntervalProfile{intervals: append([]Interval(nil), intervals...)}, nil
}

// DefaultIntervals returns the three barometer bands.
func DefaultIntervals() []Interval {
	return []Interval{
		{Min: -90, Max: -45, Label: LabelStormy},
		{Min: -45, Max: 45, Label: LabelNormal},
		{Min: 45, Max: 90, Label: LabelSunny},
	}
}

// Intervals returns a copy of the configured intervals.
func (p *IntervalProfile) Intervals() []Interval {
	return append([]Interval(nil), p.intervals...)
}

// Map returns the label for angle. Angles outside (-90, 90] and NaN map
// to Unknown without consulting the table.
func (p *IntervalProfile) Map(angle detection.Angle) Reading {
	a := angle.Degrees()
	if math.IsNaN(a) || a <= MinAngle || a > MaxAngle {
		return Unknown
	}
	for _, iv := range p.intervals {
		if iv.Contains(a) {
			return Reading{Label: iv.Label, Known: true}
		}
	}
	return Unknown
}

// Tick is a labelled graduation at an angle, in degrees clockwise from the
// positive x axis of the frame.
type Tick struct {
	Angle float64 `yaml:"angle" json:"angle"`
	Label string  `yaml:"label" json:"label"`
}

// TickProfile describes the graduations drawn over a dial for visual
// calibration. It never produces a reading.
type TickProfile struct {
	Divisions int     `yaml:"divisions" json:"divisions"`
	Zero      float64 `yaml:"zero" json:"zero"` // angle of the reference guide
	Anchors   []Tick  `yaml:"anchors" json:"anchors"`
}

// DefaultTickProfile returns the 41 division barometer face with the
// "100" and "0" anchors.
func DefaultTickProfile() TickProfile {
	return TickProfile{
		Divisions: 41,
		Zero:      0,
		Anchors: []Tick{
			{Angle: 40, Label: "100"},
			{Angle: 135, Label: "0"},
		},
	}
}

// Validate checks if the tick profile is usable.
func (t *TickProfile) Validate() []string {
	var errors []string
	if t.Divisions < 1 {
		errors = append(errors, "divisions must be positive")
	}
	for i, a := range t.Anchors {
		if a.Label == "" {
			errors = append(errors, fmt.Sprintf("anchor %d has no label", i))
		}
	}
	return errors
}

// Step returns the angle between two graduations.
func (t TickProfile) Step() float64 {
	if t.Divisions < 1 {
		return 0
	}
	return 360 / float64(t.Divisions)
}

// GuideLine is a radial line from the dial center to its rim.
type GuideLine struct {
	From  image.Point `json:"from"`
	To    image.Point `json:"to"`
	Label string      `json:"label,omitempty"`
	Zero  bool        `json:"zero,omitempty"`
}

// Guides returns the reference guide followed by one guide per anchor.
func (t TickProfile) Guides(dial detection.DialRegion) []GuideLine {
	guides := make([]GuideLine, 0, len(t.Anchors)+1)
	guides = append(guides, GuideLine{From: dial.Center, To: rimPoint(dial, t.Zero), Zero: true})
	for _, a := range t.Anchors {
		guides = append(guides, GuideLine{From: dial.Center, To: rimPoint(dial, a.Angle), Label: a.Label})
	}
	return guides
}

// Marks returns the rim end of every graduation, starting at Zero.
func (t TickProfile) Marks(dial detection.DialRegion) []image.Point {
	step := t.Step()
	marks := make([]image.Point, 0, t.Divisions)
	for i := 0; i < t.Divisions; i++ {
		marks = append(marks, rimPoint(dial, t.Zero+float64(i)*step))
	}
	return marks
}

// rimPoint truncates toward zero like the pixel grid does.
func rimPoint(dial detection.DialRegion, deg float64) image.Point {
	rad := deg * math.Pi / 180
	r := float64(dial.Radius)
	return image.Pt(dial.Center.X+int(r*math.Cos(rad)), dial.Center.Y+int(r*math.Sin(rad)))
}

// ScaleConfig is the serializable form of a Scale.
type ScaleConfig struct {
	Intervals []Interval   `yaml:"intervals" json:"intervals"`
	Ticks     *TickProfile `yaml:"ticks" json:"ticks,omitempty"` // nil disables the overlay
}

// DefaultScaleConfig returns the barometer bands with the tick overlay.
func DefaultScaleConfig() ScaleConfig {
	ticks := DefaultTickProfile()
	return ScaleConfig{
		Intervals: DefaultIntervals(),
		Ticks:     &ticks,
	}
}

// Scale maps needle angles to readings and carries the optional tick
// overlay. Both profiles are immutable once built.
type Scale struct {
	intervals *IntervalProfile
	ticks     *TickProfile
}

// NewScale validates cfg and builds a scale.
func NewScale(cfg ScaleConfig) (*Scale, error) {
	intervals, err := NewIntervalProfile(cfg.Intervals)
	if err != nil {
		return nil, err
	}

	s := &Scale{intervals: intervals}
	if cfg.Ticks != nil {
		if err := newConfigError("ticks", cfg.Ticks.Validate()); err != nil {
			return nil, err
		}
		ticks := *cfg.Ticks
		ticks.Anchors = append([]Tick(nil), cfg.Ticks.Anchors...)
		s.ticks = &ticks
	}
	return s, nil
}

// Map returns the reading for angle.
func (s *Scale) Map(angle detection.Angle) Reading {
	return s.intervals.Map(angle)
}

// Intervals returns a copy of the interval table.
func (s *Scale) Intervals() []Interval {
	return s.intervals.Intervals()
}

// Ticks returns the tick overlay, or false if none is configured.
func (s *Scale) Ticks() (TickProfile, bool) {
	if s.ticks == nil {
		return TickProfile{}, false
	}
	return *s.ticks, true
}

// Config returns a copy of the configuration the scale was built from.
func (s *Scale) Config() ScaleConfig {
	cfg := ScaleConfig{Intervals: s.Intervals()}
	if ticks, ok := s.Ticks(); ok {
		ticks.Anchors = append([]Tick(nil), ticks.Anchors...)
		cfg.Ticks = &ticks
	}
	return cfg
}
