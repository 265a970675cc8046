// Package gauge turns camera frames of an analog barometer into readings:
// it chains dial location, needle extraction, angle resolution, scale
// mapping and the one-shot reading latch.
package gauge

import "github.com/teslashibe/go-gauge/pkg/gauge/detection"

// Config holds the reader configuration.
type Config struct {
	Detection   detection.Config `yaml:"detection"`
	Scale       ScaleConfig      `yaml:"scale"`
	Target      string           `yaml:"target"`       // label to lock on, empty disables locking
	Annotate    bool             `yaml:"annotate"`     // draw overlays on processed frames
	StatsWindow int              `yaml:"stats_window"` // angles kept for statistics
}

// DefaultConfig returns the barometer reader that locks on the first
// "Normal" reading.
func DefaultConfig() Config {
	return Config{
		Detection:   detection.DefaultConfig(),
		Scale:       DefaultScaleConfig(),
		Target:      LabelNormal,
		Annotate:    true,
		StatsWindow: DefaultStatsWindow,
	}
}

// Validate checks the detection and scale sections.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	errors := c.Detection.Validate()
	if _, err := NewScale(c.Scale); err != nil {
		errors = append(errors, err.Error())
	} else if c.Target != "" && !hasLabel(c.Scale.Intervals, c.Target) {
		errors = append(errors, "target "+c.Target+" is not a label of the scale")
	}
	if c.StatsWindow < 0 {
		errors = append(errors, "stats_window must not be negative")
	}
	return errors
}

func hasLabel(intervals []Interval, label string) bool {
	for _, iv := range intervals {
		if iv.Label == label {
			return true
		}
	}
	return false
}
