// Package session runs the capture, read and display cycle for one
// continuous reading session.
package session

import "time"

// Config holds frame loop parameters.
type Config struct {
	// FrameDelay is the pause between cycles.
	FrameDelay time.Duration `yaml:"frame_delay" json:"frame_delay"`

	// MaxFrames ends the session after that many frames. 0 runs until
	// cancelled or the source fails.
	MaxFrames int `yaml:"max_frames" json:"max_frames"`
}

// DefaultFrameDelay paces a session at two frames per second.
const DefaultFrameDelay = 500 * time.Millisecond

// DefaultConfig returns the default loop configuration.
func DefaultConfig() Config {
	return Config{
		FrameDelay: DefaultFrameDelay,
		MaxFrames:  0,
	}
}

// Validate checks if the config values are within valid ranges.
func (c *Config) Validate() []string {
	var errors []string

	if c.FrameDelay < 0 {
		errors = append(errors, "frame_delay must be >= 0")
	}
	if c.FrameDelay > time.Minute {
		errors = append(errors, "frame_delay must be at most 1m")
	}
	if c.MaxFrames < 0 {
		errors = append(errors, "max_frames must be >= 0")
	}

	return errors
}
