// Package camera provides the capture sources that feed the gauge reader:
// local video devices and files through OpenCV, and scripted mocks for
// tests.
package camera

import (
	"fmt"
	"strconv"
)

// Config holds all capture configuration parameters.
type Config struct {
	// Device is a camera index ("0", "1") or a video file / stream URL.
	Device string `yaml:"device" json:"device"`

	// === Resolution ===
	Width  int     `yaml:"width" json:"width"`   // Requested frame width in pixels
	Height int     `yaml:"height" json:"height"` // Requested frame height in pixels
	FPS    float64 `yaml:"fps" json:"fps"`       // Requested frame rate, 0 keeps the driver default

	// FourCC is the requested pixel format, e.g. "MJPG". Empty keeps the
	// driver default.
	FourCC string `yaml:"fourcc" json:"fourcc"`

	// Flip mirrors frames horizontally, matching a selfie view.
	Flip bool `yaml:"flip" json:"flip"`
}

// Capture limits accepted by Validate.
const (
	MinWidth  = 160
	MinHeight = 120
	MaxWidth  = 4096
	MaxHeight = 2160
	MaxFPS    = 120
)

// DefaultConfig returns the recommended configuration: the first camera
// at 1080p with MJPG, which most USB webcams need to reach that size.
func DefaultConfig() Config {
	return Config{
		Device: "0",
		Width:  1920,
		Height: 1080,
		FPS:    0,
		FourCC: "MJPG",
		Flip:   false,
	}
}

// LegacyConfig returns a 640x480 configuration.
// Use this if higher resolution is too slow for the Hough transform.
func LegacyConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 640
	cfg.Height = 480
	return cfg
}

// DeviceIndex returns the camera index when Device is numeric.
func (c *Config) DeviceIndex() (int, bool) {
	id, err := strconv.Atoi(c.Device)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device == "" {
		errors = append(errors, "device must be a camera index or a video path")
	}
	if c.Width < MinWidth || c.Width > MaxWidth {
		errors = append(errors, fmt.Sprintf("width must be between %d and %d", MinWidth, MaxWidth))
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errors = append(errors, fmt.Sprintf("height must be between %d and %d", MinHeight, MaxHeight))
	}
	if c.FPS < 0 || c.FPS > MaxFPS {
		errors = append(errors, fmt.Sprintf("fps must be 0 (driver default) or up to %d", MaxFPS))
	}
	if c.FourCC != "" && len(c.FourCC) != 4 {
		errors = append(errors, "fourcc must be exactly 4 characters")
	}

	return errors
}
