package web

import "fmt"

// Config holds dashboard settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string `yaml:"addr" json:"addr"`

	// JPEGQuality is the encoder quality for streamed frames (1-100).
	JPEGQuality int `yaml:"jpeg_quality" json:"jpeg_quality"`

	// MaxHashDistance is the largest perceptual hash distance at which a
	// frame counts as unchanged and is not pushed to frame clients. A
	// negative value disables deduplication.
	MaxHashDistance int `yaml:"max_hash_distance" json:"max_hash_distance"`
}

// DefaultConfig returns the default dashboard configuration.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		JPEGQuality:     80,
		MaxHashDistance: 2,
	}
}

// Validate checks if the config values are within valid ranges.
func (c *Config) Validate() []string {
	var errors []string

	if c.Addr == "" {
		errors = append(errors, "addr is required")
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		errors = append(errors, fmt.Sprintf("jpeg_quality must be between 1 and 100, got %d", c.JPEGQuality))
	}
	if c.MaxHashDistance > 64 {
		errors = append(errors, "max_hash_distance must be at most 64")
	}

	return errors
}
