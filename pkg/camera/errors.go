package camera

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common error conditions.
var (
	// ErrOpen is returned when a capture device cannot be opened.
	ErrOpen = errors.New("camera: failed to open capture source")

	// ErrRead is returned when a frame cannot be read.
	ErrRead = errors.New("camera: frame read failed")

	// ErrClosed is returned when reading from a closed source.
	ErrClosed = errors.New("camera: source closed")
)

// ConfigError lists the validation problems of a capture configuration.
type ConfigError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("camera: invalid configuration: %s", strings.Join(e.Problems, "; "))
}
