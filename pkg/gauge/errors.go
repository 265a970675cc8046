package gauge

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common error conditions.
var (
	// ErrInvalidConfig is returned when a scale or reader configuration is rejected.
	ErrInvalidConfig = errors.New("gauge: invalid configuration")

	// ErrNoIntervals is returned when a scale has no labelled intervals.
	ErrNoIntervals = errors.New("gauge: scale has no intervals")
)

// ConfigError lists every problem found while validating a configuration.
type ConfigError struct {
	// Component names the configuration section, e.g. "scale".
	Component string

	// Problems holds one human readable entry per violation.
	Problems []string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("gauge [%s]: invalid configuration: %s", e.Component, strings.Join(e.Problems, "; "))
}

// Unwrap returns ErrInvalidConfig so callers can match with errors.Is.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// newConfigError returns nil when there are no problems.
func newConfigError(component string, problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return &ConfigError{Component: component, Problems: problems}
}
