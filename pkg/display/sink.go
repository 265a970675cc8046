// Package display provides the outputs of a reading session: an OpenCV
// window, a video recorder, and fan-out over several of them.
package display

import (
	"errors"

	"github.com/teslashibe/go-gauge/pkg/gauge"
	"gocv.io/x/gocv"
)

// Sink receives every frame of a session after processing. Show must not
// retain frame; it is reused for the next capture.
type Sink interface {
	// Show emits an annotated (or untouched) frame and its result.
	Show(frame gocv.Mat, res gauge.Result) error

	// Poll reports whether the operator asked to quit.
	Poll() bool

	// Close releases the sink.
	Close() error
}

// Discard is a Sink that drops everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Show(gocv.Mat, gauge.Result) error { return nil }
func (discard) Poll() bool                        { return false }
func (discard) Close() error                      { return nil }

// Multi fans out to several sinks.
type Multi []Sink

// NewMulti drops nil sinks and returns Discard when none remain.
func NewMulti(sinks ...Sink) Sink {
	var m Multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	switch len(m) {
	case 0:
		return Discard
	case 1:
		return m[0]
	}
	return m
}

// Show forwards to every sink, even after one fails.
func (m Multi) Show(frame gocv.Mat, res gauge.Result) error {
	var errs []error
	for _, s := range m {
		if err := s.Show(frame, res); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Poll polls every sink so each window keeps pumping events.
func (m Multi) Poll() bool {
	quit := false
	for _, s := range m {
		if s.Poll() {
			quit = true
		}
	}
	return quit
}

// Close closes every sink.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
