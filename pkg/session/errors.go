package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrAcquisition is returned when no frame can be obtained from the source.
	ErrAcquisition = errors.New("session: frame acquisition failed")

	// ErrGeometryChanged is returned when a frame's size differs from the first frame.
	ErrGeometryChanged = errors.New("session: frame geometry changed")

	// ErrClosed is returned when running a session that already finished.
	ErrClosed = errors.New("session: closed")
)

// AcquisitionError reports the frame at which acquisition failed.
// It matches both ErrAcquisition and the source's own error.
type AcquisitionError struct {
	Frame int   // zero-based index of the frame that could not be read
	Err   error // underlying cause
}

// Error implements the error interface.
func (e *AcquisitionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("session: frame %d: acquisition failed", e.Frame)
	}
	return fmt.Sprintf("session: frame %d: acquisition failed: %v", e.Frame, e.Err)
}

// Unwrap exposes ErrAcquisition and the cause to errors.Is and errors.As.
func (e *AcquisitionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrAcquisition}
	}
	return []error{ErrAcquisition, e.Err}
}
