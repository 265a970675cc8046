package camera

import (
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"
)

// MockSource is a scripted Source for testing. It returns its frames in
// order and then fails every read with the configured error.
type MockSource struct {
	mu     sync.Mutex
	frames []gocv.Mat
	next   int
	err    error
	opened bool
	closed bool

	// Stats
	reads  atomic.Int64
	closes atomic.Int64
}

// MockSourceOption configures a MockSource.
type MockSourceOption func(*MockSource)

// WithReadError sets the error returned once the frames run out.
func WithReadError(err error) MockSourceOption {
	return func(m *MockSource) {
		m.err = err
	}
}

// WithClosedDevice makes the mock report a device that failed to open.
func WithClosedDevice() MockSourceOption {
	return func(m *MockSource) {
		m.opened = false
	}
}

// NewMockSource creates a mock that serves copies of frames. The mock
// takes ownership of frames and closes them on Close.
func NewMockSource(frames []gocv.Mat, opts ...MockSourceOption) *MockSource {
	m := &MockSource{
		frames: frames,
		err:    ErrRead,
		opened: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Read copies the next scripted frame into dst.
func (m *MockSource) Read(dst *gocv.Mat) error {
	m.reads.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if m.next >= len(m.frames) {
		return m.err
	}
	m.frames[m.next].CopyTo(dst)
	m.next++
	return nil
}

// IsOpened reports whether the mock is open.
func (m *MockSource) IsOpened() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opened && !m.closed
}

// Close releases the scripted frames.
func (m *MockSource) Close() error {
	m.closes.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	for i := range m.frames {
		m.frames[i].Close()
	}
	return nil
}

// Reads returns how many times Read was called.
func (m *MockSource) Reads() int64 {
	return m.reads.Load()
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool {
	return m.closes.Load() > 0
}
