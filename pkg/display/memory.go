package display

import (
	"sync"

	"github.com/teslashibe/go-gauge/pkg/gauge"
	"gocv.io/x/gocv"
)

// MemorySink keeps the results it is shown. It backs tests and headless
// runs that only need the last reading.
type MemorySink struct {
	mu        sync.Mutex
	results   []gauge.Result
	polls     int
	quitAfter int
	closed    bool
}

// NewMemorySink creates a sink that never asks to quit.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// QuitAfter makes Poll request a quit on the n-th call (1-based).
func (m *MemorySink) QuitAfter(n int) *MemorySink {
	m.mu.Lock()
	m.quitAfter = n
	m.mu.Unlock()
	return m
}

// Show records res.
func (m *MemorySink) Show(_ gocv.Mat, res gauge.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, res)
	return nil
}

// Poll counts polls and reports a quit once the limit is reached.
func (m *MemorySink) Poll() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls++
	return m.quitAfter > 0 && m.polls >= m.quitAfter
}

// Close marks the sink closed.
func (m *MemorySink) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Results returns a copy of every result shown.
func (m *MemorySink) Results() []gauge.Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]gauge.Result(nil), m.results...)
}

// Closed reports whether Close was called.
func (m *MemorySink) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
