package gauge

import "fmt"

// State is the stabilizer's position in its two-state machine.
type State int

const (
	// Tracking reports every live reading as is.
	Tracking State = iota
	// Locked reports the latched reading for the rest of the session.
	Locked
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Tracking:
		return "tracking"
	case Locked:
		return "locked"
	default:
		return "unknown"
	}
}

// MarshalText lets State render as its name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "tracking":
		*s = Tracking
	case "locked":
		*s = Locked
	default:
		return fmt.Errorf("gauge: unknown state %q", text)
	}
	return nil
}

// Stabilizer is a one-shot latch. It passes readings through until the
// target label is first seen, then reports that reading forever.
//
// A Stabilizer is owned by a single goroutine and is not safe for
// concurrent use.
type Stabilizer struct {
	target string
	state  State
	locked Reading
}

// NewStabilizer creates a stabilizer that locks on target. An empty target
// never locks.
func NewStabilizer(target string) *Stabilizer {
	return &Stabilizer{target: target}
}

// Observe feeds one live reading and returns the reading to display.
func (s *Stabilizer) Observe(r Reading) Reading {
	if s.state == Locked {
		return s.locked
	}
	if s.target != "" && r.Known && r.Label == s.target {
		s.state = Locked
		s.locked = r
	}
	return r
}

// State returns the current state.
func (s *Stabilizer) State() State {
	return s.state
}

// Target returns the label the stabilizer locks on.
func (s *Stabilizer) Target() string {
	return s.target
}

// Locked returns the latched reading once the stabilizer has locked.
func (s *Stabilizer) Locked() (Reading, bool) {
	return s.locked, s.state == Locked
}
