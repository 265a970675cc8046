package gauge

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func reading(label string) Reading {
	if label == LabelUnknown {
		return Unknown
	}
	return Reading{Label: label, Known: true}
}

func TestStabilizer_LocksOnFirstTarget(t *testing.T) {
	seq := []string{LabelStormy, LabelSunny, LabelStormy, LabelNormal, LabelSunny, LabelStormy, LabelNormal}
	const k = 3 // index of the first Normal

	s := NewStabilizer(LabelNormal)
	for i, label := range seq {
		got := s.Observe(reading(label))
		if i < k {
			assert.Equal(t, label, got.Label, "frame %d should pass the live reading", i)
			assert.Equal(t, Tracking, s.State())
			continue
		}
		assert.Equal(t, LabelNormal, got.Label, "frame %d should report the locked reading", i)
		assert.Equal(t, Locked, s.State())
	}

	locked, ok := s.Locked()
	assert.True(t, ok)
	assert.Equal(t, reading(LabelNormal), locked)
}

func TestStabilizer_ReplayNeverUnlocks(t *testing.T) {
	seq := []string{LabelSunny, LabelNormal, LabelStormy}

	s := NewStabilizer(LabelNormal)
	for _, label := range seq {
		s.Observe(reading(label))
	}
	for _, label := range seq {
		got := s.Observe(reading(label))
		assert.Equal(t, LabelNormal, got.Label)
		assert.Equal(t, Locked, s.State())
	}
}

func TestStabilizer_NoTargetObserved(t *testing.T) {
	s := NewStabilizer(LabelNormal)
	for _, label := range []string{LabelStormy, LabelSunny, LabelUnknown} {
		assert.Equal(t, label, s.Observe(reading(label)).Label)
	}
	assert.Equal(t, Tracking, s.State())

	_, ok := s.Locked()
	assert.False(t, ok)
}

func TestStabilizer_EmptyTargetPassesThrough(t *testing.T) {
	s := NewStabilizer("")
	for _, label := range []string{LabelNormal, LabelSunny, LabelNormal} {
		assert.Equal(t, label, s.Observe(reading(label)).Label)
	}
	assert.Equal(t, Tracking, s.State())
}

func TestStabilizer_NeverLocksOnUnknown(t *testing.T) {
	s := NewStabilizer(LabelUnknown)
	s.Observe(Unknown)
	assert.Equal(t, Tracking, s.State())
}

func TestStabilizer_ConfigurableTarget(t *testing.T) {
	s := NewStabilizer(LabelSunny)
	assert.Equal(t, LabelSunny, s.Target())

	s.Observe(reading(LabelNormal))
	assert.Equal(t, Tracking, s.State())

	s.Observe(reading(LabelSunny))
	assert.Equal(t, LabelSunny, s.Observe(reading(LabelStormy)).Label)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "tracking", Tracking.String())
	assert.Equal(t, "locked", Locked.String())
	assert.Equal(t, "unknown", State(7).String())

	text, err := Locked.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "locked", string(text))
}

func TestState_UnmarshalText(t *testing.T) {
	var s State
	assert.NoError(t, s.UnmarshalText([]byte("locked")))
	assert.Equal(t, Locked, s)
	assert.NoError(t, s.UnmarshalText([]byte("tracking")))
	assert.Equal(t, Tracking, s)
	assert.Error(t, s.UnmarshalText([]byte("frozen")))
}
