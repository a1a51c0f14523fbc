// ABOUTME: Tests for the jitter stabilizer commit rules
// ABOUTME: Stability counter, monotonic constraint, off-dwell, forced commits

package engine

import (
	"testing"
	"time"
)

const (
	testThreshold = 2
	testDwell     = 0.08
)

func TestStabilityCounter(t *testing.T) {
	st := newStabilizer()
	now := time.Unix(100, 0)
	step := 55 * time.Millisecond

	// First sighting of a candidate is not enough
	if got := st.commit(3, now, false, false, testThreshold, testDwell); got != -1 {
		t.Errorf("First tick committed %d, want -1", got)
	}

	// Second consecutive sighting is accepted
	now = now.Add(step)
	if got := st.commit(3, now, false, false, testThreshold, testDwell); got != 3 {
		t.Errorf("Second tick committed %d, want 3", got)
	}

	// An alternating candidate never accumulates enough consecutive ticks
	for i := 0; i < 6; i++ {
		now = now.Add(step)

		candidate := 3
		if i%2 == 0 {
			candidate = 4
		}

		if got := st.commit(candidate, now, false, false, testThreshold, testDwell); got != 3 {
			t.Fatalf("Oscillating tick %d committed %d, want stable 3", i, got)
		}
	}

	// A sustained new candidate switches after the threshold
	now = now.Add(step)
	st.commit(4, now, false, false, testThreshold, testDwell)
	now = now.Add(step)

	if got := st.commit(4, now, false, false, testThreshold, testDwell); got != 4 {
		t.Errorf("Sustained candidate committed %d, want 4", got)
	}
}

func TestMonotonicForwardConstraint(t *testing.T) {
	st := newStabilizer()
	now := time.Unix(100, 0)
	step := 55 * time.Millisecond

	commit := func(candidate int, rewind bool) int {
		now = now.Add(step)
		return st.commit(candidate, now, rewind, false, 1, testDwell)
	}

	if got := commit(5, false); got != 5 {
		t.Fatalf("committed %d, want 5", got)
	}

	// A lower candidate during forward playback must not lower the emission
	if got := commit(3, false); got != 5 {
		t.Errorf("Forward playback emitted %d, want 5 (no decrease)", got)
	}

	// A detected rewind suspends the constraint
	if got := commit(3, true); got != 3 {
		t.Errorf("Rewind emitted %d, want 3", got)
	}
}

func TestOffDwell(t *testing.T) {
	st := newStabilizer()
	now := time.Unix(100, 0)

	st.commit(2, now, false, false, 1, testDwell)

	// -1 within the dwell keeps the previous highlight
	if got := st.commit(-1, now.Add(30*time.Millisecond), false, false, 1, testDwell); got != 2 {
		t.Errorf("Within dwell emitted %d, want 2", got)
	}

	// After the dwell the blackout commits
	if got := st.commit(-1, now.Add(200*time.Millisecond), false, false, 1, testDwell); got != -1 {
		t.Errorf("Past dwell emitted %d, want -1", got)
	}
}

func TestForcedCommitBypassesRules(t *testing.T) {
	st := newStabilizer()
	now := time.Unix(100, 0)
	step := 55 * time.Millisecond

	st.commit(8, now, false, false, 1, testDwell)

	// Forced candidate commits immediately, even moving backwards, even on
	// its first tick
	now = now.Add(step)
	if got := st.commit(2, now, false, true, testThreshold, testDwell); got != 2 {
		t.Errorf("Forced commit emitted %d, want 2", got)
	}
}

func TestNothingEmittedBeforeFirstCandidate(t *testing.T) {
	st := newStabilizer()
	now := time.Unix(100, 0)

	// -1 with no prior emission must not trip the dwell rule
	if got := st.commit(-1, now, false, false, testThreshold, testDwell); got != -1 {
		t.Errorf("committed %d, want -1", got)
	}
}
