// ABOUTME: Jitter stabilizer sitting between candidate and committed index
// ABOUTME: Boundary hysteresis, stability counter, monotonic constraint, off-dwell

package engine

import "time"

// stabilizer holds the bookkeeping that turns a noisy per-tick candidate
// index into a visually stable committed index. Raw locator output can
// oscillate by one cell near boundaries from polling and float noise.
type stabilizer struct {
	lastStable   int
	pending      int // candidate waiting to become stable
	pendingCount int
	lastEmitted  int
	lastEmitAt   time.Time // time of the last emitted-index change
	everEmitted  bool
}

func newStabilizer() stabilizer {
	return stabilizer{
		lastStable:  -1,
		pending:     -1,
		lastEmitted: -1,
	}
}

// commit runs the stability counter, monotonic forward constraint and
// off-dwell rules, then records and returns the emitted index.
//
// forced candidates (click overrides) become stable immediately and are
// exempt from the forward constraint; a detected rewind suspends the
// forward constraint for the tick.
func (st *stabilizer) commit(candidate int, now time.Time, rewind, forced bool, threshold int, dwell float64) int {
	switch {
	case forced:
		st.lastStable = candidate
		st.pending = -1
		st.pendingCount = 0

	case candidate == st.lastStable:
		st.pending = -1
		st.pendingCount = 0

	default:
		if candidate == st.pending {
			st.pendingCount++
		} else {
			st.pending = candidate
			st.pendingCount = 1
		}

		if st.pendingCount >= threshold {
			st.lastStable = candidate
			st.pending = -1
			st.pendingCount = 0
		}
	}

	out := st.lastStable

	// During forward playback the emitted index never decreases
	if !forced && !rewind && out >= 0 && st.lastEmitted >= 0 && out < st.lastEmitted {
		out = st.lastEmitted
	}

	// Hold the previous highlight briefly before going dark, so single-frame
	// gaps between adjacent cells don't flash
	if out == -1 && st.lastEmitted >= 0 && st.everEmitted &&
		now.Sub(st.lastEmitAt).Seconds() < dwell {
		out = st.lastEmitted
	}

	if out != st.lastEmitted {
		st.lastEmitted = out
		st.lastEmitAt = now
		st.everEmitted = true
	}

	return out
}
