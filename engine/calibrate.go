// ABOUTME: One-shot drift calibration from the first two chord transitions
// ABOUTME: Computes the global speed adjustment between model and audio clocks

package engine

import "chordgrid/timeline"

// chordTransitions returns the audio timestamps of entries where the mapping
// label changes. Consecutive identical chords are one segment; beat cells
// within a segment are not transitions.
func chordTransitions(mapping []timeline.MapEntry, limit int) []float64 {
	var times []float64

	for i := 1; i < len(mapping) && len(times) < limit; i++ {
		if mapping[i].Label != mapping[i-1].Label {
			times = append(times, mapping[i].Time)
		}
	}

	return times
}

// computeSpeedAdjustment derives the multiplicative correction between the
// chord model's internal clock and actual audio time from the first two
// chord transitions. Returns (0, false) when the mapping carries fewer than
// two transitions or the derived durations are not positive.
//
// The correction is advisory input for duration-based animation timing; the
// index pipeline keeps operating on the mapping's raw timestamps.
func computeSpeedAdjustment(mapping []timeline.MapEntry, firstBeat, bpm float64) (float64, bool) {
	if bpm <= 0 {
		return 0, false
	}

	transitions := chordTransitions(mapping, 2)
	if len(transitions) < 2 {
		return 0, false
	}

	// Chord-model timestamps are audio time relative to the first detected beat
	first := transitions[0] - firstBeat
	second := transitions[1] - firstBeat

	actual := second - first
	expected := 60 / bpm

	if actual <= 0 || expected <= 0 {
		return 0, false
	}

	return actual / expected, true
}
