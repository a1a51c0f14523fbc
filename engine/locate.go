// ABOUTME: Beat locator strategies and pre-beat/model phase resolution
// ABOUTME: Pure time-to-cell-index lookups over the analysis timeline

package engine

import (
	"sort"

	"chordgrid/timeline"
)

// Phase is the temporal regime relative to the first detected beat.
type Phase int

// The two phases: before the first detected beat only padding, shift and
// virtual-beat logic applies; after it the mapping/timestamp strategies do.
const (
	PhasePreBeat Phase = iota
	PhaseModel
)

func (p Phase) String() string {
	if p == PhasePreBeat {
		return "pre-beat"
	}

	return "model"
}

// Strategy identifies which lookup produced a candidate index.
type Strategy int

// Lookup strategies in priority order. Mapping is the fastest and most
// accurate; timestamps is the fallback search; virtual estimates beats from
// tempo alone during the pre-beat lead-in.
const (
	StrategyNone Strategy = iota
	StrategyMapping
	StrategyTimestamps
	StrategyVirtual
)

func (s Strategy) String() string {
	switch s {
	case StrategyMapping:
		return "mapping"
	case StrategyTimestamps:
		return "timestamps"
	case StrategyVirtual:
		return "virtual"
	default:
		return "none"
	}
}

// resolvePhase picks the phase for time t. Inside the buffer zone around the
// first beat the previous phase is retained so the boundary doesn't flap.
// Without any detected beats everything is the model phase.
func resolvePhase(t, firstBeat, buffer float64, prev Phase) Phase {
	if firstBeat <= 0 {
		return PhaseModel
	}

	switch {
	case t < firstBeat-buffer:
		return PhasePreBeat
	case t > firstBeat+buffer:
		return PhaseModel
	default:
		return prev
	}
}

// lookupMapping finds the visual index of the last mapping entry whose
// timestamp is <= t. Returns -1 when t precedes the first entry; sticks to
// the final entry when t runs past the end of the table.
func lookupMapping(m []timeline.MapEntry, t float64) int {
	if len(m) == 0 || t < m[0].Time {
		return -1
	}

	i := sort.Search(len(m), func(i int) bool { return m[i].Time > t }) - 1

	return m[i].Cell
}

// lookupTimed finds the index of the cell with the greatest timestamp <= t,
// searching only cells that carry timestamps. Returns -1 when t precedes
// the first timed cell; sticky at the end like the mapping lookup.
func lookupTimed(timed []timeline.TimedCell, t float64) int {
	if len(timed) == 0 || t < timed[0].Time {
		return -1
	}

	i := sort.Search(len(timed), func(i int) bool { return timed[i].Time > t }) - 1

	return timed[i].Cell
}

// virtualBeat estimates the active cell from tempo alone, for the pre-beat
// lead-in when no timed cells cover t. Only indices at or beyond the shift
// cells are produced, and unlabeled cells outside the padding region are
// rejected.
func virtualBeat(tl *timeline.Timeline, t, bpm float64) int {
	if len(tl.Cells) == 0 || bpm <= 0 || t < 0 {
		return -1
	}

	beatDur := 60 / bpm

	idx := tl.ShiftCount + int(t/beatDur)
	if idx >= len(tl.Cells) {
		idx = len(tl.Cells) - 1
	}

	if idx < tl.ShiftCount {
		return -1
	}

	if tl.Cells[idx].Label == "" && !tl.IsPaddingCell(idx) {
		return -1
	}

	return idx
}
