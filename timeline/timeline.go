// ABOUTME: Defines the immutable chord-grid timeline produced by upstream analysis
// ABOUTME: Cells, shift/padding structure, audio mapping table and derived values

// Package timeline holds the precomputed music-analysis data the viewer
// follows: the chord grid cells, the optional audio-time-to-cell mapping,
// beat and downbeat lists, and tempo. A Timeline is read-only for the
// duration of a playback session.
package timeline

import (
	"errors"
	"fmt"
	"math"
)

// Cell is one entry in the visual grid. Label may be empty for structural
// cells; a labeled "N.C." cell is valid musical content. Time is only
// meaningful when HasTime is set.
type Cell struct {
	Label   string
	Time    float64
	HasTime bool
}

// MapEntry is one row of the audio mapping table: a direct correspondence
// between raw audio time and a visual cell index. Entries are ordered by
// non-decreasing Time.
type MapEntry struct {
	Time  float64
	Cell  int
	Label string
}

// Timeline is the full analysis result for one song.
//
// The first ShiftCount cells are structural alignment padding and are never
// highlighted. The PaddingCount cells after them are pre-beat lead-in content
// and may be highlighted before the first detected beat.
type Timeline struct {
	Title     string
	Artist    string
	AudioPath string
	Duration  float64

	Cells        []Cell
	ShiftCount   int
	PaddingCount int

	Mapping   []MapEntry // optional; empty when upstream synchronization failed
	Beats     []float64  // raw detected beat times
	Downbeats []float64  // strictly increasing measure boundaries
	BPM       float64
}

// ErrNoCells is returned when an analysis document carries an empty grid.
var ErrNoCells = errors.New("timeline has no cells")

// Validate checks the structural invariants of the timeline. The engine
// assumes these hold for the whole session.
func (tl *Timeline) Validate() error {
	if len(tl.Cells) == 0 {
		return ErrNoCells
	}

	if tl.ShiftCount < 0 {
		return fmt.Errorf("negative shift count %d", tl.ShiftCount)
	}

	if tl.PaddingCount < 0 {
		return fmt.Errorf("negative padding count %d", tl.PaddingCount)
	}

	if tl.ShiftCount+tl.PaddingCount > len(tl.Cells) {
		return fmt.Errorf("shift+padding (%d+%d) exceeds %d cells",
			tl.ShiftCount, tl.PaddingCount, len(tl.Cells))
	}

	for i := 1; i < len(tl.Mapping); i++ {
		if tl.Mapping[i].Time < tl.Mapping[i-1].Time {
			return fmt.Errorf("mapping entry %d goes backwards in time", i)
		}
	}

	for i := range tl.Mapping {
		if tl.Mapping[i].Cell < 0 || tl.Mapping[i].Cell >= len(tl.Cells) {
			return fmt.Errorf("mapping entry %d points at cell %d (have %d cells)",
				i, tl.Mapping[i].Cell, len(tl.Cells))
		}
	}

	return nil
}

// FirstBeatTime returns the first positive detected beat time, or 0 when the
// beat list is empty or degenerate. The beat list is authoritative here; the
// timestamp of the first post-shift cell may be an estimate.
func (tl *Timeline) FirstBeatTime() float64 {
	for _, b := range tl.Beats {
		if b > 0 && !math.IsNaN(b) && !math.IsInf(b, 0) {
			return b
		}
	}

	return 0
}

// EffectiveBPM returns the detected tempo, substituting fallback when the
// detected value is missing, non-finite, non-positive or absurdly high.
// A bad tempo must never reach duration math (division by zero, runaway
// virtual-beat indices).
func (tl *Timeline) EffectiveBPM(fallback, maxReasonable float64) float64 {
	bpm := tl.BPM
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm <= 0 || bpm > maxReasonable {
		return fallback
	}

	return bpm
}

// IsShiftCell reports whether index i is a leading structural alignment cell.
func (tl *Timeline) IsShiftCell(i int) bool {
	return i >= 0 && i < tl.ShiftCount
}

// IsPaddingCell reports whether index i is a pre-beat lead-in cell.
func (tl *Timeline) IsPaddingCell(i int) bool {
	return i >= tl.ShiftCount && i < tl.ShiftCount+tl.PaddingCount
}

// CellTime returns the audio time that best corresponds to cell i, for
// seeking playback when the user clicks a cell. Preference order: the
// cell's own timestamp, the first mapping entry that targets the cell,
// then a tempo estimate from the first beat. Returns false for shift
// cells and out-of-range indices, which have no audio position.
func (tl *Timeline) CellTime(i int, fallbackBPM, maxReasonable float64) (float64, bool) {
	if i < 0 || i >= len(tl.Cells) || tl.IsShiftCell(i) {
		return 0, false
	}

	if c := tl.Cells[i]; c.HasTime && !math.IsNaN(c.Time) && !math.IsInf(c.Time, 0) {
		return c.Time, true
	}

	for _, e := range tl.Mapping {
		if e.Cell == i {
			return e.Time, true
		}
	}

	bpm := tl.EffectiveBPM(fallbackBPM, maxReasonable)
	t := tl.FirstBeatTime() + float64(i-tl.ShiftCount)*60.0/bpm
	if t < 0 {
		t = 0
	}

	return t, true
}

// TimedCell pairs a cell timestamp with its visual index, for the fallback
// binary-search strategy over cells that carry timestamps.
type TimedCell struct {
	Time float64
	Cell int
}

// TimedCells extracts the ordered (time, index) pairs of cells that carry a
// timestamp. Built once per session by the engine.
func (tl *Timeline) TimedCells() []TimedCell {
	timed := make([]TimedCell, 0, len(tl.Cells))

	for i, c := range tl.Cells {
		if c.HasTime && !math.IsNaN(c.Time) {
			timed = append(timed, TimedCell{Time: c.Time, Cell: i})
		}
	}

	return timed
}
