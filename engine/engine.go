// ABOUTME: Per-session beat-sync engine state and the per-tick pipeline
// ABOUTME: phase -> locate -> override -> stabilize -> commit, under one mutex

// Package engine converts a continuous playback time into a single discrete
// "currently active" grid-cell index on every scheduler tick, resisting
// visual jitter, honoring seek gestures, and compensating for systematic
// drift between the chord model and the audio clock.
package engine

import (
	"math"
	"sort"
	"sync"
	"time"

	"chordgrid/config"
	"chordgrid/timeline"
)

// Snapshot is the atomic per-tick notification delivered to observers.
type Snapshot struct {
	Index       int // committed cell index, -1 = nothing highlighted
	Downbeat    int // committed downbeat index, -1 = before first measure
	Phase       Phase
	Strategy    Strategy
	Time        float64 // raw playback time this snapshot was computed from
	SpeedAdjust float64 // drift correction factor, meaningful when Calibrated
	Calibrated  bool
}

// Session owns all mutable engine state for one playback session. It is
// mutated from exactly two entry points: the scheduler's Tick and the UI's
// Click; both serialize on the session mutex.
type Session struct {
	mu     sync.Mutex
	cfg    *config.SharedConfig
	debugf func(string, ...interface{})
	now    func() time.Time

	tl        *timeline.Timeline
	timed     []timeline.TimedCell
	firstBeat float64

	st        stabilizer
	lastPhase Phase
	prevTime  float64
	hasPrev   bool

	override *clickOverride

	speedAdjust      float64
	calibrated       bool
	calibrationTried bool

	lastStrategy      Strategy
	committed         int
	committedDownbeat int
}

// NewSession creates a session for the given timeline. debugf may be nil.
func NewSession(cfg *config.SharedConfig, tl *timeline.Timeline, debugf func(string, ...interface{})) *Session {
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	s := &Session{
		cfg:    cfg,
		debugf: debugf,
		now:    time.Now,
	}
	s.resetLocked(tl)

	return s
}

// Reset atomically swaps in a new timeline and clears every piece of session
// state before the next tick. Used when a new song/analysis is loaded.
func (s *Session) Reset(tl *timeline.Timeline) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resetLocked(tl)
}

func (s *Session) resetLocked(tl *timeline.Timeline) {
	if tl == nil {
		tl = &timeline.Timeline{}
	}

	s.tl = tl
	s.timed = tl.TimedCells()
	s.firstBeat = tl.FirstBeatTime()

	s.st = newStabilizer()
	s.lastPhase = PhasePreBeat
	s.prevTime = 0
	s.hasPrev = false
	s.override = nil
	s.speedAdjust = 0
	s.calibrated = false
	s.calibrationTried = false
	s.lastStrategy = StrategyNone
	s.committed = -1
	s.committedDownbeat = -1
}

// Click records a user cell-selection gesture. Called from the UI event
// handler, not from a tick.
func (s *Session) Click(cell int, target float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.override = &clickOverride{cell: cell, target: target, issuedAt: s.now()}
	s.debugf("[ENGINE] click override: cell %d target %.3fs", cell, target)
}

// Committed returns the last committed cell and downbeat indices.
func (s *Session) Committed() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.committed, s.committedDownbeat
}

// SpeedAdjustment returns the drift correction factor and whether calibration
// has run for this session.
func (s *Session) SpeedAdjustment() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.speedAdjust, s.calibrated
}

// Timeline returns the timeline this session follows.
func (s *Session) Timeline() *timeline.Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.tl
}

// Tick runs the strict pipeline for playback time t and returns the atomic
// snapshot for this tick. now is the wall time of the tick.
func (s *Session) Tick(t float64, now time.Time) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.cfg.Get()

	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		// Degenerate playback time: commit "nothing highlighted" rather than
		// propagate an invalid index downstream
		s.debugf("[ENGINE] ignoring invalid playback time %v", t)
		s.committed = -1
		s.committedDownbeat = -1
		s.lastStrategy = StrategyNone

		return s.snapshotLocked(t)
	}

	rewind := s.hasPrev && t < s.prevTime-cfg.RewindEpsilonSeconds

	phase := resolvePhase(t, s.firstBeat, cfg.SwitchBufferSeconds, s.lastPhase)

	candidate, strategy := s.locate(t, phase, cfg)

	if phase == PhaseModel && !s.calibrated && !s.calibrationTried {
		s.calibrationTried = true

		bpm := s.tl.EffectiveBPM(cfg.DefaultBPM, cfg.MaxReasonableBPM)
		if adj, ok := computeSpeedAdjustment(s.tl.Mapping, s.firstBeat, bpm); ok {
			s.speedAdjust = adj
			s.calibrated = true
			s.debugf("[ENGINE] drift calibration: speed adjustment %.4f", adj)
		}
	}

	forced := false

	if s.override != nil {
		if cell, active := s.override.apply(t, now, rewind, cfg); active {
			candidate = cell
			forced = true
		} else {
			s.debugf("[ENGINE] click override released at t=%.3fs", t)
			s.override = nil
		}
	}

	s.committed = s.stabilize(candidate, t, now, rewind, forced, phase, cfg)
	s.committedDownbeat = locateDownbeat(s.tl.Downbeats, t)

	s.lastPhase = phase
	s.lastStrategy = strategy
	s.prevTime = t
	s.hasPrev = true

	return s.snapshotLocked(t)
}

func (s *Session) snapshotLocked(t float64) Snapshot {
	return Snapshot{
		Index:       s.committed,
		Downbeat:    s.committedDownbeat,
		Phase:       s.lastPhase,
		Strategy:    s.lastStrategy,
		Time:        t,
		SpeedAdjust: s.speedAdjust,
		Calibrated:  s.calibrated,
	}
}

// locate dispatches to the lookup strategy for the current phase, in
// priority order: mapping table, timed-cell search, virtual beats.
func (s *Session) locate(t float64, phase Phase, cfg config.EngineConfig) (int, Strategy) {
	if len(s.tl.Cells) == 0 {
		return -1, StrategyNone
	}

	if len(s.tl.Mapping) > 0 {
		lookup := t
		if s.override != nil {
			// Known mapping-table latency; unrelated to drift calibration
			lookup += cfg.MappingLatencySeconds
		}

		if idx := lookupMapping(s.tl.Mapping, lookup); idx >= 0 {
			return idx, StrategyMapping
		}
		// t precedes the first mapping entry: fall through
	}

	if idx := lookupTimed(s.timed, t); idx >= 0 {
		return idx, StrategyTimestamps
	}

	if phase == PhasePreBeat {
		bpm := s.tl.EffectiveBPM(cfg.DefaultBPM, cfg.MaxReasonableBPM)
		if idx := virtualBeat(s.tl, t, bpm); idx >= 0 {
			return idx, StrategyVirtual
		}
	}

	return -1, StrategyNone
}

// stabilize applies cell-class suppression and boundary hysteresis, then
// commits through the stability counter / monotonic / off-dwell rules.
func (s *Session) stabilize(candidate int, t float64, now time.Time, rewind, forced bool, phase Phase, cfg config.EngineConfig) int {
	candidate = s.suppress(candidate, phase)

	if !forced && !rewind && candidate != s.st.lastStable &&
		!s.clearsBoundary(candidate, t, cfg.HysteresisTolerance) {
		candidate = s.st.lastStable
	}

	return s.st.commit(candidate, now, rewind, forced, cfg.StabilityThreshold, cfg.OffDwellSeconds)
}

// suppress forces disallowed cell classes to -1. Shift cells are never
// highlightable; unlabeled cells are only valid as pre-beat padding. A
// labeled "no chord" cell is real musical content and passes through.
func (s *Session) suppress(idx int, phase Phase) int {
	if idx < 0 || idx >= len(s.tl.Cells) {
		return -1
	}

	if s.tl.IsShiftCell(idx) {
		return -1
	}

	if s.tl.Cells[idx].Label == "" && !(phase == PhasePreBeat && s.tl.IsPaddingCell(idx)) {
		return -1
	}

	return idx
}

// clearsBoundary reports whether t has cleared the switching point between
// the stable cell and the next timed cell by the hysteresis tolerance. The
// switching point is the midpoint of the two timestamps; times inside the
// tolerance band keep the previous stable index.
func (s *Session) clearsBoundary(candidate int, t, tolerance float64) bool {
	stable := s.st.lastStable
	if stable < 0 || candidate <= stable {
		return true
	}

	stableTime, ok := s.cellStart(stable)
	if !ok {
		return true
	}

	nextTime, ok := s.nextTimeAfter(stable)
	if !ok {
		return true
	}

	mid := (stableTime + nextTime) / 2

	return t > mid+tolerance
}

// cellStart returns the timestamp of cell idx, when it has one.
func (s *Session) cellStart(idx int) (float64, bool) {
	i := sort.Search(len(s.timed), func(i int) bool { return s.timed[i].Cell >= idx })
	if i < len(s.timed) && s.timed[i].Cell == idx {
		return s.timed[i].Time, true
	}

	return 0, false
}

// nextTimeAfter returns the timestamp of the first timed cell after idx.
func (s *Session) nextTimeAfter(idx int) (float64, bool) {
	i := sort.Search(len(s.timed), func(i int) bool { return s.timed[i].Cell > idx })
	if i < len(s.timed) {
		return s.timed[i].Time, true
	}

	return 0, false
}
