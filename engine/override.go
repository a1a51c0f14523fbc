// ABOUTME: Click-override controller pinning the highlight after a seek gesture
// ABOUTME: Bridges the gap while the player reports stale post-seek time

package engine

import (
	"math"
	"time"

	"chordgrid/config"
)

// clickOverride is the short-lived state recorded when the user selects a
// cell directly. It pins the committed index to the clicked cell while the
// underlying player catches up with the requested seek.
type clickOverride struct {
	cell     int
	target   float64 // requested playback position
	issuedAt time.Time
}

// apply decides whether the override still forces the index at this tick.
//
// Inside the snap window the clicked cell is forced unconditionally, masking
// seek latency. Inside the extended window it is forced only while the
// player clearly hasn't caught up: a rewind was detected, or the raw time is
// still far from the seek target. Once either window closes or the player
// converges, the override is spent.
func (o *clickOverride) apply(t float64, now time.Time, rewind bool, cfg config.EngineConfig) (int, bool) {
	age := now.Sub(o.issuedAt).Seconds()

	if age <= cfg.SnapWindowSeconds {
		return o.cell, true
	}

	if age <= cfg.OverrideWindowSeconds {
		if rewind || math.Abs(t-o.target) > cfg.SeekToleranceSeconds {
			return o.cell, true
		}
	}

	return -1, false
}
