// ABOUTME: Playback transport exposing current time and playing state
// ABOUTME: Wall-clock driven with simulated post-seek report latency

// Package player provides the playback source the beat-sync engine polls.
// The engine only ever reads the source; seeks and play/pause come from the
// host UI.
package player

import (
	"sync"
	"time"
)

// Source is the read-only view of a playback transport. CurrentTime is
// monotonically increasing while playing, except across seeks.
type Source interface {
	CurrentTime() float64
	IsPlaying() bool
}

// Transport is a wall-clock playback position tracker. It does not decode
// audio; it models the position an external player would report, including
// the window after a seek during which players keep reporting the stale
// pre-seek position.
type Transport struct {
	mu sync.Mutex

	now func() time.Time // injectable clock for tests

	playing  bool
	pos      float64 // position at anchor
	anchor   time.Time
	duration float64

	seekLatency time.Duration
	seekTarget  float64
	seekIssued  time.Time
	seekPending bool
}

// NewTransport creates a stopped transport for a song of the given duration.
// seekLatency is how long the transport keeps reporting the pre-seek
// position after Seek is called; zero means seeks apply immediately.
func NewTransport(duration float64, seekLatency time.Duration) *Transport {
	return &Transport{
		now:         time.Now,
		duration:    duration,
		seekLatency: seekLatency,
	}
}

// Play starts or resumes playback.
func (t *Transport) Play() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.settleSeek()

	if t.playing {
		return
	}

	t.playing = true
	t.anchor = t.now()
}

// Pause stops playback, keeping the current position.
func (t *Transport) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.settleSeek()

	if !t.playing {
		return
	}

	t.pos = t.positionLocked()
	t.playing = false
}

// Seek requests a jump to the given position. The reported time keeps
// returning the pre-seek position until the report latency elapses.
func (t *Transport) Seek(target float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.settleSeek()

	target = t.clamp(target)

	if t.seekLatency <= 0 {
		t.pos = target
		t.anchor = t.now()
		return
	}

	t.seekTarget = target
	t.seekIssued = t.now()
	t.seekPending = true
}

// CurrentTime reports the playback position in seconds.
func (t *Transport) CurrentTime() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.settleSeek()

	return t.positionLocked()
}

// IsPlaying reports whether the transport is advancing.
func (t *Transport) IsPlaying() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.settleSeek()

	// Sticky stop at end of song
	if t.playing && t.duration > 0 && t.positionLocked() >= t.duration {
		t.pos = t.duration
		t.playing = false
	}

	return t.playing
}

// Duration returns the song length in seconds (0 when unknown).
func (t *Transport) Duration() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.duration
}

// settleSeek applies a pending seek once its report latency has elapsed.
// Callers must hold the mutex.
func (t *Transport) settleSeek() {
	if !t.seekPending {
		return
	}

	if t.now().Sub(t.seekIssued) < t.seekLatency {
		return
	}

	t.pos = t.seekTarget
	t.anchor = t.now()
	t.seekPending = false
}

// positionLocked computes the reported position. Callers must hold the mutex.
func (t *Transport) positionLocked() float64 {
	pos := t.pos
	if t.playing {
		pos += t.now().Sub(t.anchor).Seconds()
	}

	return t.clamp(pos)
}

func (t *Transport) clamp(pos float64) float64 {
	if pos < 0 {
		return 0
	}

	if t.duration > 0 && pos > t.duration {
		return t.duration
	}

	return pos
}
