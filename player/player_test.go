// ABOUTME: Tests for the playback transport
// ABOUTME: Verifies play/pause position tracking, clamping, and seek report latency

package player

import (
	"testing"
	"time"
)

// fakeClock lets tests advance transport time deterministically
type fakeClock struct {
	t time.Time
}

func (fc *fakeClock) Now() time.Time {
	return fc.t
}

func (fc *fakeClock) Advance(d time.Duration) {
	fc.t = fc.t.Add(d)
}

func newTestTransport(duration float64, latency time.Duration) (*Transport, *fakeClock) {
	fc := &fakeClock{t: time.Unix(1000, 0)}
	tr := NewTransport(duration, latency)
	tr.now = fc.Now

	return tr, fc
}

func TestTransportPlayPause(t *testing.T) {
	tr, fc := newTestTransport(100, 0)

	if tr.IsPlaying() {
		t.Error("New transport should be paused")
	}

	if tr.CurrentTime() != 0 {
		t.Errorf("Initial position = %v, want 0", tr.CurrentTime())
	}

	tr.Play()
	fc.Advance(2 * time.Second)

	if got := tr.CurrentTime(); got != 2.0 {
		t.Errorf("Position after 2s = %v, want 2.0", got)
	}

	tr.Pause()
	fc.Advance(5 * time.Second)

	if got := tr.CurrentTime(); got != 2.0 {
		t.Errorf("Position should hold at 2.0 while paused, got %v", got)
	}

	tr.Play()
	fc.Advance(time.Second)

	if got := tr.CurrentTime(); got != 3.0 {
		t.Errorf("Position after resume+1s = %v, want 3.0", got)
	}
}

func TestTransportImmediateSeek(t *testing.T) {
	tr, fc := newTestTransport(100, 0)

	tr.Play()
	fc.Advance(time.Second)
	tr.Seek(42)

	if got := tr.CurrentTime(); got != 42.0 {
		t.Errorf("Position after seek = %v, want 42.0", got)
	}
}

func TestTransportSeekReportLatency(t *testing.T) {
	tr, fc := newTestTransport(100, 150*time.Millisecond)

	tr.Play()
	fc.Advance(time.Second)
	tr.Seek(50)

	// Within the latency window the stale pre-seek position is reported
	fc.Advance(50 * time.Millisecond)

	if got := tr.CurrentTime(); got < 1.0 || got > 1.2 {
		t.Errorf("Stale position = %v, want ~1.05", got)
	}

	// Once the window elapses, the seek target takes over
	fc.Advance(200 * time.Millisecond)

	if got := tr.CurrentTime(); got != 50.0 {
		t.Errorf("Position after latency window = %v, want 50.0", got)
	}

	// Playback continues from the target
	fc.Advance(time.Second)

	if got := tr.CurrentTime(); got != 51.0 {
		t.Errorf("Position = %v, want 51.0", got)
	}
}

func TestTransportClamping(t *testing.T) {
	tr, fc := newTestTransport(10, 0)

	tr.Seek(-5)

	if got := tr.CurrentTime(); got != 0 {
		t.Errorf("Negative seek should clamp to 0, got %v", got)
	}

	tr.Seek(500)

	if got := tr.CurrentTime(); got != 10 {
		t.Errorf("Overlong seek should clamp to duration, got %v", got)
	}

	// Playing past the end stops the transport at duration
	tr.Seek(9)
	tr.Play()
	fc.Advance(30 * time.Second)

	if tr.IsPlaying() {
		t.Error("Transport should stop at end of song")
	}

	if got := tr.CurrentTime(); got != 10 {
		t.Errorf("Position at end = %v, want 10", got)
	}
}
