// ABOUTME: Tests for the click-override decision windows
// ABOUTME: Snap window, extended window, convergence and expiry

package engine

import (
	"testing"
	"time"

	"chordgrid/config"
)

func TestOverrideWindows(t *testing.T) {
	cfg := config.DefaultConfig() // snap 200ms, extended 800ms, tolerance 250ms
	issued := time.Unix(100, 0)
	o := &clickOverride{cell: 5, target: 10.0, issuedAt: issued}

	tests := []struct {
		name       string
		age        time.Duration
		t          float64
		rewind     bool
		wantCell   int
		wantActive bool
	}{
		{"snap window forces unconditionally", 100 * time.Millisecond, 3.0, false, 5, true},
		{"snap window even when converged", 150 * time.Millisecond, 10.0, false, 5, true},
		{"extended window holds while player lags", 400 * time.Millisecond, 3.0, false, 5, true},
		{"extended window holds on rewind", 400 * time.Millisecond, 10.1, true, 5, true},
		{"extended window releases on convergence", 400 * time.Millisecond, 10.1, false, -1, false},
		{"expired after extended window", 900 * time.Millisecond, 3.0, false, -1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell, active := o.apply(tt.t, issued.Add(tt.age), tt.rewind, cfg)
			if active != tt.wantActive {
				t.Errorf("active = %v, want %v", active, tt.wantActive)
			}

			if active && cell != tt.wantCell {
				t.Errorf("cell = %d, want %d", cell, tt.wantCell)
			}
		})
	}
}

func TestOverrideToleranceBoundary(t *testing.T) {
	cfg := config.DefaultConfig()
	issued := time.Unix(100, 0)
	o := &clickOverride{cell: 2, target: 5.0, issuedAt: issued}

	// Just inside tolerance: converged, released
	if _, active := o.apply(5.2, issued.Add(300*time.Millisecond), false, cfg); active {
		t.Error("Expected release when raw time is within seek tolerance")
	}

	// Just outside tolerance: still forcing
	if cell, active := o.apply(5.3, issued.Add(300*time.Millisecond), false, cfg); !active || cell != 2 {
		t.Errorf("Expected override to hold outside tolerance, got cell=%d active=%v", cell, active)
	}
}
