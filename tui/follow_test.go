// ABOUTME: Tests for the throttled auto-scroll follower
// ABOUTME: Verifies comfort margin, throttling, and offset clamping

package tui

import (
	"testing"
	"time"
)

func TestFollowerCentersTarget(t *testing.T) {
	f := NewFollower(200*time.Millisecond, 3)
	now := time.Now()

	// Viewport of 10 rows at the top, target far below
	offset, ok := f.Offset(0, 10, 30, 50, now)
	if !ok {
		t.Fatal("Expected a scroll for an off-screen target")
	}

	if offset != 25 {
		t.Errorf("Offset = %d, want 25 (target centered)", offset)
	}
}

func TestFollowerComfortMargin(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name          string
		currentOffset int
		targetRow     int
		wantScroll    bool
	}{
		{"at center", 10, 15, false},
		{"just inside margin above", 10, 12, false},
		{"just inside margin below", 10, 18, false},
		{"outside margin", 10, 19, true},
		{"far above viewport", 10, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFollower(200*time.Millisecond, 3)

			_, ok := f.Offset(tt.currentOffset, 10, tt.targetRow, 50, now)
			if ok != tt.wantScroll {
				t.Errorf("Offset scroll = %v, want %v", ok, tt.wantScroll)
			}
		})
	}
}

func TestFollowerWithinMarginButOffScreen(t *testing.T) {
	// Short viewport: a row within margin of the center can still be
	// scrolled past the bottom edge. It must scroll.
	f := NewFollower(0, 3)

	offset, ok := f.Offset(10, 4, 15, 50, time.Now())
	if !ok {
		t.Fatal("Expected a scroll for a row off the bottom edge")
	}

	if offset != 13 {
		t.Errorf("Offset = %d, want 13", offset)
	}
}

func TestFollowerThrottle(t *testing.T) {
	f := NewFollower(200*time.Millisecond, 1)
	now := time.Now()

	if _, ok := f.Offset(0, 10, 30, 50, now); !ok {
		t.Fatal("First scroll should not be throttled")
	}

	// Immediately after, another far-away target must be suppressed
	if _, ok := f.Offset(25, 10, 45, 50, now.Add(50*time.Millisecond)); ok {
		t.Error("Scroll within the throttle window should be suppressed")
	}

	// After the throttle elapses it scrolls again
	if _, ok := f.Offset(25, 10, 45, 50, now.Add(250*time.Millisecond)); !ok {
		t.Error("Scroll after the throttle window should go through")
	}
}

func TestFollowerClampsOffset(t *testing.T) {
	tests := []struct {
		name       string
		target     int
		totalRows  int
		wantOffset int
	}{
		{"near top clamps to zero", 1, 50, 0},
		{"near bottom clamps to max", 49, 50, 40},
		{"fewer rows than viewport", 3, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFollower(0, 0)

			offset, ok := f.Offset(20, 10, tt.target, tt.totalRows, time.Now())
			if !ok {
				t.Fatal("Expected a scroll")
			}

			if offset != tt.wantOffset {
				t.Errorf("Offset = %d, want %d", offset, tt.wantOffset)
			}
		})
	}
}

func TestFollowerNoScrollCases(t *testing.T) {
	f := NewFollower(0, 0)
	now := time.Now()

	if _, ok := f.Offset(0, 0, 5, 50, now); ok {
		t.Error("Zero-height viewport should never scroll")
	}

	if _, ok := f.Offset(0, 10, -1, 50, now); ok {
		t.Error("Negative target row should never scroll")
	}

	if _, ok := f.Offset(0, 10, 5, 0, now); ok {
		t.Error("Empty grid should never scroll")
	}

	// Centering would land on the current offset
	if _, ok := f.Offset(0, 10, 9, 10, now); ok {
		t.Error("No-op scroll should be reported as no scroll")
	}
}

func TestGridRowMath(t *testing.T) {
	tests := []struct {
		name string
		cell int
		want int
	}{
		{"first cell", 0, 0},
		{"last cell of first row", 3, 0},
		{"first cell of second row", 4, 1},
		{"deep cell", 42, 10},
		{"negative", -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gridRow(tt.cell, 4); got != tt.want {
				t.Errorf("gridRow(%d, 4) = %d, want %d", tt.cell, got, tt.want)
			}
		})
	}

	if got := gridRows(6, 4); got != 2 {
		t.Errorf("gridRows(6, 4) = %d, want 2", got)
	}

	if got := gridRows(8, 4); got != 2 {
		t.Errorf("gridRows(8, 4) = %d, want 2", got)
	}

	if got := gridRows(0, 4); got != 0 {
		t.Errorf("gridRows(0, 4) = %d, want 0", got)
	}
}
