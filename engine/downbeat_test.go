// ABOUTME: Tests for the downbeat tracker
// ABOUTME: Greatest downbeat <= t, -1 before the first measure

package engine

import "testing"

func TestLocateDownbeat(t *testing.T) {
	downbeats := []float64{0.5, 2.5, 4.5, 6.5}

	tests := []struct {
		name string
		t    float64
		want int
	}{
		{"before first", 0.1, -1},
		{"on first", 0.5, 0},
		{"mid measure", 3.0, 1},
		{"on boundary", 4.5, 2},
		{"past end sticks", 100, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := locateDownbeat(downbeats, tt.t); got != tt.want {
				t.Errorf("locateDownbeat(%v) = %d, want %d", tt.t, got, tt.want)
			}
		})
	}

	if got := locateDownbeat(nil, 1.0); got != -1 {
		t.Errorf("locateDownbeat(empty) = %d, want -1", got)
	}
}
