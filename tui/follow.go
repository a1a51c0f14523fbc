// ABOUTME: Throttled auto-scroll follower for the active grid row
// ABOUTME: Centers the highlighted row unless it is already comfortably in view

package tui

import "time"

// Follower decides when the grid viewport should scroll to track the
// highlighted cell. Scrolls are rate-limited so rapid cell changes near a
// row boundary do not shake the view, and skipped entirely while the target
// row sits within the comfort margin around the viewport center.
type Follower struct {
	throttle   time.Duration
	margin     int // rows from viewport center considered "in view"
	lastScroll time.Time
}

// NewFollower creates a follower with the given scroll throttle and
// comfort margin.
func NewFollower(throttle time.Duration, margin int) *Follower {
	return &Follower{throttle: throttle, margin: margin}
}

// Offset computes the viewport Y offset that centers targetRow.
// Returns false when no scroll should happen: the row is already within the
// comfort margin, the throttle window has not elapsed, or centering would
// not move the viewport.
func (f *Follower) Offset(currentOffset, height, targetRow, totalRows int, now time.Time) (int, bool) {
	if height < 1 || targetRow < 0 || totalRows == 0 {
		return 0, false
	}

	// Comfortable means near the center AND actually on screen. A row can
	// be within margin of the center while scrolled just off the edge of a
	// short viewport.
	center := currentOffset + height/2
	diff := targetRow - center
	visible := targetRow >= currentOffset && targetRow < currentOffset+height

	if diff >= -f.margin && diff <= f.margin && visible {
		return 0, false
	}

	if !f.lastScroll.IsZero() && now.Sub(f.lastScroll) < f.throttle {
		return 0, false
	}

	offset := targetRow - height/2
	maxOffset := totalRows - height
	if maxOffset < 0 {
		maxOffset = 0
	}

	if offset < 0 {
		offset = 0
	}

	if offset > maxOffset {
		offset = maxOffset
	}

	if offset == currentOffset {
		return 0, false
	}

	f.lastScroll = now

	return offset, true
}

// gridRow returns the viewport row a cell index renders on.
func gridRow(cell, perRow int) int {
	if cell < 0 || perRow < 1 {
		return -1
	}

	return cell / perRow
}

// gridRows returns the number of rows needed to render total cells.
func gridRows(total, perRow int) int {
	if total <= 0 || perRow < 1 {
		return 0
	}

	return (total + perRow - 1) / perRow
}
