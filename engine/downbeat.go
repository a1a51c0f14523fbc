// ABOUTME: Downbeat tracker locating the active measure boundary
// ABOUTME: Plain binary search, no hysteresis needed at measure granularity

package engine

import "sort"

// locateDownbeat returns the index of the greatest downbeat timestamp <= t,
// or -1 when t precedes the first downbeat. Measure boundaries change far
// less often than beat cells, so no stabilization is applied.
func locateDownbeat(downbeats []float64, t float64) int {
	if len(downbeats) == 0 || t < downbeats[0] {
		return -1
	}

	return sort.Search(len(downbeats), func(i int) bool { return downbeats[i] > t }) - 1
}
