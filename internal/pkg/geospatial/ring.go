package geospatial

import "github.com/paulmach/orb"

// EnsureClosedRing returns points as a closed ring (first point == last point).
//
// An empty or already closed input is returned as-is, the same slice, so callers
// can compare identities to skip redundant updates. Otherwise a new slice with
// the first point appended is returned. The input is never modified.
func EnsureClosedRing(points []orb.Point) []orb.Point {
	if len(points) == 0 {
		return points
	}
	if points[0] == points[len(points)-1] {
		return points
	}
	closed := make([]orb.Point, len(points), len(points)+1)
	copy(closed, points)
	return append(closed, points[0])
}
