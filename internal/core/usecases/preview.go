package usecases

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/pkg/geospatial"
)

// Preview is the live draft geometry of a drawing session.
// A nil Line or Polygon means that feature is not shown.
type Preview struct {
	Line    orb.LineString
	Polygon orb.Polygon
}

// Empty reports whether there is nothing to draw.
func (p Preview) Empty() bool {
	return p.Line == nil && p.Polygon == nil
}

// FeatureCollection returns the preview as GeoJSON.
func (p Preview) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if p.Line != nil {
		f := geojson.NewFeature(p.Line)
		f.Properties["kind"] = "draft-line"
		fc.Append(f)
	}
	if p.Polygon != nil {
		f := geojson.NewFeature(p.Polygon)
		f.Properties["kind"] = "draft-polygon"
		fc.Append(f)
	}
	return fc
}

// BuildPreview computes the draft geometry for the given mode, committed
// points and optional cursor. The cursor only matters in ride mode, where it
// adds a rubber-band segment from the last committed point.
//
// The returned geometry never aliases committed, so it can be held as a snapshot
// while the session keeps appending.
func BuildPreview(mode domain.DrawingMode, committed []domain.Coordinate, cursor *domain.Coordinate) Preview {
	switch mode {
	case domain.ModeRide:
		n := len(committed)
		if cursor != nil && n > 0 {
			n++
		}
		if n < 2 {
			return Preview{}
		}
		line := make(orb.LineString, 0, n)
		line = append(line, committed...)
		if cursor != nil && len(committed) > 0 {
			line = append(line, *cursor)
		}
		return Preview{Line: line}

	case domain.ModeAvoidZone:
		if len(committed) <= 2 {
			return Preview{}
		}
		ring := geospatial.EnsureClosedRing(committed)
		if len(ring) <= 3 {
			return Preview{}
		}
		return Preview{Polygon: orb.Polygon{cloneRing(ring)}}
	}
	return Preview{}
}

func cloneRing(points []domain.Coordinate) orb.Ring {
	r := make(orb.Ring, len(points))
	copy(r, points)
	return r
}

func clonePoints(points []domain.Coordinate) []domain.Coordinate {
	if points == nil {
		return nil
	}
	out := make([]domain.Coordinate, len(points))
	copy(out, points)
	return out
}
