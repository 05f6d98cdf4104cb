package domain

import "github.com/paulmach/orb"

// Coordinate is a WGS 84 (longitude, latitude) pair. It serializes as [lng, lat].
type Coordinate = orb.Point

// CityGeometry is the boundary of an administrative area: an orb.Polygon or
// an orb.MultiPolygon. Other geometry types are treated as "no polygon".
type CityGeometry = orb.Geometry

// DrawingMode selects which shape a drawing session is building.
type DrawingMode string

const (
	ModeNone      DrawingMode = "none"
	ModeRide      DrawingMode = "ride"
	ModeAvoidZone DrawingMode = "avoid-zone"
)

// Valid reports whether m is one of the known modes.
func (m DrawingMode) Valid() bool {
	switch m {
	case ModeNone, ModeRide, ModeAvoidZone:
		return true
	}
	return false
}

// ShapeKind distinguishes the two kinds of saved shapes.
type ShapeKind string

const (
	KindRide ShapeKind = "ride"
	KindZone ShapeKind = "avoid-zone"
)

// Bounds represents a geographic bounding box.
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`
}

// BoundsFromOrb converts an orb.Bound into Bounds.
func BoundsFromOrb(b orb.Bound) Bounds {
	return Bounds{
		MinLat: b.Min.Lat(),
		MinLon: b.Min.Lon(),
		MaxLat: b.Max.Lat(),
		MaxLon: b.Max.Lon(),
	}
}
