package domain

import (
	"time"
)

// Ride is a saved cycling route. Coordinates are in drawing order.
type Ride struct {
	ID          string       `json:"id"`
	Coordinates []Coordinate `json:"coordinates"`
	DistanceKm  float64      `json:"distance_km"`
	Polyline    string       `json:"polyline,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// AvoidZone is a saved polygon the rider wants to stay out of.
// Coordinates always form a closed ring.
type AvoidZone struct {
	ID          string       `json:"id"`
	Coordinates []Coordinate `json:"coordinates"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Boundary is an administrative area returned by the geocoder.
type Boundary struct {
	DisplayName string       `json:"display_name"`
	Geometry    CityGeometry `json:"-"`
	BoundingBox *Bounds      `json:"bounding_box,omitempty"`
}

// GeocodeResult is one candidate place for a free-text query.
type GeocodeResult struct {
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Type        string  `json:"type,omitempty"`
	Class       string  `json:"class,omitempty"`
	Importance  float64 `json:"importance,omitempty"`
}

// Stats summarizes everything saved so far.
type Stats struct {
	TotalRides int     `json:"total_rides"`
	TotalKm    float64 `json:"total_km"`
	TotalZones int     `json:"total_zones"`
}

// ShapeEvent is published whenever a ride or zone is created or deleted.
type ShapeEvent struct {
	Type       string       `json:"type"` // "created" | "deleted"
	Kind       ShapeKind    `json:"kind"`
	ID         string       `json:"id"`
	Coords     []Coordinate `json:"coordinates,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}
