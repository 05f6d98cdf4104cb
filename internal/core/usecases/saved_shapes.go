package usecases

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/ridemycity/internal/core/domain"
)

// SavedShapes is the client-side collection of rides and zones shown on the
// map, in the order they were loaded or created. Not safe for concurrent use.
type SavedShapes struct {
	rides []domain.Ride
	zones []domain.AvoidZone
}

// NewSavedShapes returns an empty collection.
func NewSavedShapes() *SavedShapes {
	return &SavedShapes{}
}

// Load replaces the whole collection.
func (s *SavedShapes) Load(rides []domain.Ride, zones []domain.AvoidZone) {
	s.rides = append([]domain.Ride(nil), rides...)
	s.zones = append([]domain.AvoidZone(nil), zones...)
}

func (s *SavedShapes) AddRide(r domain.Ride) { s.rides = append(s.rides, r) }
func (s *SavedShapes) AddZone(z domain.AvoidZone) { s.zones = append(s.zones, z) }

// Ride looks up a ride by id.
func (s *SavedShapes) Ride(id string) (domain.Ride, bool) {
	for _, r := range s.rides {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Ride{}, false
}

// Zone looks up a zone by id.
func (s *SavedShapes) Zone(id string) (domain.AvoidZone, bool) {
	for _, z := range s.zones {
		if z.ID == id {
			return z, true
		}
	}
	return domain.AvoidZone{}, false
}

// RemoveRide drops a ride, reporting whether it was present.
func (s *SavedShapes) RemoveRide(id string) bool {
	for i, r := range s.rides {
		if r.ID == id {
			s.rides = append(s.rides[:i:i], s.rides[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveZone drops a zone, reporting whether it was present.
func (s *SavedShapes) RemoveZone(id string) bool {
	for i, z := range s.zones {
		if z.ID == id {
			s.zones = append(s.zones[:i:i], s.zones[i+1:]...)
			return true
		}
	}
	return false
}

func (s *SavedShapes) Rides() []domain.Ride { return append([]domain.Ride(nil), s.rides...) }
func (s *SavedShapes) Zones() []domain.AvoidZone { return append([]domain.AvoidZone(nil), s.zones...) }

// FeatureCollection renders every saved shape: rides as LineStrings and zones
// as Polygons, each tagged with its id and kind.
func (s *SavedShapes) FeatureCollection() *geojson.FeatureCollection {
	return ShapesFeatureCollection(s.rides, s.zones)
}

// ShapesFeatureCollection renders rides and zones as GeoJSON.
func ShapesFeatureCollection(rides []domain.Ride, zones []domain.AvoidZone) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, r := range rides {
		f := geojson.NewFeature(orb.LineString(r.Coordinates))
		f.ID = r.ID
		f.Properties["id"] = r.ID
		f.Properties["kind"] = string(domain.KindRide)
		f.Properties["distance_km"] = r.DistanceKm
		fc.Append(f)
	}
	for _, z := range zones {
		f := geojson.NewFeature(orb.Polygon{orb.Ring(z.Coordinates)})
		f.ID = z.ID
		f.Properties["id"] = z.ID
		f.Properties["kind"] = string(domain.KindZone)
		fc.Append(f)
	}
	return fc
}
