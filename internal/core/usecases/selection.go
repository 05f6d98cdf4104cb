package usecases

import (
	"github.com/paulmach/orb"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/core/ports"
	"github.com/samirrijal/ridemycity/internal/pkg/geospatial"
)

// SelectionView is the highlight state after a selection change.
type SelectionView struct {
	RideID string `json:"ride_id,omitempty"`
	ZoneID string `json:"zone_id,omitempty"`
	Dimmed bool   `json:"dimmed"`
}

// Selection keeps at most one highlighted ride and one highlighted zone, and
// never both at once. Selecting an item dims every other shape and frames
// the item; selecting it again restores the normal view.
type Selection struct {
	rideID   string
	zoneID   string
	shapes   *SavedShapes
	renderer ports.MapRenderer
}

// NewSelection creates a selection over shapes. renderer may be nil.
func NewSelection(shapes *SavedShapes, renderer ports.MapRenderer) *Selection {
	if renderer == nil {
		renderer = nopRenderer{}
	}
	return &Selection{shapes: shapes, renderer: renderer}
}

// View returns the current selection state.
func (s *Selection) View() SelectionView {
	return SelectionView{
		RideID: s.rideID,
		ZoneID: s.zoneID,
		Dimmed: s.rideID != "" || s.zoneID != "",
	}
}

// SelectRide toggles the highlight of a saved ride. Unknown ids are ignored.
func (s *Selection) SelectRide(id string) {
	if id != "" && s.rideID == id {
		s.clear(domain.KindRide)
		s.renderer.SetDimmed(false)
		return
	}
	ride, ok := s.shapes.Ride(id)
	if !ok {
		return
	}
	if s.zoneID != "" {
		s.clear(domain.KindZone)
	}
	s.rideID = id
	s.highlight(domain.KindRide, ride.Coordinates)
}

// SelectZone toggles the highlight of a saved zone. Unknown ids are ignored.
func (s *Selection) SelectZone(id string) {
	if id != "" && s.zoneID == id {
		s.clear(domain.KindZone)
		s.renderer.SetDimmed(false)
		return
	}
	zone, ok := s.shapes.Zone(id)
	if !ok {
		return
	}
	if s.rideID != "" {
		s.clear(domain.KindRide)
	}
	s.zoneID = id
	s.highlight(domain.KindZone, zone.Coordinates)
}

// Forget deselects id if it is the current selection of its kind. It must run
// before the shape leaves the saved collection.
func (s *Selection) Forget(kind domain.ShapeKind, id string) {
	switch {
	case kind == domain.KindRide && id != "" && s.rideID == id:
		s.SelectRide(id)
	case kind == domain.KindZone && id != "" && s.zoneID == id:
		s.SelectZone(id)
	}
}

func (s *Selection) highlight(kind domain.ShapeKind, coords []domain.Coordinate) {
	s.renderer.RenderSelection(kind, coords)
	s.renderer.SetDimmed(true)
	s.renderer.FitViewport(geospatial.Bounds(coords))
}

func (s *Selection) clear(kind domain.ShapeKind) {
	if kind == domain.KindRide {
		s.rideID = ""
	} else {
		s.zoneID = ""
	}
	s.renderer.RenderSelection(kind, nil)
}

// nopRenderer discards every render call.
type nopRenderer struct{}

func (nopRenderer) RenderPreviewLine(orb.LineString) {}
func (nopRenderer) RenderPreviewPolygon(orb.Polygon) {}
func (nopRenderer) RenderMarkers(domain.DrawingMode, []domain.Coordinate) {}
func (nopRenderer) RenderMask(orb.Polygon) {}
func (nopRenderer) RenderBoundaryOutline(domain.CityGeometry) {}
func (nopRenderer) RenderSelection(domain.ShapeKind, []domain.Coordinate) {}
func (nopRenderer) SetDimmed(bool) {}
func (nopRenderer) FitViewport(orb.Bound) {}
