package ports

import (
	"context"

	"github.com/paulmach/orb"

	"github.com/samirrijal/ridemycity/internal/core/domain"
)

// BoundaryProvider resolves a place name to its administrative boundary.
// It returns domain.ErrBoundaryNotFound when no polygon is available.
type BoundaryProvider interface {
	FetchBoundary(ctx context.Context, place string) (*domain.Boundary, error)
}

// Geocoder resolves free text to candidate places.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]domain.GeocodeResult, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishRideCreated(ctx context.Context, ride *domain.Ride) error
	PublishZoneCreated(ctx context.Context, zone *domain.AvoidZone) error
	PublishShapeDeleted(ctx context.Context, kind domain.ShapeKind, id string) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// CleanupScheduler runs the follow-up work of a shape deletion
// (event fan-out, cache invalidation) outside the request.
type CleanupScheduler interface {
	ScheduleCleanup(ctx context.Context, kind domain.ShapeKind, id string) error
}

// ShapeSink receives shapes finished by a drawing session. Calls are
// fire-and-forget from the session's point of view.
type ShapeSink interface {
	RideReady(points []domain.Coordinate)
	ZoneReady(ring []domain.Coordinate)
}

// MapRenderer is the map widget. Every call replaces the previous state of
// the layer it addresses; a nil argument clears that layer.
type MapRenderer interface {
	RenderPreviewLine(line orb.LineString)
	RenderPreviewPolygon(poly orb.Polygon)
	RenderMarkers(mode domain.DrawingMode, points []domain.Coordinate)
	RenderMask(mask orb.Polygon)
	RenderBoundaryOutline(geom domain.CityGeometry)
	RenderSelection(kind domain.ShapeKind, coords []domain.Coordinate)
	SetDimmed(dimmed bool)
	FitViewport(bounds orb.Bound)
}
