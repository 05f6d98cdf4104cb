package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/core/ports"
	"github.com/samirrijal/ridemycity/internal/pkg/geospatial"
	"github.com/samirrijal/ridemycity/internal/pkg/metrics"
)

// ShapeService creates, lists and deletes saved rides and avoid zones.
type ShapeService struct {
	rides   ports.RideRepository
	zones   ports.AvoidZoneRepository
	events  ports.EventPublisher
	cache   ports.CacheService
	cleanup ports.CleanupScheduler
}

// NewShapeService creates a new ShapeService. events, cache and cleanup are optional.
func NewShapeService(
	rides ports.RideRepository,
	zones ports.AvoidZoneRepository,
	events ports.EventPublisher,
	cache ports.CacheService,
	cleanup ports.CleanupScheduler,
) *ShapeService {
	return &ShapeService{rides: rides, zones: zones, events: events, cache: cache, cleanup: cleanup}
}

// CreateRide stores a ride. It needs at least two coordinates.
func (s *ShapeService) CreateRide(ctx context.Context, coords []domain.Coordinate) (*domain.Ride, error) {
	if len(coords) < minRidePoints {
		return nil, fmt.Errorf("ride needs at least %d coordinates, got %d: %w",
			minRidePoints, len(coords), domain.ErrInvalidShape)
	}

	path := clonePoints(coords)
	ride := &domain.Ride{
		Coordinates: path,
		DistanceKm:  geospatial.RoundKm(geospatial.DistanceKm(path)),
		Polyline:    geospatial.EncodePolyline(path),
	}
	if err := s.rides.Create(ctx, ride); err != nil {
		return nil, fmt.Errorf("create ride: %w", err)
	}
	metrics.ShapesCreated.WithLabelValues(string(domain.KindRide)).Inc()

	if s.events != nil {
		if err := s.events.PublishRideCreated(ctx, ride); err != nil {
			slog.WarnContext(ctx, "publish ride created", "ride_id", ride.ID, "error", err)
		}
	}
	s.invalidateStats(ctx)
	return ride, nil
}

// CreateZone stores an avoid zone. The ring is closed first and must then
// have at least four coordinates.
func (s *ShapeService) CreateZone(ctx context.Context, coords []domain.Coordinate) (*domain.AvoidZone, error) {
	ring := clonePoints(geospatial.EnsureClosedRing(coords))
	if len(ring) < minZonePoints+1 {
		return nil, fmt.Errorf("avoid zone needs at least %d coordinates, got %d: %w",
			minZonePoints+1, len(ring), domain.ErrInvalidShape)
	}

	zone := &domain.AvoidZone{Coordinates: ring}
	if err := s.zones.Create(ctx, zone); err != nil {
		return nil, fmt.Errorf("create avoid zone: %w", err)
	}
	metrics.ShapesCreated.WithLabelValues(string(domain.KindZone)).Inc()

	if s.events != nil {
		if err := s.events.PublishZoneCreated(ctx, zone); err != nil {
			slog.WarnContext(ctx, "publish zone created", "zone_id", zone.ID, "error", err)
		}
	}
	s.invalidateStats(ctx)
	return zone, nil
}

func (s *ShapeService) ListRides(ctx context.Context) ([]domain.Ride, error) {
	return s.rides.List(ctx)
}

func (s *ShapeService) ListZones(ctx context.Context) ([]domain.AvoidZone, error) {
	return s.zones.List(ctx)
}

// GetRide returns a single ride or domain.ErrNotFound.
func (s *ShapeService) GetRide(ctx context.Context, id string) (*domain.Ride, error) {
	return s.rides.GetByID(ctx, id)
}

// GetZone returns a single zone or domain.ErrNotFound.
func (s *ShapeService) GetZone(ctx context.Context, id string) (*domain.AvoidZone, error) {
	return s.zones.GetByID(ctx, id)
}

// DeleteRide removes a ride and schedules the follow-up cleanup.
func (s *ShapeService) DeleteRide(ctx context.Context, id string) error {
	if err := s.rides.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete ride %s: %w", id, err)
	}
	s.afterDelete(ctx, domain.KindRide, id)
	return nil
}

// DeleteZone removes an avoid zone and schedules the follow-up cleanup.
func (s *ShapeService) DeleteZone(ctx context.Context, id string) error {
	if err := s.zones.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete avoid zone %s: %w", id, err)
	}
	s.afterDelete(ctx, domain.KindZone, id)
	return nil
}

// PublishDeleted announces a deletion on the event bus.
func (s *ShapeService) PublishDeleted(ctx context.Context, kind domain.ShapeKind, id string) error {
	if s.events == nil {
		return nil
	}
	return s.events.PublishShapeDeleted(ctx, kind, id)
}

// InvalidateStats drops the cached stats summary.
func (s *ShapeService) InvalidateStats(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, statsCacheKey)
}

func (s *ShapeService) afterDelete(ctx context.Context, kind domain.ShapeKind, id string) {
	metrics.ShapesDeleted.WithLabelValues(string(kind)).Inc()

	if s.cleanup != nil {
		err := s.cleanup.ScheduleCleanup(ctx, kind, id)
		if err == nil {
			return
		}
		slog.WarnContext(ctx, "schedule cleanup failed, running inline", "kind", kind, "id", id, "error", err)
	}

	if err := s.PublishDeleted(ctx, kind, id); err != nil {
		slog.WarnContext(ctx, "publish shape deleted", "kind", kind, "id", id, "error", err)
	}
	s.invalidateStats(ctx)
}

func (s *ShapeService) invalidateStats(ctx context.Context) {
	if err := s.InvalidateStats(ctx); err != nil {
		slog.WarnContext(ctx, "invalidate stats cache", "error", err)
	}
}
