package ports

import (
	"context"

	"github.com/samirrijal/ridemycity/internal/core/domain"
)

// RideRepository persists rides.
type RideRepository interface {
	Create(ctx context.Context, ride *domain.Ride) error
	GetByID(ctx context.Context, id string) (*domain.Ride, error)
	List(ctx context.Context) ([]domain.Ride, error)
	Delete(ctx context.Context, id string) error
}

// AvoidZoneRepository persists avoid zones.
type AvoidZoneRepository interface {
	Create(ctx context.Context, zone *domain.AvoidZone) error
	GetByID(ctx context.Context, id string) (*domain.AvoidZone, error)
	List(ctx context.Context) ([]domain.AvoidZone, error)
	Delete(ctx context.Context, id string) error
}
