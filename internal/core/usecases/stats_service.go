package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/core/ports"
	"github.com/samirrijal/ridemycity/internal/pkg/geospatial"
)

const statsCacheKey = "stats:summary"

// StatsService aggregates totals over saved shapes.
type StatsService struct {
	rides ports.RideRepository
	zones ports.AvoidZoneRepository
	cache ports.CacheService
}

// NewStatsService creates a new StatsService.
func NewStatsService(rides ports.RideRepository, zones ports.AvoidZoneRepository, cache ports.CacheService) *StatsService {
	return &StatsService{rides: rides, zones: zones, cache: cache}
}

// Summary returns ride count, total kilometers and zone count.
func (s *StatsService) Summary(ctx context.Context) (*domain.Stats, error) {
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, statsCacheKey); err == nil {
			var st domain.Stats
			if err := json.Unmarshal(data, &st); err == nil {
				return &st, nil
			}
		}
	}

	rides, err := s.rides.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rides: %w", err)
	}
	zones, err := s.zones.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list avoid zones: %w", err)
	}

	st := Summarize(rides, zones)

	if s.cache != nil {
		if data, err := json.Marshal(st); err == nil {
			_ = s.cache.Set(ctx, statsCacheKey, data, 60)
		}
	}
	return st, nil
}

// Summarize computes stats directly from shapes, recomputing each ride's
// distance from its coordinates.
func Summarize(rides []domain.Ride, zones []domain.AvoidZone) *domain.Stats {
	var km float64
	for _, r := range rides {
		km += geospatial.DistanceKm(r.Coordinates)
	}
	return &domain.Stats{
		TotalRides: len(rides),
		TotalKm:    geospatial.RoundKm(km),
		TotalZones: len(zones),
	}
}
