package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/core/ports"
	"github.com/samirrijal/ridemycity/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/ridemycity/internal/core/usecases")

const (
	geocodeTTL  = 3600
	boundaryTTL = 24 * 3600
)

// GeoService fronts the external geocoder with a read-through cache.
// It implements ports.BoundaryProvider so a BoundaryView can use it directly.
type GeoService struct {
	geocoder   ports.Geocoder
	boundaries ports.BoundaryProvider
	cache      ports.CacheService
}

// NewGeoService creates a new GeoService. cache may be nil.
func NewGeoService(geocoder ports.Geocoder, boundaries ports.BoundaryProvider, cache ports.CacheService) *GeoService {
	return &GeoService{geocoder: geocoder, boundaries: boundaries, cache: cache}
}

// cachedBoundary is the cache encoding of a boundary lookup, including misses.
type cachedBoundary struct {
	NotFound    bool            `json:"not_found,omitempty"`
	DisplayName string          `json:"display_name,omitempty"`
	BoundingBox *domain.Bounds  `json:"bounding_box,omitempty"`
	Geometry    json.RawMessage `json:"geometry,omitempty"`
}

// Geocode returns candidate places for query.
func (s *GeoService) Geocode(ctx context.Context, query string) ([]domain.GeocodeResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("geocode query must not be empty")
	}

	ctx, span := tracer.Start(ctx, "GeoService.Geocode")
	defer span.End()
	span.SetAttributes(attribute.String("geo.query", query))

	cacheKey := "geo:geocode:" + strings.ToLower(query)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var results []domain.GeocodeResult
			if err := json.Unmarshal(data, &results); err == nil {
				metrics.CacheHits.WithLabelValues("geocode").Inc()
				return results, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	results, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "geocode failed")
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(results); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, geocodeTTL)
		}
	}
	return results, nil
}

// FetchBoundary returns the administrative boundary of place, or
// domain.ErrBoundaryNotFound. Misses are cached too.
func (s *GeoService) FetchBoundary(ctx context.Context, place string) (*domain.Boundary, error) {
	place = strings.TrimSpace(place)
	if place == "" {
		return nil, fmt.Errorf("boundary query must not be empty")
	}

	ctx, span := tracer.Start(ctx, "GeoService.FetchBoundary")
	defer span.End()
	span.SetAttributes(attribute.String("geo.place", place))

	cacheKey := "geo:boundary:" + strings.ToLower(place)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			if b, err := decodeBoundary(data); err == nil {
				metrics.CacheHits.WithLabelValues("boundary").Inc()
				if b == nil {
					return nil, domain.ErrBoundaryNotFound
				}
				return b, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("boundary").Inc()
	}

	b, err := s.boundaries.FetchBoundary(ctx, place)
	switch {
	case errors.Is(err, domain.ErrBoundaryNotFound):
		s.storeBoundary(ctx, cacheKey, nil)
		return nil, err
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "boundary lookup failed")
		return nil, err
	}

	s.storeBoundary(ctx, cacheKey, b)
	return b, nil
}

func (s *GeoService) storeBoundary(ctx context.Context, key string, b *domain.Boundary) {
	if s.cache == nil {
		return
	}
	data, err := encodeBoundary(b)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, data, boundaryTTL)
}

func encodeBoundary(b *domain.Boundary) ([]byte, error) {
	if b == nil {
		return json.Marshal(cachedBoundary{NotFound: true})
	}
	geom, err := geojson.NewGeometry(b.Geometry).MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(cachedBoundary{
		DisplayName: b.DisplayName,
		BoundingBox: b.BoundingBox,
		Geometry:    geom,
	})
}

// decodeBoundary returns (nil, nil) for a cached miss.
func decodeBoundary(data []byte) (*domain.Boundary, error) {
	var c cachedBoundary
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c.NotFound {
		return nil, nil
	}
	g, err := geojson.UnmarshalGeometry(c.Geometry)
	if err != nil {
		return nil, err
	}
	return &domain.Boundary{
		DisplayName: c.DisplayName,
		BoundingBox: c.BoundingBox,
		Geometry:    g.Geometry(),
	}, nil
}
