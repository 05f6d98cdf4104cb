package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/paulmach/orb"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/core/usecases"
)

func TestGeoService_GeocodeCached(t *testing.T) {
	geocoder := &mockGeocoder{geocodeFn: func(ctx context.Context, q string) ([]domain.GeocodeResult, error) {
		return []domain.GeocodeResult{{DisplayName: "Bilbao", Lat: 43.26, Lon: -2.93}}, nil
	}}
	svc := usecases.NewGeoService(geocoder, &mockBoundaries{}, newMockCache())

	for i := 0; i < 2; i++ {
		res, err := svc.Geocode(context.Background(), "  Bilbao ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res) != 1 || res[0].DisplayName != "Bilbao" {
			t.Fatalf("unexpected results %+v", res)
		}
	}
	if n := geocoder.calls.Load(); n != 1 {
		t.Errorf("expected one upstream call, got %d", n)
	}
}

func TestGeoService_GeocodeEmptyQuery(t *testing.T) {
	geocoder := &mockGeocoder{}
	svc := usecases.NewGeoService(geocoder, &mockBoundaries{}, nil)
	if _, err := svc.Geocode(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty query")
	}
	if geocoder.calls.Load() != 0 {
		t.Error("upstream must not be called")
	}
}

func TestGeoService_BoundaryRoundTripsThroughCache(t *testing.T) {
	boundaries := &mockBoundaries{fetchFn: func(ctx context.Context, place string) (*domain.Boundary, error) {
		return &domain.Boundary{
			DisplayName: "Bilbao",
			Geometry:    square,
			BoundingBox: &domain.Bounds{MinLat: 0, MinLon: 0, MaxLat: 1, MaxLon: 1},
		}, nil
	}}
	svc := usecases.NewGeoService(&mockGeocoder{}, boundaries, newMockCache())

	if _, err := svc.FetchBoundary(context.Background(), "Bilbao"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.FetchBoundary(context.Background(), "bilbao")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if boundaries.calls.Load() != 1 {
		t.Errorf("expected cached second lookup, got %d calls", boundaries.calls.Load())
	}
	if b.DisplayName != "Bilbao" || b.BoundingBox == nil || b.BoundingBox.MaxLat != 1 {
		t.Errorf("unexpected cached boundary %+v", b)
	}
	if _, ok := b.Geometry.(orb.Polygon); !ok {
		t.Errorf("expected polygon geometry, got %T", b.Geometry)
	}
}

func TestGeoService_BoundaryMissIsCached(t *testing.T) {
	boundaries := &mockBoundaries{}
	svc := usecases.NewGeoService(&mockGeocoder{}, boundaries, newMockCache())

	for i := 0; i < 2; i++ {
		if _, err := svc.FetchBoundary(context.Background(), "Atlantis"); !errors.Is(err, domain.ErrBoundaryNotFound) {
			t.Fatalf("expected ErrBoundaryNotFound, got %v", err)
		}
	}
	if boundaries.calls.Load() != 1 {
		t.Errorf("expected miss cached, got %d calls", boundaries.calls.Load())
	}
}

func TestGeoService_UpstreamErrorNotCached(t *testing.T) {
	boundaries := &mockBoundaries{fetchFn: func(ctx context.Context, place string) (*domain.Boundary, error) {
		return nil, domain.ErrUpstreamUnavailable
	}}
	cache := newMockCache()
	svc := usecases.NewGeoService(&mockGeocoder{}, boundaries, cache)

	if _, err := svc.FetchBoundary(context.Background(), "Bilbao"); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if len(cache.data) != 0 {
		t.Errorf("failures must not be cached, got %v", cache.data)
	}
}
