package usecases_test

import (
	"testing"

	"github.com/paulmach/orb"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/core/usecases"
)

func TestBuildPreview_Ride(t *testing.T) {
	a, b, c := domain.Coordinate{0, 0}, domain.Coordinate{1, 0}, domain.Coordinate{1, 1}

	tests := []struct {
		name      string
		committed []domain.Coordinate
		cursor    *domain.Coordinate
		want      orb.LineString
	}{
		{"two points with cursor", []domain.Coordinate{a, b}, &c, orb.LineString{a, b, c}},
		{"two points", []domain.Coordinate{a, b}, nil, orb.LineString{a, b}},
		{"one point", []domain.Coordinate{a}, nil, nil},
		{"one point with cursor", []domain.Coordinate{a}, &c, orb.LineString{a, c}},
		{"cursor only", nil, &c, nil},
		{"empty", nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := usecases.BuildPreview(domain.ModeRide, tt.committed, tt.cursor)
			if p.Polygon != nil {
				t.Errorf("ride mode must not produce a polygon")
			}
			if !orb.Equal(p.Line, tt.want) {
				t.Errorf("got %v, want %v", p.Line, tt.want)
			}
		})
	}
}

func TestBuildPreview_Zone(t *testing.T) {
	tri := []domain.Coordinate{{0, 0}, {1, 0}, {1, 1}}

	p := usecases.BuildPreview(domain.ModeAvoidZone, tri, nil)
	if p.Line != nil {
		t.Error("zone mode must not produce a line")
	}
	if len(p.Polygon) != 1 || len(p.Polygon[0]) != 4 {
		t.Fatalf("expected one closed ring of 4, got %v", p.Polygon)
	}
	if p.Polygon[0][0] != p.Polygon[0][3] {
		t.Error("ring not closed")
	}

	if p := usecases.BuildPreview(domain.ModeAvoidZone, tri[:2], nil); !p.Empty() {
		t.Errorf("two points must produce nothing, got %+v", p)
	}

	cursor := domain.Coordinate{5, 5}
	if p := usecases.BuildPreview(domain.ModeAvoidZone, tri, &cursor); len(p.Polygon[0]) != 4 {
		t.Error("cursor must be ignored in zone mode")
	}
}

func TestBuildPreview_NoneIgnoresStalePoints(t *testing.T) {
	stale := []domain.Coordinate{{0, 0}, {1, 0}, {1, 1}}
	if p := usecases.BuildPreview(domain.ModeNone, stale, nil); !p.Empty() {
		t.Errorf("expected empty preview, got %+v", p)
	}
}

func TestBuildPreview_DoesNotAlias(t *testing.T) {
	committed := []domain.Coordinate{{0, 0}, {1, 0}}
	p := usecases.BuildPreview(domain.ModeRide, committed, nil)
	committed[0] = domain.Coordinate{9, 9}
	if p.Line[0] != (domain.Coordinate{0, 0}) {
		t.Error("preview shares memory with committed points")
	}
}

func TestPreview_FeatureCollection(t *testing.T) {
	p := usecases.BuildPreview(domain.ModeRide, []domain.Coordinate{{0, 0}, {1, 0}}, nil)
	fc := p.FeatureCollection()
	if len(fc.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(fc.Features))
	}
	if fc.Features[0].Properties["kind"] != "draft-line" {
		t.Errorf("unexpected kind %v", fc.Features[0].Properties["kind"])
	}
}
