package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/core/usecases"
)

var square = orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}}

func TestBoundaryView_AppliesMaskAndOutline(t *testing.T) {
	r := newRecordingRenderer()
	provider := &mockBoundaries{fetchFn: func(ctx context.Context, place string) (*domain.Boundary, error) {
		return &domain.Boundary{DisplayName: place, Geometry: square}, nil
	}}
	bv := usecases.NewBoundaryView(provider, r)

	b, err := bv.Search(context.Background(), "Bilbao")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.DisplayName != "Bilbao" {
		t.Errorf("unexpected boundary %+v", b)
	}
	if len(r.mask) != 2 {
		t.Fatalf("expected world ring plus hole, got %d rings", len(r.mask))
	}
	if r.outline == nil {
		t.Error("expected outline rendered")
	}

	bv.Clear()
	if r.mask != nil || r.outline != nil {
		t.Error("expected boundary cleared")
	}
	if cur, _ := bv.Current(); cur != nil {
		t.Error("expected no current boundary")
	}
}

func TestBoundaryView_NotFound(t *testing.T) {
	r := newRecordingRenderer()
	bv := usecases.NewBoundaryView(&mockBoundaries{}, r)

	_, err := bv.Search(context.Background(), "Atlantis")
	if !errors.Is(err, domain.ErrBoundaryNotFound) {
		t.Fatalf("expected ErrBoundaryNotFound, got %v", err)
	}
	if r.mask != nil {
		t.Error("nothing should be rendered")
	}
}

func TestBoundaryView_PointGeometryIsNotFound(t *testing.T) {
	provider := &mockBoundaries{fetchFn: func(ctx context.Context, place string) (*domain.Boundary, error) {
		return &domain.Boundary{DisplayName: place, Geometry: orb.Point{1, 1}}, nil
	}}
	bv := usecases.NewBoundaryView(provider, nil)

	if _, err := bv.Search(context.Background(), "x"); !errors.Is(err, domain.ErrBoundaryNotFound) {
		t.Fatalf("expected ErrBoundaryNotFound, got %v", err)
	}
}

func TestBoundaryView_NewerSearchWins(t *testing.T) {
	r := newRecordingRenderer()
	started := make(chan struct{})
	release := make(chan struct{})
	provider := &mockBoundaries{fetchFn: func(ctx context.Context, place string) (*domain.Boundary, error) {
		if place == "slow" {
			close(started)
			<-release
			// answers even though it was cancelled
			return &domain.Boundary{DisplayName: "slow", Geometry: square}, nil
		}
		return &domain.Boundary{DisplayName: "fast", Geometry: square}, nil
	}}
	bv := usecases.NewBoundaryView(provider, r)

	errc := make(chan error, 1)
	go func() {
		_, err := bv.Search(context.Background(), "slow")
		errc <- err
	}()
	<-started

	if _, err := bv.Search(context.Background(), "fast"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(release)

	select {
	case err := <-errc:
		if !errors.Is(err, domain.ErrStaleResult) {
			t.Errorf("expected ErrStaleResult, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("slow search never returned")
	}

	if cur, _ := bv.Current(); cur == nil || cur.DisplayName != "fast" {
		t.Errorf("expected fast boundary applied, got %+v", cur)
	}
}

func TestBoundaryView_ClearDiscardsInFlight(t *testing.T) {
	r := newRecordingRenderer()
	started := make(chan struct{})
	provider := &mockBoundaries{fetchFn: func(ctx context.Context, place string) (*domain.Boundary, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	bv := usecases.NewBoundaryView(provider, r)

	errc := make(chan error, 1)
	go func() {
		_, err := bv.Search(context.Background(), "x")
		errc <- err
	}()
	<-started
	bv.Clear()

	select {
	case err := <-errc:
		if !errors.Is(err, domain.ErrStaleResult) {
			t.Errorf("expected ErrStaleResult, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("search was not cancelled")
	}
	if r.mask != nil {
		t.Error("cleared view must stay empty")
	}
}
