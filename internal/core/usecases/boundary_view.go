package usecases

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/paulmach/orb"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/core/ports"
	"github.com/samirrijal/ridemycity/internal/pkg/geospatial"
	"github.com/samirrijal/ridemycity/internal/pkg/metrics"
)

// BoundaryView shows the boundary of one searched place: an outline plus an
// inverted mask that dims the rest of the world.
//
// Lookups may overlap. Each Search starts a new generation and cancels the
// previous one; only the newest generation's result reaches the renderer.
type BoundaryView struct {
	provider ports.BoundaryProvider
	renderer ports.MapRenderer

	mu       sync.Mutex
	gen      uint64
	cancel   context.CancelFunc
	boundary *domain.Boundary
	mask     orb.Polygon
}

// NewBoundaryView creates a BoundaryView. renderer may be nil.
func NewBoundaryView(provider ports.BoundaryProvider, renderer ports.MapRenderer) *BoundaryView {
	if renderer == nil {
		renderer = nopRenderer{}
	}
	return &BoundaryView{provider: provider, renderer: renderer}
}

// Search looks up place and, if this is still the latest search when the
// answer arrives, renders its mask and outline.
//
// It returns domain.ErrBoundaryNotFound when the place has no polygon and
// domain.ErrStaleResult when a newer search or Clear superseded this one.
func (b *BoundaryView) Search(ctx context.Context, place string) (*domain.Boundary, error) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	if b.cancel != nil {
		b.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	b.cancel = cancel
	b.clearLocked()
	b.mu.Unlock()

	boundary, err := b.provider.FetchBoundary(ctx, place)

	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.gen {
		metrics.BoundaryLookups.WithLabelValues("stale").Inc()
		return nil, domain.ErrStaleResult
	}
	b.cancel = nil

	if err != nil {
		if errors.Is(err, domain.ErrBoundaryNotFound) {
			metrics.BoundaryLookups.WithLabelValues("not_found").Inc()
		} else {
			metrics.BoundaryLookups.WithLabelValues("error").Inc()
		}
		return nil, fmt.Errorf("fetch boundary %q: %w", place, err)
	}

	mask := geospatial.InvertedMask(boundary.Geometry)
	if mask == nil {
		metrics.BoundaryLookups.WithLabelValues("not_found").Inc()
		return nil, fmt.Errorf("fetch boundary %q: %w", place, domain.ErrBoundaryNotFound)
	}

	b.boundary = boundary
	b.mask = mask
	b.renderer.RenderMask(mask)
	b.renderer.RenderBoundaryOutline(boundary.Geometry)
	metrics.BoundaryLookups.WithLabelValues("found").Inc()
	return boundary, nil
}

// Clear removes the boundary and invalidates any lookup in flight.
func (b *BoundaryView) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gen++
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.clearLocked()
}

// Current returns the applied boundary and its mask, or nils.
func (b *BoundaryView) Current() (*domain.Boundary, orb.Polygon) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.boundary, b.mask
}

func (b *BoundaryView) clearLocked() {
	if b.boundary == nil && b.mask == nil {
		return
	}
	b.boundary = nil
	b.mask = nil
	b.renderer.RenderMask(nil)
	b.renderer.RenderBoundaryOutline(nil)
}
