package workflows

import (
	"context"
	"fmt"

	"github.com/samirrijal/ridemycity/internal/core/domain"
)

// ShapeEvents is the part of the shape service the cleanup activities need.
type ShapeEvents interface {
	PublishDeleted(ctx context.Context, kind domain.ShapeKind, id string) error
	InvalidateStats(ctx context.Context) error
}

// CleanupActivities holds the activity implementations for ShapeCleanupWorkflow.
type CleanupActivities struct {
	Shapes ShapeEvents
}

// InvalidateStats drops the cached stats summary.
func (a *CleanupActivities) InvalidateStats(ctx context.Context) error {
	if err := a.Shapes.InvalidateStats(ctx); err != nil {
		return fmt.Errorf("invalidate stats: %w", err)
	}
	return nil
}

// PublishShapeDeleted announces the deletion on the event bus.
func (a *CleanupActivities) PublishShapeDeleted(ctx context.Context, kind domain.ShapeKind, id string) error {
	if err := a.Shapes.PublishDeleted(ctx, kind, id); err != nil {
		return fmt.Errorf("publish %s %s deleted: %w", kind, id, err)
	}
	return nil
}
