package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/ridemycity/internal/core/domain"
)

// CleanupInput identifies the deleted shape.
type CleanupInput struct {
	Kind domain.ShapeKind
	ID   string
}

// WorkflowID is the deterministic id of the cleanup run for one shape, so a
// repeated delete does not start a second run.
func WorkflowID(kind domain.ShapeKind, id string) string {
	return "shape-cleanup-" + string(kind) + "-" + id
}

// ShapeCleanupWorkflow runs the follow-up of a shape deletion: the stats
// cache is dropped, then the deletion is announced on the event bus.
func ShapeCleanupWorkflow(ctx workflow.Context, input CleanupInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting shape cleanup", "kind", input.Kind, "id", input.ID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	var a *CleanupActivities
	if err := workflow.ExecuteActivity(ctx, a.InvalidateStats).Get(ctx, nil); err != nil {
		logger.Warn("stats invalidation failed", "error", err)
		return err
	}

	if err := workflow.ExecuteActivity(ctx, a.PublishShapeDeleted, input.Kind, input.ID).Get(ctx, nil); err != nil {
		logger.Warn("publish deletion failed", "error", err)
		return err
	}

	logger.Info("Shape cleanup done", "kind", input.Kind, "id", input.ID)
	return nil
}
