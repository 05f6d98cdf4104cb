package temporal

import (
	"context"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"

	"github.com/samirrijal/ridemycity/internal/core/domain"
	"github.com/samirrijal/ridemycity/internal/workflows"
)

// Scheduler implements ports.CleanupScheduler by starting a
// ShapeCleanupWorkflow per deleted shape.
type Scheduler struct {
	client    client.Client
	taskQueue string
}

// NewScheduler dials the Temporal frontend.
func NewScheduler(hostPort, namespace, taskQueue string) (*Scheduler, error) {
	c, err := client.Dial(client.Options{
		HostPort:  hostPort,
		Namespace: namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("temporal client: %w", err)
	}
	return &Scheduler{client: c, taskQueue: taskQueue}, nil
}

func (s *Scheduler) ScheduleCleanup(ctx context.Context, kind domain.ShapeKind, id string) error {
	opts := client.StartWorkflowOptions{
		ID:        workflows.WorkflowID(kind, id),
		TaskQueue: s.taskQueue,
	}
	run, err := s.client.ExecuteWorkflow(ctx, opts, workflows.ShapeCleanupWorkflow, workflows.CleanupInput{Kind: kind, ID: id})
	if err != nil {
		return fmt.Errorf("start cleanup workflow: %w", err)
	}
	slog.DebugContext(ctx, "cleanup workflow started", "workflow_id", run.GetID(), "run_id", run.GetRunID())
	return nil
}

// Close closes the Temporal client.
func (s *Scheduler) Close() {
	s.client.Close()
}
