package workflows

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/ridemycity/internal/core/domain"
)

type fakeShapeEvents struct {
	mu         sync.Mutex
	calls      []string
	publishErr error
}

func (f *fakeShapeEvents) PublishDeleted(_ context.Context, kind domain.ShapeKind, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "publish:"+string(kind)+":"+id)
	return f.publishErr
}

func (f *fakeShapeEvents) InvalidateStats(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "invalidate")
	return nil
}

func TestShapeCleanupWorkflow(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	fake := &fakeShapeEvents{}
	env.RegisterActivity(&CleanupActivities{Shapes: fake})

	env.ExecuteWorkflow(ShapeCleanupWorkflow, CleanupInput{Kind: domain.KindRide, ID: "r1"})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	assert.Equal(t, []string{"invalidate", "publish:ride:r1"}, fake.calls)
}

func TestShapeCleanupWorkflow_PublishFails(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	fake := &fakeShapeEvents{publishErr: errors.New("nats down")}
	env.RegisterActivity(&CleanupActivities{Shapes: fake})

	env.ExecuteWorkflow(ShapeCleanupWorkflow, CleanupInput{Kind: domain.KindZone, ID: "z1"})

	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
	assert.Equal(t, "invalidate", fake.calls[0])
	assert.Contains(t, fake.calls, "publish:avoid-zone:z1")
}

func TestWorkflowID(t *testing.T) {
	assert.Equal(t, "shape-cleanup-ride-abc", WorkflowID(domain.KindRide, "abc"))
	assert.Equal(t, "shape-cleanup-avoid-zone-abc", WorkflowID(domain.KindZone, "abc"))
}
