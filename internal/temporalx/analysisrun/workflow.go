package analysisrun

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const defaultMaxParallel = 4

// Workflow analyzes every requested session. A session that fails after
// retries is recorded in the summary; it never fails the run.
func Workflow(ctx workflow.Context, req Request) (Summary, error) {
	if len(req.SessionIDs) == 0 {
		return Summary{}, fmt.Errorf("analysisrun: no sessions requested")
	}
	parallel := req.MaxParallel
	if parallel < 1 {
		parallel = defaultMaxParallel
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2,
			MaximumInterval:        30 * time.Second,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeSessionNotFound, ErrTypeInvalidSession},
		},
	})

	sum := Summary{Outcomes: make([]SessionOutcome, 0, len(req.SessionIDs))}
	for lo := 0; lo < len(req.SessionIDs); lo += parallel {
		hi := lo + parallel
		if hi > len(req.SessionIDs) {
			hi = len(req.SessionIDs)
		}
		batch := req.SessionIDs[lo:hi]
		futures := make([]workflow.Future, len(batch))
		for i, id := range batch {
			futures[i] = workflow.ExecuteActivity(ctx, ActivityAnalyze, id)
		}
		for i, f := range futures {
			var out SessionOutcome
			if err := f.Get(ctx, &out); err != nil {
				out = SessionOutcome{SessionID: batch[i], Error: err.Error()}
				sum.Failed++
			}
			sum.Outcomes = append(sum.Outcomes, out)
		}
	}
	workflow.GetLogger(ctx).Info("session analysis run finished", "sessions", len(sum.Outcomes), "failed", sum.Failed)
	return sum, nil
}

// Start submits a run on taskQueue.
func Start(ctx context.Context, c temporalsdkclient.Client, taskQueue string, req Request) (temporalsdkclient.WorkflowRun, error) {
	if c == nil {
		return nil, fmt.Errorf("analysisrun: temporal client is not configured")
	}
	return c.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:        "session-analysis-" + uuid.NewString(),
		TaskQueue: taskQueue,
	}, WorkflowName, req)
}
