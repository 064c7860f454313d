package workflow

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/testbridge/testbridge/pkg/logger"
)

// Runner executes workflows on a bounded pool of executors. Each workflow
// still runs its own step sequence sequentially; the bound limits how many
// workflows run at once.
type Runner struct {
	engine *Engine
	group  *errgroup.Group
	ctx    context.Context
}

// NewRunner creates a runner with at most executors concurrent workflows.
func NewRunner(ctx context.Context, engine *Engine, executors int) *Runner {
	if executors < 1 {
		executors = 1
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(executors)
	return &Runner{engine: engine, group: group, ctx: groupCtx}
}

// Submit schedules a workflow start. A workflow failure is logged, not
// propagated: one failed migration must not tear down the other executors.
func (r *Runner) Submit(workflowID string) {
	r.group.Go(func() error {
		if err := r.engine.Start(r.ctx, workflowID); err != nil {
			logger.FromContext(r.ctx).Error("workflow run failed",
				"workflow_id", workflowID, "error", err)
		}
		return nil
	})
}

// Wait blocks until every submitted workflow has finished.
func (r *Runner) Wait() error {
	return r.group.Wait()
}
