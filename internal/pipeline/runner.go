package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/psavery/tomviz/internal/ctxlog"
)

// Runner executes data source pipelines on worker goroutines. A step failure
// fails that source's run and skips its downstream steps; sibling sources
// keep running.
type Runner struct{}

// NewRunner creates a pipeline runner.
func NewRunner() *Runner { return &Runner{} }

// Execute runs every data source concurrently and blocks until all finish.
// The returned error is the first source failure, if any.
func (r *Runner) Execute(ctx context.Context, sources ...*DataSource) error {
	var g errgroup.Group
	for _, ds := range sources {
		ds := ds
		g.Go(func() error { return r.runSource(ctx, ds) })
	}
	return g.Wait()
}

// runSource is the per-source worker loop: deep-copy the root data, walk the
// steps in order, and record each step's outcome on its state machine.
func (r *Runner) runSource(ctx context.Context, ds *DataSource) error {
	logger := ctxlog.FromContext(ctx).With("source", ds.Name())
	logger.Debug("Pipeline worker started.", "steps", len(ds.Steps()))

	working := ds.Data().DeepCopy()
	var failed error

	for _, step := range ds.Steps() {
		if err := ctx.Err(); err != nil {
			step.skip(err)
			continue
		}
		if failed != nil {
			step.skip(failed)
			continue
		}

		label := step.Transform().Label()
		step.setState(Running)
		logger.Debug("Step started.", "operator", label)

		if err := step.Transform().Apply(ctx, working); err != nil {
			logger.Error("Step failed, skipping downstream steps.", "operator", label, "error", err)
			step.fail(err)
			failed = err
			continue
		}

		step.setState(Done)
		logger.Debug("Step finished.", "operator", label)
	}

	if failed != nil {
		return fmt.Errorf("pipeline for source %q failed: %w", ds.Name(), failed)
	}
	ds.setTransformed(working)
	logger.Debug("Pipeline worker finished.")
	return nil
}
