package app

import (
	"context"
	"fmt"

	"github.com/psavery/tomviz/internal/ctxlog"
	"github.com/psavery/tomviz/internal/pipeline"
)

// Run executes every data source's pipeline. The calling goroutine becomes
// the dispatcher's consumer — the affinity target for result and
// child-dataset delivery — while pipeline workers run the transforms.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if len(a.sources) == 0 {
		a.logger.Warn("No pipelines to run.")
		return nil
	}

	a.logger.Info("Starting pipeline execution.", "sources", len(a.sources))
	runner := pipeline.NewRunner()

	done := make(chan error, 1)
	go func() {
		// Closing the dispatcher after the last worker finishes lets Run
		// drain queued deliveries and return.
		defer a.disp.Close()
		done <- runner.Execute(ctx, a.Sources()...)
	}()

	if err := a.disp.Run(ctx); err != nil {
		<-done
		return err
	}
	runErr := <-done

	for _, s := range a.sources {
		for _, step := range s.ds.Steps() {
			a.logger.Info("Step result.",
				"source", s.ds.Name(),
				"operator", step.Transform().Label(),
				"state", step.State().String())
		}
		for _, child := range s.ds.Children() {
			a.logger.Info("Child data source created.", "source", s.ds.Name(), "child", child.Name())
		}
	}

	if a.config.SessionOut != "" {
		if err := a.saveSession(a.config.SessionOut); err != nil {
			return err
		}
		a.logger.Info("Session saved.", "path", a.config.SessionOut)
	}

	if runErr != nil {
		return fmt.Errorf("execution failed: %w", runErr)
	}
	a.logger.Info("Execution finished.")
	return nil
}
