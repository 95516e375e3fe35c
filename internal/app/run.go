package app

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/dag"
	"github.com/vk/taskgrid/internal/task"
)

const (
	// DefaultTask runs when no task is named.
	DefaultTask = "default"
	// HelpTask lists the tasks. It runs when no task is named and there is
	// no default task.
	HelpTask = "help"
)

// Run executes each named task in turn, each as a separate run. With no
// names it runs the default task, or help when there is none. It stops at
// the first run that fails.
func (a *App) Run(ctx context.Context, names ...string) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "tasks", names)

	if len(names) == 0 {
		if _, ok := a.registry.Lookup(DefaultTask); ok {
			names = []string{DefaultTask}
		} else {
			names = []string{HelpTask}
		}
	}

	if a.config.MetricsFile != "" {
		defer a.writeMetrics()
	}

	runner := dag.NewRunner(a.registry, dag.WithWorkers(a.config.Workers))
	for _, name := range names {
		a.logger.Info("🚀 Starting run.", "target", name, "workers", a.config.Workers)
		report, err := runner.Run(ctx, name)
		a.metrics.ObserveRun(name, report, err)
		if report != nil {
			a.logReport(report)
		}
		if err != nil {
			return fmt.Errorf("run %q: %w", name, err)
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// writeMetrics dumps the run metrics. A failure is logged, not returned, so
// it never changes the outcome of the runs.
func (a *App) writeMetrics() {
	if err := a.metrics.WriteFile(a.config.MetricsFile); err != nil {
		a.logger.Error("Failed to write metrics file.", "path", a.config.MetricsFile, "error", err)
		return
	}
	a.logger.Debug("Metrics written.", "path", a.config.MetricsFile)
}

func (a *App) logReport(r *dag.Report) {
	a.logger.Info("🏁 Run finished.",
		"run_id", r.RunID,
		"target", r.Target,
		"duration", r.Duration.String(),
		"done", r.Count(dag.Done),
		"up_to_date", r.Count(dag.UpToDate),
		"failed", r.Count(dag.Failed),
		"skipped", r.Count(dag.Skipped),
	)
	for _, t := range r.Tasks {
		a.logger.Debug("Task result.", "run_id", r.RunID, "task", t.Name, "state", t.State.String(), "duration", t.Duration.String())
	}
}

// helpTask is the built-in task that lists every registered task.
func (a *App) helpTask() *task.Task {
	return &task.Task{
		Name:        HelpTask,
		Description: "List the available tasks",
		Action: task.ActionFunc(func(ctx context.Context) error {
			return a.List(a.outW)
		}),
	}
}

// List writes every registered task with its description and prerequisites,
// sorted by name.
func (a *App) List(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Tasks:")
	for _, t := range a.registry.Tasks() {
		deps := ""
		if len(t.Prerequisites) > 0 {
			deps = "[" + strings.Join(t.Prerequisites, ", ") + "]"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", t.Name, t.Description, deps)
	}
	return tw.Flush()
}
