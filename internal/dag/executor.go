package dag

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/task"
)

// Runner executes tasks from a registry.
type Runner struct {
	registry *registry.Registry
	workers  int
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets how many tasks may run at the same time. Values below one
// are treated as one, which gives strictly sequential execution.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n < 1 {
			n = 1
		}
		r.workers = n
	}
}

// NewRunner creates a Runner over reg. By default it uses a single worker.
func NewRunner(reg *registry.Registry, opts ...Option) *Runner {
	r := &Runner{registry: reg, workers: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the task called name after all of its transitive
// prerequisites. Planning errors are returned with a nil Report and before
// any action starts. Otherwise the Report describes every planned task, and
// the error is a *task.TaskFailedError for the first task that failed.
func (r *Runner) Run(ctx context.Context, name string) (*Report, error) {
	runID := uuid.NewString()
	ctx = ctxlog.With(ctx, "run_id", runID)
	logger := ctxlog.FromContext(ctx)

	logger.Debug("Planning run.", "target", name)
	plan, err := NewPlan(r.registry, name)
	if err != nil {
		return nil, err
	}
	graph, err := plan.Graph()
	if err != nil {
		return nil, err
	}
	logger.Debug("Plan ready.", "target", name, "order", plan.Names())

	e := &executor{graph: graph, numWorkers: r.workers}
	start := time.Now()
	runErr := e.run(ctx)

	report := newReport(runID, plan, graph, time.Since(start))
	return report, runErr
}

// executor runs one Graph. It is created per run and never reused.
type executor struct {
	graph      *Graph
	numWorkers int
	wg         sync.WaitGroup

	errOnce sync.Once
	err     error
}

// run executes the entire graph and returns an error if any node fails.
// It respects the cancellation signal from the provided context.
func (e *executor) run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	nodes := e.graph.nodes

	readyChan := make(chan *node, len(nodes))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	e.wg.Add(len(nodes))

	logger.Debug("Initializing executor, finding root nodes...")
	for _, id := range e.graph.order {
		if n := nodes[id]; n.depCount.Load() == 0 {
			logger.Debug("Found root node.", "task", id)
			readyChan <- n
		}
	}

	workers := min(e.numWorkers, len(nodes))
	logger.Debug("Starting worker pool.", "workers", workers)
	for i := 0; i < workers; i++ {
		go e.worker(runCtx, readyChan, cancel, i)
	}

	e.wg.Wait()
	close(readyChan)
	logger.Debug("All nodes settled.")

	if e.err != nil {
		return e.err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	return nil
}

// worker is the core processing loop for a single concurrent worker.
func (e *executor) worker(ctx context.Context, readyChan chan *node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "worker_id", workerID)

	for n := range readyChan {
		workerLogger := logger.With("worker_id", workerID, "task", n.id)

		if ctx.Err() != nil {
			workerLogger.Warn("Run cancelled, skipping task.")
			e.settle(n, Skipped, ctx.Err())
			e.skipDependents(ctx, n)
			continue
		}

		state, err := e.execute(ctxlog.WithLogger(ctx, workerLogger), n)
		if err != nil {
			if ctx.Err() != nil && errors.Is(err, context.Canceled) {
				// Cancelled because something else failed first.
				workerLogger.Warn("Task interrupted by cancellation.", "error", err)
			} else {
				workerLogger.Error("❌ Task failed.", "error", err)
				e.errOnce.Do(func() {
					e.err = &task.TaskFailedError{Name: n.id, Cause: err}
				})
			}
			cancel()
			e.settle(n, Failed, err)
			e.skipDependents(ctx, n)
			continue
		}

		// Dependents are unlocked before this node is settled, so the queue is
		// never written after the run has settled.
		for _, id := range sortedKeys(n.dependents) {
			dependent := n.dependents[id]
			if dependent.depCount.Add(-1) == 0 {
				workerLogger.Debug("Unlocking dependent task.", "dependent", dependent.id)
				readyChan <- dependent
			}
		}
		e.settle(n, state, nil)
	}
	logger.Debug("Worker finished.", "worker_id", workerID)
}

// execute starts the node's action and blocks until its future resolves.
// Grouping tasks complete immediately.
func (e *executor) execute(ctx context.Context, n *node) (State, error) {
	logger := ctxlog.FromContext(ctx)
	n.started = time.Now()
	n.setState(Running)

	if n.task.IsGroup() {
		logger.Debug("Grouping task complete.")
		return Done, nil
	}

	logger.Info("▶️ Starting task")
	err := n.task.Action.Start(ctx).Get()
	switch {
	case errors.Is(err, task.ErrUpToDate):
		logger.Info("⏭️ Task up to date")
		return UpToDate, nil
	case err != nil:
		return Failed, err
	}
	logger.Info("✅ Finished task", "duration", time.Since(n.started).String())
	return Done, nil
}

// settle records the final state of a node and releases it from the run's
// WaitGroup. Only the first call for a node has any effect.
func (e *executor) settle(n *node, state State, err error) {
	n.finishOnce.Do(func() {
		n.err = err
		n.finished = time.Now()
		n.setState(state)
		e.wg.Done()
	})
}

// skipDependents recursively marks all downstream nodes as skipped.
func (e *executor) skipDependents(ctx context.Context, n *node) {
	logger := ctxlog.FromContext(ctx)
	for _, id := range sortedKeys(n.dependents) {
		dependent := n.dependents[id]
		if dependent.getState() != Pending {
			continue
		}
		logger.Warn("Skipping dependent task due to upstream failure.", "task", dependent.id, "dependency", n.id)
		e.settle(dependent, Skipped, fmt.Errorf("skipped due to upstream failure of %q", n.id))
		e.skipDependents(ctx, dependent)
	}
}
