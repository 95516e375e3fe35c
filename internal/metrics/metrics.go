// Package metrics records the outcome of runs as Prometheus metrics. The
// registry is private to each Recorder; the CLI can dump it in the text
// exposition format for a node_exporter textfile collector.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vk/taskgrid/internal/dag"
	"github.com/vk/taskgrid/internal/task"
)

const namespace = "taskgrid"

// Result labels of taskgrid_runs_total.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
	ResultInvalid = "invalid"
)

// Recorder collects run and task metrics.
type Recorder struct {
	registry     *prometheus.Registry
	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	tasks        *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Runs by requested task and result.",
		}, []string{"target", "result"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"target"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Planned tasks by final state.",
		}, []string{"task", "state"}),
		taskDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Time spent in a task's action.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"task"}),
	}
	r.registry.MustRegister(r.runs, r.runDuration, r.tasks, r.taskDuration)
	return r
}

// ObserveRun records one finished run. report is nil when planning failed.
func (r *Recorder) ObserveRun(target string, report *dag.Report, err error) {
	result := ResultSuccess
	switch {
	case errors.Is(err, task.ErrUnknownTask), errors.Is(err, task.ErrCyclicDependency):
		result = ResultInvalid
	case err != nil:
		result = ResultFailed
	}
	r.runs.WithLabelValues(target, result).Inc()
	if report == nil {
		return
	}

	r.runDuration.WithLabelValues(target).Observe(report.Duration.Seconds())
	for _, t := range report.Tasks {
		r.tasks.WithLabelValues(t.Name, t.State.String()).Inc()
		if t.State == dag.Done || t.State == dag.Failed {
			r.taskDuration.WithLabelValues(t.Name).Observe(t.Duration.Seconds())
		}
	}
}

// WriteFile writes all metrics to path in the text exposition format.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
