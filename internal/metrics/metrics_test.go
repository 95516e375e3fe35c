package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/dag"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/task"
)

func ok(context.Context) error { return nil }

func TestObserveRun(t *testing.T) {
	reg := registry.New()
	reg.Register("build", nil, task.ActionFunc(ok))
	reg.Register("fail", []string{"build"}, task.ActionFunc(func(context.Context) error { return errors.New("boom") }))
	reg.Register("after", []string{"fail"}, task.ActionFunc(ok))
	runner := dag.NewRunner(reg)

	rec := New()

	report, err := runner.Run(context.Background(), "build")
	require.NoError(t, err)
	rec.ObserveRun("build", report, err)

	report, err = runner.Run(context.Background(), "after")
	require.Error(t, err)
	rec.ObserveRun("after", report, err)

	report, err = runner.Run(context.Background(), "nope")
	require.Error(t, err)
	rec.ObserveRun("nope", report, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runs.WithLabelValues("build", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runs.WithLabelValues("after", ResultFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runs.WithLabelValues("nope", ResultInvalid)))

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.tasks.WithLabelValues("build", "done")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.tasks.WithLabelValues("fail", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.tasks.WithLabelValues("after", "skipped")))
	assert.Equal(t, 2, testutil.CollectAndCount(rec.taskDuration))
}

func TestWriteFile(t *testing.T) {
	rec := New()
	rec.ObserveRun("build", &dag.Report{Target: "build"}, nil)

	path := filepath.Join(t.TempDir(), "taskgrid.prom")
	require.NoError(t, rec.WriteFile(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `taskgrid_runs_total{result="success",target="build"} 1`)
}
