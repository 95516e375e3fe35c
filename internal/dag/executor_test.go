package dag

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/task"
)

// recorder collects the order in which task actions start and finish.
type recorder struct {
	mu     sync.Mutex
	starts []string
	ends   map[string]time.Time
	begins map[string]time.Time
	runs   map[string]int
}

func newRecorder() *recorder {
	return &recorder{
		ends:   make(map[string]time.Time),
		begins: make(map[string]time.Time),
		runs:   make(map[string]int),
	}
}

func (r *recorder) action(name string, sleep time.Duration, err error) task.Action {
	return task.ActionFunc(func(ctx context.Context) error {
		r.mu.Lock()
		r.starts = append(r.starts, name)
		r.begins[name] = time.Now()
		r.runs[name]++
		r.mu.Unlock()

		if sleep > 0 {
			select {
			case <-time.After(sleep):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		r.mu.Lock()
		r.ends[name] = time.Now()
		r.mu.Unlock()
		return err
	})
}

func (r *recorder) started() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.starts...)
}

func diamond(rec *recorder, sleep time.Duration) *registry.Registry {
	reg := registry.New()
	reg.Register("a", nil, rec.action("a", sleep, nil))
	reg.Register("b", []string{"a"}, rec.action("b", sleep, nil))
	reg.Register("c", []string{"a"}, rec.action("c", sleep, nil))
	reg.Register("d", []string{"b", "c"}, rec.action("d", sleep, nil))
	return reg
}

func TestRun_DiamondRunsSharedPrerequisiteOnce(t *testing.T) {
	for _, workers := range []int{1, 4} {
		rec := newRecorder()
		runner := NewRunner(diamond(rec, 10*time.Millisecond), WithWorkers(workers))

		report, err := runner.Run(context.Background(), "d")
		require.NoError(t, err, "workers=%d", workers)

		starts := rec.started()
		require.Len(t, starts, 4)
		assert.Equal(t, "a", starts[0])
		assert.ElementsMatch(t, []string{"b", "c"}, starts[1:3])
		assert.Equal(t, "d", starts[3])
		assert.Equal(t, 1, rec.runs["a"])

		assert.False(t, rec.begins["b"].Before(rec.ends["a"]))
		assert.False(t, rec.begins["c"].Before(rec.ends["a"]))
		assert.False(t, rec.begins["d"].Before(rec.ends["b"]))
		assert.False(t, rec.begins["d"].Before(rec.ends["c"]))

		require.NotNil(t, report)
		assert.Equal(t, 4, report.Count(Done))
		assert.NotEmpty(t, report.RunID)
	}
}

func TestRun_SequentialOrderIsDeterministic(t *testing.T) {
	rec := newRecorder()
	reg := registry.New()
	reg.Register("dist", []string{"build", "dist:package", "dist:readme"}, rec.action("dist", 0, nil))
	reg.Register("build", []string{"build:src"}, nil)
	reg.Register("build:src", nil, rec.action("build:src", 0, nil))
	reg.Register("dist:package", nil, rec.action("dist:package", 0, nil))
	reg.Register("dist:readme", nil, rec.action("dist:readme", 0, nil))

	_, err := NewRunner(reg).Run(context.Background(), "dist")
	require.NoError(t, err)
	assert.Equal(t, []string{"build:src", "dist:package", "dist:readme", "dist"}, rec.started())
}

func TestRun_IndependentTasksOverlapWithWorkers(t *testing.T) {
	var running, peak atomic.Int32
	slow := task.ActionFunc(func(context.Context) error {
		cur := running.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
		running.Add(-1)
		return nil
	})

	reg := registry.New()
	reg.Register("x", nil, slow)
	reg.Register("y", nil, slow)
	reg.Register("z", nil, slow)
	reg.Register("all", []string{"x", "y", "z"}, nil)

	_, err := NewRunner(reg, WithWorkers(3)).Run(context.Background(), "all")
	require.NoError(t, err)
	assert.Greater(t, peak.Load(), int32(1), "independent tasks should run concurrently")
}

func TestRun_CycleExecutesNothing(t *testing.T) {
	rec := newRecorder()
	reg := registry.New()
	reg.Register("x", []string{"y"}, rec.action("x", 0, nil))
	reg.Register("y", []string{"x"}, rec.action("y", 0, nil))

	report, err := NewRunner(reg).Run(context.Background(), "x")

	require.ErrorIs(t, err, task.ErrCyclicDependency)
	assert.Nil(t, report)
	assert.Empty(t, rec.started())
}

func TestRun_UnknownTaskExecutesNothing(t *testing.T) {
	rec := newRecorder()
	reg := diamond(rec, 0)

	_, err := NewRunner(reg).Run(context.Background(), "e")
	var unknown *task.UnknownTaskError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "e", unknown.Name)
	assert.Empty(t, rec.started())
}

func TestRun_UnknownPrerequisiteExecutesNothing(t *testing.T) {
	rec := newRecorder()
	reg := registry.New()
	reg.Register("ok", nil, rec.action("ok", 0, nil))
	reg.Register("top", []string{"ok", "typo"}, rec.action("top", 0, nil))

	_, err := NewRunner(reg).Run(context.Background(), "top")
	require.ErrorIs(t, err, task.ErrUnknownTask)
	assert.Empty(t, rec.started(), "no action may run before the plan is valid")
}

func TestRun_FailureStopsDependents(t *testing.T) {
	boom := errors.New("boom")
	rec := newRecorder()
	reg := registry.New()
	reg.Register("fail", nil, rec.action("fail", 0, boom))
	reg.Register("after", []string{"fail"}, rec.action("after", 0, nil))
	reg.Register("later", []string{"after"}, rec.action("later", 0, nil))

	report, err := NewRunner(reg).Run(context.Background(), "later")

	var failed *task.TaskFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "fail", failed.Name)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"fail"}, rec.started())

	require.NotNil(t, report)
	fr, _ := report.Task("fail")
	assert.Equal(t, Failed, fr.State)
	ar, _ := report.Task("after")
	assert.Equal(t, Skipped, ar.State)
	lr, _ := report.Task("later")
	assert.Equal(t, Skipped, lr.State)
}

func TestRun_FailureCancelsSiblingsAndReportsRootCause(t *testing.T) {
	boom := errors.New("compile error")
	rec := newRecorder()
	reg := registry.New()
	reg.Register("broken", nil, rec.action("broken", 0, boom))
	reg.Register("slow", nil, rec.action("slow", 5*time.Second, nil))
	reg.Register("all", []string{"slow", "broken"}, rec.action("all", 0, nil))

	start := time.Now()
	report, err := NewRunner(reg, WithWorkers(2)).Run(context.Background(), "all")

	var failed *task.TaskFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "broken", failed.Name, "cancellation of siblings is not the root cause")
	assert.Less(t, time.Since(start), 4*time.Second, "siblings should observe cancellation")
	assert.NotContains(t, rec.started(), "all")

	ar, _ := report.Task("all")
	assert.Equal(t, Skipped, ar.State)
}

func TestRun_GroupingTaskCompletesWithPrerequisites(t *testing.T) {
	rec := newRecorder()
	reg := registry.New()
	reg.Register("clean:dist", nil, rec.action("clean:dist", 0, nil))
	reg.Register("clean", []string{"clean:dist"}, nil)

	report, err := NewRunner(reg).Run(context.Background(), "clean")
	require.NoError(t, err)
	assert.Equal(t, []string{"clean:dist"}, rec.started())
	cr, ok := report.Task("clean")
	require.True(t, ok)
	assert.Equal(t, Done, cr.State)
}

func TestRun_UpToDateCountsAsComplete(t *testing.T) {
	rec := newRecorder()
	reg := registry.New()
	reg.Register("build", nil, task.ActionFunc(func(context.Context) error { return task.ErrUpToDate }))
	reg.Register("test", []string{"build"}, rec.action("test", 0, nil))

	report, err := NewRunner(reg).Run(context.Background(), "test")
	require.NoError(t, err)
	assert.Equal(t, []string{"test"}, rec.started())
	br, _ := report.Task("build")
	assert.Equal(t, UpToDate, br.State)
	assert.True(t, br.State.Completed())
}

func TestRun_EachRunIsIndependent(t *testing.T) {
	rec := newRecorder()
	runner := NewRunner(diamond(rec, 0))

	_, err := runner.Run(context.Background(), "b")
	require.NoError(t, err)
	_, err = runner.Run(context.Background(), "c")
	require.NoError(t, err)

	assert.Equal(t, 2, rec.runs["a"], "at-most-once applies per run")
}

func TestRun_CancelledContext(t *testing.T) {
	rec := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(diamond(rec, 0)).Run(ctx, "d")
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, task.ErrTaskFailed)
	assert.Empty(t, rec.started())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "up-to-date", UpToDate.String())
	assert.Equal(t, "skipped", Skipped.String())
	assert.Equal(t, "unknown", State(99).String())
}
