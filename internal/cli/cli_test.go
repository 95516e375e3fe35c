package cli

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/app"
	"github.com/vk/taskgrid/internal/task"
)

func TestParse_Defaults(t *testing.T) {
	opts, shouldExit, err := Parse([]string{}, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Empty(t, opts.Tasks)
	assert.False(t, opts.List)
	assert.Equal(t, []string{app.DefaultTaskFile}, opts.Config.TaskFiles)
	assert.Equal(t, 1, opts.Config.Workers)
	assert.Equal(t, "info", opts.Config.LogLevel)
	assert.Equal(t, "text", opts.Config.LogFormat)
	assert.False(t, opts.Config.Force)
	assert.Empty(t, opts.Config.Variables)
}

func TestParse_Flags(t *testing.T) {
	args := []string{
		"-f", "build.hcl", "--file", "tasks/",
		"-w", "4",
		"--log-level", "DEBUG",
		"--log-format", "json",
		"--force",
		"--var", "out_dir=out", "--var", "version=1.2.3",
		"--metrics-file", "run.prom",
		"build", "test",
	}
	opts, shouldExit, err := Parse(args, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, shouldExit)

	assert.Equal(t, []string{"build", "test"}, opts.Tasks)
	assert.Equal(t, []string{"build.hcl", "tasks/"}, opts.Config.TaskFiles)
	assert.Equal(t, 4, opts.Config.Workers)
	assert.Equal(t, "debug", opts.Config.LogLevel)
	assert.Equal(t, "json", opts.Config.LogFormat)
	assert.True(t, opts.Config.Force)
	assert.Equal(t, map[string]string{"out_dir": "out", "version": "1.2.3"}, opts.Config.Variables)
	assert.Equal(t, "run.prom", opts.Config.MetricsFile)
}

func TestParse_VarKeepsCommasAndEquals(t *testing.T) {
	opts, _, err := Parse([]string{"--var", "x=1,y=2", "--var", "flags=-X main.v=1", "--var", "x=3,4"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"x": "3,4", "flags": "-X main.v=1"}, opts.Config.Variables)
}

func TestParse_List(t *testing.T) {
	opts, _, err := Parse([]string{"-l"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, opts.List)
}

func TestParse_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TASKGRID_WORKERS", "3")
	t.Setenv("TASKGRID_LOG_LEVEL", "warn")

	opts, _, err := Parse([]string{"build"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Config.Workers)
	assert.Equal(t, "warn", opts.Config.LogLevel)

	// An explicit flag wins over the environment.
	opts, _, err = Parse([]string{"-w", "2", "build"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 2, opts.Config.Workers)
}

func TestParse_Help(t *testing.T) {
	out := &bytes.Buffer{}
	opts, shouldExit, err := Parse([]string{"--help"}, out)
	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, opts)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "--workers")
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"--nope"}, "unknown flag: --nope"},
		{"bad workers", []string{"-w", "many"}, "invalid argument"},
		{"bad log level", []string{"--log-level", "trace"}, "invalid log-level"},
		{"bad log format", []string{"--log-format", "xml"}, "invalid log-format"},
		{"bad var", []string{"--var", "novalue"}, "novalue"},
		{"var without name", []string{"--var", "=value"}, "expected name=value"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			require.Error(t, err)

			var exitErr *ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, ExitUsageOrConf, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}

func TestRunError(t *testing.T) {
	testCases := []struct {
		err  error
		code int
	}{
		{&task.TaskFailedError{Name: "build", Cause: errors.New("boom")}, ExitTaskFailed},
		{fmt.Errorf("run %q: %w", "x", &task.UnknownTaskError{Name: "x"}), ExitUsageOrConf},
		{&task.CyclicDependencyError{Path: []string{"x", "y", "x"}}, ExitUsageOrConf},
		{errors.New("run interrupted: context canceled"), ExitTaskFailed},
	}
	for _, tc := range testCases {
		got := RunError(tc.err)
		assert.Equal(t, tc.code, got.Code, tc.err.Error())
		assert.Equal(t, tc.err.Error(), got.Message)
	}
}
