package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// taskLogged reports whether a log line contains msg and the task=name
// attribute.
func taskLogged(logOutput, msg, name string) bool {
	for _, line := range strings.Split(logOutput, "\n") {
		if !strings.Contains(line, msg) {
			continue
		}
		for _, field := range strings.Fields(line) {
			if field == "task="+name {
				return true
			}
		}
	}
	return false
}

// AssertTaskRan checks the log output within a HarnessResult to confirm that
// a task's action has completed.
func AssertTaskRan(t *testing.T, result *HarnessResult, name string) {
	t.Helper()
	require.True(t,
		taskLogged(result.LogOutput, "Finished task", name),
		"expected log output for task '%s' was not found in logs", name,
	)
}

// AssertTaskNotRan is the inverse of AssertTaskRan.
func AssertTaskNotRan(t *testing.T, result *HarnessResult, name string) {
	t.Helper()
	require.False(t,
		taskLogged(result.LogOutput, "Starting task", name),
		"task '%s' was started but should not have been", name,
	)
}
