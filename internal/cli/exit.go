package cli

import (
	"errors"

	"github.com/vk/taskgrid/internal/task"
)

// Exit codes returned by the taskgrid binary.
const (
	ExitOK          = 0
	ExitTaskFailed  = 1
	ExitUsageOrConf = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// UsageError wraps a usage or configuration failure.
func UsageError(err error) *ExitError {
	return &ExitError{Code: ExitUsageOrConf, Message: err.Error()}
}

// RunError wraps a failed run. Unknown tasks and cycles are configuration
// errors; anything else means a task failed or the run was interrupted.
func RunError(err error) *ExitError {
	if errors.Is(err, task.ErrUnknownTask) || errors.Is(err, task.ErrCyclicDependency) {
		return UsageError(err)
	}
	return &ExitError{Code: ExitTaskFailed, Message: err.Error()}
}
