package task

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownTask matches every *UnknownTaskError.
	ErrUnknownTask = errors.New("unknown task")
	// ErrCyclicDependency matches every *CyclicDependencyError.
	ErrCyclicDependency = errors.New("cyclic dependency")
	// ErrTaskFailed matches every *TaskFailedError.
	ErrTaskFailed = errors.New("task failed")

	// ErrUpToDate is used as a return value by actions to indicate that
	// there was nothing to do. It is not returned as an error by any
	// function; the runner records the task as complete and up to date.
	ErrUpToDate = errors.New("task is up to date")
)

// UnknownTaskError reports a task name that is not registered. RequiredBy is
// set when the name was referenced as a prerequisite.
type UnknownTaskError struct {
	Name       string
	RequiredBy string
}

func (e *UnknownTaskError) Error() string {
	if e.RequiredBy != "" {
		return fmt.Sprintf("unknown task %q (required by %q)", e.Name, e.RequiredBy)
	}
	return fmt.Sprintf("unknown task %q", e.Name)
}

// Is lets errors.Is(err, ErrUnknownTask) match.
func (e *UnknownTaskError) Is(target error) bool { return target == ErrUnknownTask }

// CyclicDependencyError reports a prerequisite cycle. Path starts and ends
// with the same task name.
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	if len(e.Path) == 0 {
		return "cyclic dependency"
	}
	return "cyclic dependency: " + strings.Join(e.Path, " -> ")
}

// Is lets errors.Is(err, ErrCyclicDependency) match.
func (e *CyclicDependencyError) Is(target error) bool { return target == ErrCyclicDependency }

// TaskFailedError reports a task whose action resolved with an error.
type TaskFailedError struct {
	Name  string
	Cause error
}

func (e *TaskFailedError) Error() string {
	return fmt.Sprintf("task %q failed: %v", e.Name, e.Cause)
}

// Unwrap returns the action's error.
func (e *TaskFailedError) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrTaskFailed) match.
func (e *TaskFailedError) Is(target error) bool { return target == ErrTaskFailed }
