// Package task defines the unit of work the runner schedules: a named Task
// with declared prerequisites and an optional Action whose completion is
// observed through a Future.
package task

import "context"

// Task is a named unit of work with declared prerequisites.
type Task struct {
	// Name uniquely identifies the task within a registry.
	Name string
	// Description is shown by the help listing.
	Description string
	// Prerequisites are the names of tasks that must complete before this
	// task's action starts. Order is preserved and used for planning.
	Prerequisites []string
	// Action is the work itself. A nil Action makes this a grouping task
	// that completes as soon as its prerequisites do.
	Action Action
}

// IsGroup reports whether the task has no action of its own.
func (t *Task) IsGroup() bool {
	return t.Action == nil
}

// Action is started once per run and reports its outcome through the
// returned Future.
type Action interface {
	Start(ctx context.Context) *Future
}

// ActionFunc adapts a blocking function to the Action interface. The
// function runs on its own goroutine.
type ActionFunc func(ctx context.Context) error

// Start implements Action.
func (f ActionFunc) Start(ctx context.Context) *Future {
	return Go(ctx, f)
}

// Sequence returns an Action that starts each action in order, waiting for
// the previous one to resolve. The first failure stops the sequence, and no
// action starts once ctx is done.
func Sequence(actions ...Action) Action {
	switch len(actions) {
	case 0:
		return nil
	case 1:
		return actions[0]
	}
	return ActionFunc(func(ctx context.Context) error {
		for _, a := range actions {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := a.Start(ctx).Get(); err != nil {
				return err
			}
		}
		return nil
	})
}
