package task

import (
	"context"
	"fmt"
	"sync"
)

// Future holds the outcome of a started Action. It resolves exactly once.
type Future struct {
	done chan struct{}
	once sync.Once
	err  error
}

// NewFuture returns an unresolved Future together with the function that
// resolves it. Calls to resolve after the first are ignored.
func NewFuture() (*Future, func(error)) {
	f := &Future{done: make(chan struct{})}
	return f, f.resolve
}

// Resolved returns a Future that is already resolved with err.
func Resolved(err error) *Future {
	f, resolve := NewFuture()
	resolve(err)
	return f
}

// Go runs fn on a new goroutine and returns a Future for its result. A panic
// inside fn resolves the Future with an error instead of crashing the process.
func Go(ctx context.Context, fn func(ctx context.Context) error) *Future {
	f, resolve := NewFuture()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				resolve(fmt.Errorf("action panicked: %v", r))
			}
		}()
		resolve(fn(ctx))
	}()
	return f
}

func (f *Future) resolve(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Get blocks until the Future resolves and returns its error.
func (f *Future) Get() error {
	<-f.done
	return f.err
}
