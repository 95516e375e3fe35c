package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/task"
)

// RecorderModule provides the "record" action kind for tests. Every action
// appends its id to Order when it runs and records its execution time.
//
//	record {
//	  id    = "build"
//	  sleep = "20ms" // optional
//	  fail  = true   // optional
//	}
type RecorderModule struct {
	mu             sync.Mutex
	order          []string
	executionTimes map[string]ExecutionRecord
}

// NewRecorderModule creates an empty recorder.
func NewRecorderModule() *RecorderModule {
	return &RecorderModule{executionTimes: make(map[string]ExecutionRecord)}
}

type recordInput struct {
	ID    string `hcl:"id"`
	Sleep string `hcl:"sleep,optional"`
	Fail  bool   `hcl:"fail,optional"`
}

// Register registers the "record" action kind.
func (m *RecorderModule) Register(h *handlers.Handlers) {
	h.RegisterKind("record", func(ctx context.Context, spec *handlers.Spec) (task.Action, error) {
		input := new(recordInput)
		if err := spec.Decode(input); err != nil {
			return nil, err
		}
		var sleep time.Duration
		if input.Sleep != "" {
			d, err := time.ParseDuration(input.Sleep)
			if err != nil {
				return nil, err
			}
			sleep = d
		}
		return task.ActionFunc(func(ctx context.Context) error {
			start := time.Now()
			m.mu.Lock()
			m.order = append(m.order, input.ID)
			m.mu.Unlock()

			if sleep > 0 {
				select {
				case <-time.After(sleep):
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			m.mu.Lock()
			m.executionTimes[input.ID] = ExecutionRecord{Start: start, End: time.Now()}
			m.mu.Unlock()

			if input.Fail {
				return errors.New(input.ID + " failed")
			}
			return nil
		}), nil
	})
}

// Order returns the ids in the order their actions started.
func (m *RecorderModule) Order() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

// Count returns how many times the action with id ran.
func (m *RecorderModule) Count(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, got := range m.order {
		if got == id {
			n++
		}
	}
	return n
}

// Execution returns the timing of the action with id.
func (m *RecorderModule) Execution(id string) (ExecutionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.executionTimes[id]
	return rec, ok
}
