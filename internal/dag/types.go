package dag

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/taskgrid/internal/task"
)

// Graph is a collection of nodes and their dependencies, representing a DAG.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by task name.
	nodes map[string]*node
	// order is the insertion order of nodes, used for deterministic scans.
	order []string
}

// node represents a single vertex in the graph. It is un-exported to
// enforce interaction with the graph via the public API (using task names),
// not by direct struct manipulation.
type node struct {
	id   string
	task *task.Task
	// deps holds the set of nodes that this node depends on (predecessors).
	deps map[string]*node
	// dependents holds the set of nodes that depend on this node (successors).
	dependents map[string]*node

	// depCount is the number of unmet dependencies.
	depCount atomic.Int32
	// state is the node's current State, managed atomically.
	state atomic.Int32
	// finishOnce ensures a node is settled, and counted as settled, exactly once.
	finishOnce sync.Once

	// The fields below are written by the settling goroutine before the
	// run's WaitGroup is released and read only after it.
	err      error
	started  time.Time
	finished time.Time
}

// State is the execution state of a task within one run.
type State int32

const (
	// Pending indicates the task is waiting for its prerequisites.
	Pending State = iota
	// Running indicates the task's action is in progress.
	Running
	// Done indicates the task completed successfully.
	Done
	// UpToDate indicates the task's action declared nothing needed doing.
	UpToDate
	// Failed indicates the task's action resolved with an error.
	Failed
	// Skipped indicates the task never started because an upstream task
	// failed or the run was cancelled.
	Skipped
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Done:
		return "done"
	case UpToDate:
		return "up-to-date"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Completed reports whether dependents may proceed after this state.
func (s State) Completed() bool {
	return s == Done || s == UpToDate
}

func (n *node) setState(s State) {
	n.state.Store(int32(s))
}

func (n *node) getState() State {
	return State(n.state.Load())
}
