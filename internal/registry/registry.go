package registry

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/vk/taskgrid/internal/task"
)

// Registry holds all registered tasks for one task graph. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*task.Task
}

// New creates and initializes a new, empty Registry.
func New() *Registry {
	return &Registry{
		tasks: make(map[string]*task.Task),
	}
}

// Register inserts or replaces the task called name.
func (r *Registry) Register(name string, prerequisites []string, action task.Action) {
	r.RegisterTask(&task.Task{
		Name:          name,
		Prerequisites: prerequisites,
		Action:        action,
	})
}

// RegisterTask inserts or replaces t under t.Name. The registry keeps its own
// copy, so later changes to t are not observed.
func (r *Registry) RegisterTask(t *task.Task) {
	stored := *t
	stored.Prerequisites = append([]string(nil), t.Prerequisites...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tasks[t.Name]; exists {
		slog.Debug("Replacing registered task.", "name", t.Name)
	} else {
		slog.Debug("Registering task.", "name", t.Name, "prerequisites", stored.Prerequisites)
	}
	r.tasks[t.Name] = &stored
}

// Lookup returns the task called name.
func (r *Registry) Lookup(name string) (*task.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[name]
	return t, ok
}

// Names returns all registered task names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tasks returns all registered tasks sorted by name.
func (r *Registry) Tasks() []*task.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*task.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}
