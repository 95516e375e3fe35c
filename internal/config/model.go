package config

import (
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// Model is the unified representation of all loaded task files.
type Model struct {
	// BaseDir is the directory relative paths in actions resolve against:
	// the first path given to the loader, or the directory of that file.
	BaseDir string
	// Files lists the task files that were loaded.
	Files []string
	// Tasks are in file order, then declaration order.
	Tasks []*Task
	// Variables holds the final value of every declared variable.
	Variables map[string]cty.Value
	// EvalContext is used to decode action bodies.
	EvalContext *hcl.EvalContext
}

// Task is the format-agnostic representation of a `task` block.
type Task struct {
	Name        string
	Description string
	DependsOn   []string
	// Sources and Generates drive the up-to-date check.
	Sources   []string
	Generates []string
	Actions   []*Action
	DeclRange hcl.Range
}

// Action is one action block inside a task, not yet decoded.
type Action struct {
	Kind      string
	Body      hcl.Body
	DeclRange hcl.Range
}

// Task returns the task called name.
func (m *Model) Task(name string) (*Task, bool) {
	for _, t := range m.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// TaskNames returns the names of all tasks, sorted.
func (m *Model) TaskNames() []string {
	names := make([]string, 0, len(m.Tasks))
	for _, t := range m.Tasks {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}
