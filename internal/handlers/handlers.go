// Package handlers maps action block types in task files to the Go code that
// builds executable actions from them.
package handlers

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/vk/taskgrid/internal/task"
	"github.com/zclconf/go-cty/cty"
)

// Spec is everything a Factory needs to build one action.
type Spec struct {
	// Task is the name of the task the action belongs to.
	Task string
	// Body is the undecoded action block.
	Body hcl.Body
	// EvalContext resolves var.*, env.* and functions inside Body.
	EvalContext *hcl.EvalContext
	// BaseDir is the directory relative paths resolve against.
	BaseDir string
	// Out receives anything the action prints.
	Out io.Writer
}

// Decode decodes the action body into target, a pointer to a struct with
// `hcl` tags.
func (s *Spec) Decode(target any) error {
	if diags := gohcl.DecodeBody(s.Body, s.EvalContext, target); diags.HasErrors() {
		return diags
	}
	return nil
}

// Factory builds a task.Action from an action block.
type Factory func(ctx context.Context, spec *Spec) (task.Action, error)

// Module is implemented by packages that contribute action kinds or
// expression namespaces.
type Module interface {
	Register(h *Handlers)
}

// Handlers holds all the registered action kinds and namespaces.
type Handlers struct {
	kinds      map[string]Factory
	namespaces map[string]cty.Value
}

// New creates and initializes a new Handlers instance.
func New() *Handlers {
	return &Handlers{
		kinds:      make(map[string]Factory),
		namespaces: make(map[string]cty.Value),
	}
}

// RegisterKind registers the factory for an action block type.
func (h *Handlers) RegisterKind(kind string, factory Factory) {
	if _, exists := h.kinds[kind]; exists {
		panic(fmt.Sprintf("action kind '%s' already registered", kind))
	}
	slog.Debug("Registering action kind.", "kind", kind)
	h.kinds[kind] = factory
}

// RegisterNamespace exposes val to expressions under name.
func (h *Handlers) RegisterNamespace(name string, val cty.Value) {
	if _, exists := h.namespaces[name]; exists {
		panic(fmt.Sprintf("namespace '%s' already registered", name))
	}
	slog.Debug("Registering namespace.", "name", name)
	h.namespaces[name] = val
}

// Kinds returns the registered action block types, sorted.
func (h *Handlers) Kinds() []string {
	kinds := make([]string, 0, len(h.kinds))
	for k := range h.kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Namespaces returns the registered namespaces.
func (h *Handlers) Namespaces() map[string]cty.Value {
	out := make(map[string]cty.Value, len(h.namespaces))
	for k, v := range h.namespaces {
		out[k] = v
	}
	return out
}

// Build creates the action for a block of the given kind.
func (h *Handlers) Build(ctx context.Context, kind string, spec *Spec) (task.Action, error) {
	factory, ok := h.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("no handler registered for action kind %q", kind)
	}
	action, err := factory(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("%s action of task %q: %w", kind, spec.Task, err)
	}
	return action, nil
}
