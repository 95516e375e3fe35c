package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"
)

// Loader is the interface for a format-specific task file loader.
type Loader interface {
	// Load reads every task file found under paths (files or directories)
	// and merges them into a single Model.
	Load(ctx context.Context, env *Environment, paths ...string) (*Model, error)
}

// Environment is what the application supplies to a Loader: the action
// kinds it can execute and the values expressions may refer to.
type Environment struct {
	// ActionKinds lists the block types accepted inside a task.
	ActionKinds []string
	// Namespaces are exposed to expressions as top-level objects, e.g. "env".
	Namespaces map[string]cty.Value
	// Variables override variable defaults by name.
	Variables map[string]string
}
