package testutil

import "github.com/vk/taskgrid/internal/handlers"

// SimpleModule is a test helper for easily creating a mock module that
// registers a single action kind.
type SimpleModule struct {
	Kind    string
	Factory handlers.Factory
}

// Register implements the handlers.Module interface.
func (m *SimpleModule) Register(h *handlers.Handlers) {
	if m.Kind != "" && m.Factory != nil {
		h.RegisterKind(m.Kind, m.Factory)
	}
}
