package app

import (
	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/modules/copy"
	"github.com/vk/taskgrid/modules/env_vars"
	"github.com/vk/taskgrid/modules/exec"
	"github.com/vk/taskgrid/modules/print"
	"github.com/vk/taskgrid/modules/remove"
)

// CoreModules returns the definitive list of all modules that are compiled
// into the taskgrid binary.
func CoreModules() []handlers.Module {
	return []handlers.Module{
		&env_vars.Module{},
		&exec.Module{},
		&remove.Module{},
		&copy.Module{},
		&print.Module{},
	}
}
