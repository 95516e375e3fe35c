package registry

import (
	"errors"

	"github.com/vk/taskgrid/internal/task"
)

// Validate checks that every prerequisite refers to a registered task. All
// dangling references are reported at once, in task name order.
func (r *Registry) Validate() error {
	var errs []error
	for _, t := range r.Tasks() {
		for _, dep := range t.Prerequisites {
			if _, ok := r.Lookup(dep); !ok {
				errs = append(errs, &task.UnknownTaskError{Name: dep, RequiredBy: t.Name})
			}
		}
	}
	return errors.Join(errs...)
}
