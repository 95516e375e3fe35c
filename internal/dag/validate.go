package dag

import (
	"errors"

	"github.com/vk/taskgrid/internal/registry"
)

// Validate checks a whole registry before anything runs: every prerequisite
// must be registered and the prerequisite relation must be acyclic. Dangling
// references and the first cycle found are reported together.
func Validate(reg *registry.Registry) error {
	refErr := reg.Validate()

	g := New()
	tasks := reg.Tasks()
	for _, t := range tasks {
		g.AddNode(t)
	}
	var errs []error
	if refErr != nil {
		errs = append(errs, refErr)
	}
	for _, t := range tasks {
		for _, dep := range t.Prerequisites {
			if _, ok := reg.Lookup(dep); !ok {
				continue
			}
			if err := g.AddEdge(dep, t.Name); err != nil {
				errs = append(errs, err)
				return errors.Join(errs...)
			}
		}
	}
	if err := g.DetectCycles(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
