package dag

import (
	"github.com/vk/taskgrid/internal/registry"
	"github.com/vk/taskgrid/internal/task"
)

// Plan is the resolved execution plan for one requested task.
type Plan struct {
	// Target is the requested task name.
	Target string
	// Order lists the target and all of its transitive prerequisites, each
	// exactly once, with every task after all of its prerequisites. The
	// target is always last.
	Order []*task.Task
}

// NewPlan resolves name against reg by depth-first traversal of the
// prerequisite links. Prerequisites are visited in declaration order, so the
// resulting order is deterministic.
func NewPlan(reg *registry.Registry, name string) (*Plan, error) {
	if _, ok := reg.Lookup(name); !ok {
		return nil, &task.UnknownTaskError{Name: name}
	}

	p := &Plan{Target: name}
	visited := make(map[string]bool)
	onStack := make(map[string]int)
	var stack []string

	var visit func(name, requiredBy string) error
	visit = func(name, requiredBy string) error {
		if visited[name] {
			return nil
		}
		if idx, ok := onStack[name]; ok {
			path := append(append([]string(nil), stack[idx:]...), name)
			return &task.CyclicDependencyError{Path: path}
		}
		t, ok := reg.Lookup(name)
		if !ok {
			return &task.UnknownTaskError{Name: name, RequiredBy: requiredBy}
		}

		onStack[name] = len(stack)
		stack = append(stack, name)
		for _, dep := range t.Prerequisites {
			if err := visit(dep, name); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		delete(onStack, name)

		visited[name] = true
		p.Order = append(p.Order, t)
		return nil
	}

	if err := visit(name, ""); err != nil {
		return nil, err
	}
	return p, nil
}

// Names returns the task names of the plan in execution order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Order))
	for i, t := range p.Order {
		names[i] = t.Name
	}
	return names
}

// Graph builds the dependency graph of the planned tasks with dependency
// counters initialised for execution.
func (p *Plan) Graph() (*Graph, error) {
	g := New()
	for _, t := range p.Order {
		g.AddNode(t)
	}
	for _, t := range p.Order {
		for _, dep := range t.Prerequisites {
			if err := g.AddEdge(dep, t.Name); err != nil {
				return nil, err
			}
		}
	}
	for _, n := range g.nodes {
		n.depCount.Store(int32(len(n.deps)))
	}
	return g, nil
}
