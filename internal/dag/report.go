package dag

import (
	"time"
)

// Report describes the outcome of one run.
type Report struct {
	RunID    string
	Target   string
	Duration time.Duration
	// Tasks lists every planned task in plan order.
	Tasks []TaskReport
}

// TaskReport is the outcome of a single task within a run.
type TaskReport struct {
	Name     string
	State    State
	Err      error
	Duration time.Duration
}

func newReport(runID string, plan *Plan, g *Graph, elapsed time.Duration) *Report {
	r := &Report{
		RunID:    runID,
		Target:   plan.Target,
		Duration: elapsed,
		Tasks:    make([]TaskReport, 0, len(plan.Order)),
	}
	for _, t := range plan.Order {
		n := g.nodes[t.Name]
		tr := TaskReport{Name: t.Name, State: n.getState(), Err: n.err}
		if !n.started.IsZero() && !n.finished.IsZero() {
			tr.Duration = n.finished.Sub(n.started)
		}
		r.Tasks = append(r.Tasks, tr)
	}
	return r
}

// Task returns the report entry for name.
func (r *Report) Task(name string) (TaskReport, bool) {
	for _, t := range r.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return TaskReport{}, false
}

// Count returns how many tasks ended in state s.
func (r *Report) Count(s State) int {
	count := 0
	for _, t := range r.Tasks {
		if t.State == s {
			count++
		}
	}
	return count
}
