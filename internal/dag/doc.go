// Package dag is the execution layer of taskgrid. It resolves a requested
// task into a Plan (the transitive closure of its prerequisites in
// topological order), builds a Graph of the planned tasks, and executes the
// graph with a pool of workers.
//
// Guarantees of a run:
//   - every prerequisite of a task finishes before the task's action starts;
//   - each distinct task runs at most once, however many paths reach it;
//   - a failing task stops the run, and none of its dependents start;
//   - planning errors (unknown names, cycles) surface before any action runs.
//
// With a single worker tasks run one at a time in a deterministic order:
// ready tasks are taken in Plan order, and tasks unlocked by a finished task
// follow in name order. Extra workers only let tasks with no dependency
// relation overlap.
package dag
