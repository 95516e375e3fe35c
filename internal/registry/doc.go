// Package registry holds the named tasks of a single task graph.
//
// A Registry is constructed explicitly and handed to the runner, so several
// independent graphs can live in one process. Registration is by name;
// prerequisite references stay strings until Validate or planning resolves
// them, at which point a dangling reference becomes a task.UnknownTaskError.
package registry
