// Package config defines the format-agnostic model of a task file, along
// with the Loader interface that turns files on disk into that model.
//
// The model carries task metadata already evaluated (names, descriptions,
// prerequisites, globs) and leaves action bodies undecoded, together with
// the evaluation context needed to decode them. Concrete loaders, such as
// the HCL one, live in separate packages.
package config
