package fsutil

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Match is one path matched by a glob pattern.
type Match struct {
	// Path is the absolute path of the match.
	Path string
	// Rel is Path relative to the static base of the pattern that matched it,
	// e.g. "a/b.go" for pattern "src/**/*.go" matching "src/a/b.go".
	Rel string
}

// Resolve joins a relative path onto baseDir. Absolute paths are returned
// unchanged.
func Resolve(baseDir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}

// Glob expands doublestar patterns relative to baseDir. The result is sorted
// by path and contains each path once. A pattern without matches contributes
// nothing.
func Glob(baseDir string, patterns []string, opts ...doublestar.GlobOption) ([]Match, error) {
	seen := make(map[string]struct{})
	var matches []Match
	for _, pattern := range patterns {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern %q", pattern)
		}
		full := Resolve(baseDir, pattern)
		base, _ := doublestar.SplitPattern(filepath.ToSlash(full))
		base = filepath.FromSlash(base)

		paths, err := doublestar.FilepathGlob(full, opts...)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}
		for _, p := range paths {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}

			rel, err := filepath.Rel(base, p)
			if err != nil || rel == "." {
				rel = filepath.Base(p)
			}
			matches = append(matches, Match{Path: p, Rel: rel})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Path < matches[j].Path })
	return matches, nil
}

// GlobFiles is Glob restricted to regular files, returning only paths.
func GlobFiles(baseDir string, patterns []string) ([]string, error) {
	matches, err := Glob(baseDir, patterns, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = m.Path
	}
	return paths, nil
}

// HasMeta reports whether pattern contains glob metacharacters.
func HasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
