package copy

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	cp "github.com/otiai10/copy"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/fsutil"
	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/task"
	"golang.org/x/sync/errgroup"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `copy` block.
type Input struct {
	Sources     []string `hcl:"sources"`
	Destination string   `hcl:"destination"`
	Flatten     bool     `hcl:"flatten,optional"`
}

// entry is one source path and where it goes.
type entry struct {
	src, dst string
}

// plan expands the sources into copy entries. Patterns with metacharacters
// match files only; a literal path may name a directory and must exist.
func plan(baseDir string, input *Input) ([]entry, error) {
	dest := fsutil.Resolve(baseDir, input.Destination)

	var entries []entry
	targets := make(map[string]string)
	for _, pattern := range input.Sources {
		var opts []doublestar.GlobOption
		if fsutil.HasMeta(pattern) {
			opts = append(opts, doublestar.WithFilesOnly())
		} else if _, err := os.Stat(fsutil.Resolve(baseDir, pattern)); err != nil {
			return nil, fmt.Errorf("source %q: %w", pattern, err)
		}

		matches, err := fsutil.Glob(baseDir, []string{pattern}, opts...)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			rel := m.Rel
			if input.Flatten {
				rel = filepath.Base(m.Path)
			}
			dst := filepath.Join(dest, rel)
			if prev, dup := targets[dst]; dup {
				if prev == m.Path {
					continue
				}
				return nil, fmt.Errorf("both %s and %s would be copied to %s", prev, m.Path, dst)
			}
			targets[dst] = m.Path
			entries = append(entries, entry{src: m.Path, dst: dst})
		}
	}
	return entries, nil
}

// OnRunCopy copies every matched source into the destination directory.
func OnRunCopy(ctx context.Context, baseDir string, input *Input) error {
	logger := ctxlog.FromContext(ctx)

	entries, err := plan(baseDir, input)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, e := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			logger.Debug("Copying.", "from", e.src, "to", e.dst)
			if err := cp.Copy(e.src, e.dst); err != nil {
				return fmt.Errorf("failed to copy %s: %w", e.src, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Debug("Copy finished.", "copied", len(entries))
	return nil
}

// Register registers the `copy` action kind.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterKind("copy", func(ctx context.Context, spec *handlers.Spec) (task.Action, error) {
		input := new(Input)
		if err := spec.Decode(input); err != nil {
			return nil, err
		}
		if len(input.Sources) == 0 {
			return nil, errors.New("'sources' must not be empty")
		}
		if input.Destination == "" {
			return nil, errors.New("'destination' must not be empty")
		}
		return task.ActionFunc(func(ctx context.Context) error {
			return OnRunCopy(ctx, spec.BaseDir, input)
		}), nil
	})
}
