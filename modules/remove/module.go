package remove

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/fsutil"
	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/task"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `remove` block.
type Input struct {
	Patterns []string `hcl:"patterns"`
}

// OnRunRemove deletes everything matching the patterns, recursively. A
// pattern that matches nothing is not an error. Nothing is removed if any
// match is the project directory or one of its ancestors.
func OnRunRemove(ctx context.Context, baseDir string, input *Input) error {
	logger := ctxlog.FromContext(ctx)

	matches, err := fsutil.Glob(baseDir, input.Patterns)
	if err != nil {
		return err
	}
	root := filepath.Clean(baseDir)
	for _, m := range matches {
		if contains(m.Path, root) {
			return fmt.Errorf("refusing to remove %s: it contains the project directory", m.Path)
		}
	}
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}
		logger.Debug("Removing path.", "path", m.Path)
		if err := os.RemoveAll(m.Path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", m.Path, err)
		}
	}
	logger.Debug("Remove finished.", "removed", len(matches))
	return nil
}

// contains reports whether child is parent or lies below it.
func contains(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Register registers the `remove` action kind.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterKind("remove", func(ctx context.Context, spec *handlers.Spec) (task.Action, error) {
		input := new(Input)
		if err := spec.Decode(input); err != nil {
			return nil, err
		}
		if len(input.Patterns) == 0 {
			return nil, errors.New("'patterns' must not be empty")
		}
		return task.ActionFunc(func(ctx context.Context) error {
			return OnRunRemove(ctx, spec.BaseDir, input)
		}), nil
	})
}
