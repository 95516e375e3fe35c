package exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"sort"
	"time"

	"github.com/google/shlex"
	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/fsutil"
	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/task"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Input defines the arguments of an `exec` block.
type Input struct {
	Command []string          `hcl:"command,optional"`
	Script  string            `hcl:"script,optional"`
	Dir     string            `hcl:"dir,optional"`
	Env     map[string]string `hcl:"env,optional"`
	Timeout string            `hcl:"timeout,optional"`
}

// Command is a fully resolved process invocation.
type Command struct {
	Argv    []string
	Dir     string
	Env     []string
	Timeout time.Duration
}

// NewCommand validates input and resolves it against baseDir.
func NewCommand(input *Input, baseDir string) (*Command, error) {
	if len(input.Command) > 0 && input.Script != "" {
		return nil, errors.New("only one of 'command' or 'script' may be set")
	}

	argv := input.Command
	if input.Script != "" {
		var err error
		argv, err = shlex.Split(input.Script)
		if err != nil {
			return nil, fmt.Errorf("failed to split script: %w", err)
		}
	}
	if len(argv) == 0 {
		return nil, errors.New("one of 'command' or 'script' is required")
	}

	c := &Command{
		Argv: argv,
		Dir:  baseDir,
		Env:  os.Environ(),
	}
	if input.Dir != "" {
		c.Dir = fsutil.Resolve(baseDir, input.Dir)
	}

	keys := make([]string, 0, len(input.Env))
	for k := range input.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c.Env = append(c.Env, k+"="+input.Env[k])
	}

	if input.Timeout != "" {
		d, err := time.ParseDuration(input.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout %q: %w", input.Timeout, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("timeout must be positive, got %s", d)
		}
		c.Timeout = d
	}
	return c, nil
}

// OnRunExec runs the command with both output streams written to out.
func OnRunExec(ctx context.Context, out io.Writer, c *Command) error {
	logger := ctxlog.FromContext(ctx)
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := osexec.CommandContext(ctx, c.Argv[0], c.Argv[1:]...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdout = out
	cmd.Stderr = out

	logger.Debug("Running command.", "argv", c.Argv, "dir", c.Dir)
	err := cmd.Run()
	if err == nil {
		return nil
	}

	if c.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("command %q timed out after %s", c.Argv[0], c.Timeout)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("command %q interrupted: %w", c.Argv[0], ctxErr)
	}
	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() >= 0 {
		return fmt.Errorf("command %q exited with code %d", c.Argv[0], exitErr.ExitCode())
	}
	return fmt.Errorf("command %q: %w", c.Argv[0], err)
}

// Register registers the `exec` action kind.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterKind("exec", func(ctx context.Context, spec *handlers.Spec) (task.Action, error) {
		input := new(Input)
		if err := spec.Decode(input); err != nil {
			return nil, err
		}
		c, err := NewCommand(input, spec.BaseDir)
		if err != nil {
			return nil, err
		}
		return task.ActionFunc(func(ctx context.Context) error {
			return OnRunExec(ctx, spec.Out, c)
		}), nil
	})
}
