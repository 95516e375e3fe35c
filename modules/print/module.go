package print

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/taskgrid/internal/ctxlog"
	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/internal/task"
)

// Module implements the handlers.Module interface for this package.
type Module struct{}

// Input defines the arguments of a `print` block.
type Input struct {
	Message string `hcl:"message"`
}

// OnRunPrint writes the message to out, followed by a newline.
func OnRunPrint(ctx context.Context, out io.Writer, input *Input) error {
	ctxlog.FromContext(ctx).Debug("Printing message.")
	_, err := fmt.Fprintln(out, input.Message)
	return err
}

// Register registers the `print` action kind.
func (m *Module) Register(h *handlers.Handlers) {
	h.RegisterKind("print", func(ctx context.Context, spec *handlers.Spec) (task.Action, error) {
		input := new(Input)
		if err := spec.Decode(input); err != nil {
			return nil, err
		}
		return task.ActionFunc(func(ctx context.Context) error {
			return OnRunPrint(ctx, spec.Out, input)
		}), nil
	})
}
