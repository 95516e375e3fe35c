package handlers

import (
	"bytes"
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/task"
	"github.com/zclconf/go-cty/cty"
)

func parseBody(t *testing.T, src string) hcl.Body {
	t.Helper()
	f, diags := hclsyntax.ParseConfig([]byte(src), "test.hcl", hcl.InitialPos)
	require.False(t, diags.HasErrors(), diags.Error())
	return f.Body
}

type echoModule struct{}

func (echoModule) Register(h *Handlers) {
	h.RegisterKind("echo", func(ctx context.Context, spec *Spec) (task.Action, error) {
		var in struct {
			Text string `hcl:"text"`
		}
		if err := spec.Decode(&in); err != nil {
			return nil, err
		}
		return task.ActionFunc(func(ctx context.Context) error {
			_, err := spec.Out.Write([]byte(in.Text))
			return err
		}), nil
	})
	h.RegisterNamespace("project", cty.ObjectVal(map[string]cty.Value{
		"name": cty.StringVal("taskgrid"),
	}))
}

func TestHandlers_RegisterAndBuild(t *testing.T) {
	h := New()
	echoModule{}.Register(h)

	assert.Equal(t, []string{"echo"}, h.Kinds())
	require.Contains(t, h.Namespaces(), "project")

	var out bytes.Buffer
	spec := &Spec{
		Task: "hello",
		Body: parseBody(t, `text = "hi ${project.name}"`),
		EvalContext: &hcl.EvalContext{
			Variables: h.Namespaces(),
		},
		Out: &out,
	}
	action, err := h.Build(context.Background(), "echo", spec)
	require.NoError(t, err)
	require.NoError(t, action.Start(context.Background()).Get())
	assert.Equal(t, "hi taskgrid", out.String())
}

func TestHandlers_BuildErrors(t *testing.T) {
	h := New()
	echoModule{}.Register(h)

	_, err := h.Build(context.Background(), "nope", &Spec{Task: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no handler registered for action kind "nope"`)

	_, err = h.Build(context.Background(), "echo", &Spec{Task: "x", Body: parseBody(t, `other = 1`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `echo action of task "x"`)
}

func TestHandlers_DuplicateRegistrationPanics(t *testing.T) {
	h := New()
	echoModule{}.Register(h)
	assert.Panics(t, func() { echoModule{}.Register(h) })
}
