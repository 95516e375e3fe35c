package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskgrid/internal/task"
)

func noop(context.Context) error { return nil }

func TestRegister(t *testing.T) {
	r := New()
	require.Zero(t, r.Len())

	r.Register("build", []string{"clean"}, task.ActionFunc(noop))
	r.Register("clean", nil, nil)

	assert.Equal(t, 2, r.Len())
	build, ok := r.Lookup("build")
	require.True(t, ok)
	assert.Equal(t, []string{"clean"}, build.Prerequisites)
	assert.False(t, build.IsGroup())

	clean, ok := r.Lookup("clean")
	require.True(t, ok)
	assert.True(t, clean.IsGroup())

	_, ok = r.Lookup("missing")
	assert.False(t, ok)
}

func TestRegister_OverwritesExistingName(t *testing.T) {
	r := New()
	r.Register("a", []string{"x"}, nil)
	r.RegisterTask(&task.Task{Name: "a", Description: "second", Prerequisites: []string{"y"}})

	a, ok := r.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "second", a.Description)
	assert.Equal(t, []string{"y"}, a.Prerequisites)
	assert.Equal(t, 1, r.Len())
}

func TestRegister_CopiesPrerequisites(t *testing.T) {
	r := New()
	deps := []string{"a"}
	r.Register("b", deps, nil)
	deps[0] = "changed"

	b, _ := r.Lookup("b")
	assert.Equal(t, []string{"a"}, b.Prerequisites)
}

func TestNamesAndTasksAreSorted(t *testing.T) {
	r := New()
	for _, name := range []string{"test", "build", "dist", "clean"} {
		r.Register(name, nil, nil)
	}

	assert.Equal(t, []string{"build", "clean", "dist", "test"}, r.Names())

	tasks := r.Tasks()
	require.Len(t, tasks, 4)
	assert.Equal(t, "build", tasks[0].Name)
	assert.Equal(t, "test", tasks[3].Name)
}

func TestIndependentRegistries(t *testing.T) {
	first, second := New(), New()
	first.Register("only-here", nil, nil)

	_, ok := second.Lookup("only-here")
	assert.False(t, ok)
}

func TestValidate(t *testing.T) {
	t.Run("all references resolve", func(t *testing.T) {
		r := New()
		r.Register("a", nil, nil)
		r.Register("b", []string{"a"}, nil)
		assert.NoError(t, r.Validate())
	})

	t.Run("reports every dangling reference", func(t *testing.T) {
		r := New()
		r.Register("dist", []string{"biuld", "dist:readme"}, nil)
		r.Register("test", []string{"test:unti"}, nil)
		r.Register("dist:readme", nil, nil)

		err := r.Validate()
		require.Error(t, err)
		require.ErrorIs(t, err, task.ErrUnknownTask)

		var unknown *task.UnknownTaskError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "biuld", unknown.Name)
		assert.Equal(t, "dist", unknown.RequiredBy)
		assert.Contains(t, err.Error(), `"test:unti"`)
	})
}
