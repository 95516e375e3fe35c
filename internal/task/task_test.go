package task

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_ResolvesOnce(t *testing.T) {
	f, resolve := NewFuture()

	first := errors.New("first")
	resolve(first)
	resolve(errors.New("second"))

	require.ErrorIs(t, f.Get(), first)
	require.ErrorIs(t, f.Get(), first, "a resolved future keeps its value")
}

func TestGo_RecoversPanic(t *testing.T) {
	f := Go(context.Background(), func(context.Context) error {
		panic("boom")
	})
	err := f.Get()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestSequence(t *testing.T) {
	t.Run("runs actions in order", func(t *testing.T) {
		var order []string
		record := func(name string) Action {
			return ActionFunc(func(context.Context) error {
				order = append(order, name)
				return nil
			})
		}

		err := Sequence(record("a"), record("b"), record("c")).Start(context.Background()).Get()
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, order)
	})

	t.Run("stops at first failure", func(t *testing.T) {
		boom := errors.New("boom")
		ran := false
		seq := Sequence(
			ActionFunc(func(context.Context) error { return boom }),
			ActionFunc(func(context.Context) error { ran = true; return nil }),
		)

		require.ErrorIs(t, seq.Start(context.Background()).Get(), boom)
		assert.False(t, ran)
	})

	t.Run("empty sequence is a grouping action", func(t *testing.T) {
		assert.Nil(t, Sequence())
	})
}

func TestTask_IsGroup(t *testing.T) {
	assert.True(t, (&Task{Name: "g"}).IsGroup())
	assert.False(t, (&Task{Name: "a", Action: ActionFunc(func(context.Context) error { return nil })}).IsGroup())
}
