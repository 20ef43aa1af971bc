package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/sourcebook"
	main "github.com/fwojciec/sourcebook/cmd/sourcebook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoAddCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("adds a todo item", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"}
		var saved *sourcebook.Notebook

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: noteTestNotebooks(t, notebook, &saved)}

		cmd := &main.TodoAddCmd{Notebook: "nb-1", Text: "Order bread flour"}
		err := cmd.Run(deps)

		require.NoError(t, err)
		require.NotNil(t, saved)
		require.Len(t, saved.Todos, 1)
		assert.Equal(t, "Order bread flour", saved.Todos[0].Text)
		assert.False(t, saved.Todos[0].Done)
		assert.False(t, saved.Todos[0].CreatedAt.IsZero())
		assert.Contains(t, stdout.String(), `Added todo "Order bread flour"`)
	})

	t.Run("rejects empty text", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Notebooks: noteTestNotebooks(t, notebook, nil)}

		err := (&main.TodoAddCmd{Notebook: "nb-1"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, sourcebook.EINVALID, sourcebook.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: todo text required")
	})
}

func TestTodoListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists items with their state", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{
			ID:    "nb-1",
			Title: "Bread Research",
			Todos: []*sourcebook.TodoItem{
				{ID: "t1", Text: "Order bread flour", Done: true},
				{ID: "t2", Text: "Feed the starter"},
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: noteTestNotebooks(t, notebook, nil)}

		err := (&main.TodoListCmd{Notebook: "Bread Research"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "t1  [x] Order bread flour")
		assert.Contains(t, stdout.String(), "t2  [ ] Feed the starter")
	})

	t.Run("suggests todo add when empty", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: noteTestNotebooks(t, notebook, nil)}

		err := (&main.TodoListCmd{Notebook: "nb-1"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No todo items found")
	})
}

func TestTodoDoneCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("marks an item done by text", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{
			ID:    "nb-1",
			Title: "Bread Research",
			Todos: []*sourcebook.TodoItem{{ID: "t1", Text: "Feed the starter"}},
		}
		var saved *sourcebook.Notebook

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: noteTestNotebooks(t, notebook, &saved)}

		err := (&main.TodoDoneCmd{Notebook: "nb-1", Todo: "Feed the starter"}).Run(deps)

		require.NoError(t, err)
		require.NotNil(t, saved)
		require.Len(t, saved.Todos, 1)
		assert.True(t, saved.Todos[0].Done)
		assert.Contains(t, stdout.String(), `Marked todo "Feed the starter" done`)
	})

	t.Run("reports an unknown item", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Notebooks: noteTestNotebooks(t, notebook, nil)}

		err := (&main.TodoDoneCmd{Notebook: "nb-1", Todo: "missing"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, sourcebook.ENOTFOUND, sourcebook.ErrorCode(err))
		assert.Contains(t, stderr.String(), `todo "missing" not found`)
	})

	t.Run("rejects ambiguous text", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{
			ID:    "nb-1",
			Title: "Bread Research",
			Todos: []*sourcebook.TodoItem{
				{ID: "t1", Text: "Feed the starter"},
				{ID: "t2", Text: "Feed the starter"},
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Notebooks: noteTestNotebooks(t, notebook, nil)}

		err := (&main.TodoDoneCmd{Notebook: "nb-1", Todo: "Feed the starter"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, sourcebook.EINVALID, sourcebook.ErrorCode(err))
		assert.Contains(t, stderr.String(), "ambiguous")
	})
}

func TestTodoDeleteCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("deletes by id", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{
			ID:    "nb-1",
			Title: "Bread Research",
			Todos: []*sourcebook.TodoItem{{ID: "t1", Text: "Order bread flour"}},
		}
		var saved *sourcebook.Notebook

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: noteTestNotebooks(t, notebook, &saved)}

		err := (&main.TodoDeleteCmd{Notebook: "nb-1", Todo: "t1"}).Run(deps)

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Empty(t, saved.Todos)
		assert.Contains(t, stdout.String(), `Deleted todo "Order bread flour"`)
	})
}
