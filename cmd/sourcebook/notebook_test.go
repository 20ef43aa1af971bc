package main_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/fwojciec/sourcebook"
	main "github.com/fwojciec/sourcebook/cmd/sourcebook"
	"github.com/fwojciec/sourcebook/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("creates a notebook", func(t *testing.T) {
		t.Parallel()

		var created *sourcebook.Notebook
		notebooks := &mock.NotebookService{
			CreateNotebookFn: func(_ context.Context, n *sourcebook.Notebook) error {
				n.ID = "nb-123"
				created = n
				return nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: stderr, Notebooks: notebooks}

		cmd := &main.NewCmd{Title: "Bread Research"}
		err := cmd.Run(deps)

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, "Bread Research", created.Title)
		assert.Contains(t, stdout.String(), `Created notebook "Bread Research" (nb-123)`)
		assert.Empty(t, stderr.String())
	})

	t.Run("reports a create failure", func(t *testing.T) {
		t.Parallel()

		notebooks := &mock.NotebookService{
			CreateNotebookFn: func(_ context.Context, n *sourcebook.Notebook) error {
				return sourcebook.Errorf(sourcebook.EINVALID, "notebook title required")
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: stderr, Notebooks: notebooks}

		cmd := &main.NewCmd{}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error: notebook title required")
		assert.Empty(t, stdout.String())
	})
}

func TestListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists notebooks", func(t *testing.T) {
		t.Parallel()

		notebooks := &mock.NotebookService{
			FindNotebooksFn: notebookFinder(
				&sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"},
				&sourcebook.Notebook{ID: "nb-2", Title: "Tax Papers"},
			),
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: notebooks}

		err := (&main.ListCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "nb-1  Bread Research")
		assert.Contains(t, stdout.String(), "nb-2  Tax Papers")
	})

	t.Run("suggests new when empty", func(t *testing.T) {
		t.Parallel()

		notebooks := &mock.NotebookService{FindNotebooksFn: notebookFinder()}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: notebooks}

		err := (&main.ListCmd{}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No notebooks found")
	})
}

func TestOpenCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("shows the notebook contents", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{
			ID:        "nb-1",
			Title:     "Bread Research",
			CreatedAt: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			Sources: []*sourcebook.Source{
				{ID: "s1", Name: "Starter Guide", Type: sourcebook.SourceTypeTXT, Status: sourcebook.StatusCompleted},
				{ID: "s2", Name: "Baking Notes", Type: sourcebook.SourceTypeURL, Status: sourcebook.StatusError},
			},
			Notes:    []*sourcebook.Note{{ID: "n1", Title: "Feeding Schedule"}},
			Todos:    []*sourcebook.TodoItem{{ID: "t1", Text: "Order bread flour", Done: true}},
			Messages: []*sourcebook.ChatMessage{{ID: "m1"}, {ID: "m2"}},
		}
		notebooks := &mock.NotebookService{
			FindNotebooksFn: notebookFinder(notebook),
			FindNotebookByIDFn: func(_ context.Context, id string) (*sourcebook.Notebook, error) {
				assert.Equal(t, "nb-1", id)
				return notebook, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: notebooks}

		err := (&main.OpenCmd{Notebook: "Bread Research"}).Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "Bread Research (nb-1)")
		assert.Contains(t, out, "Created 2026-01-05")
		assert.Contains(t, out, "Sources (2):")
		assert.Contains(t, out, "1. Starter Guide (txt) [completed]")
		assert.Contains(t, out, "2. Baking Notes (url) [error]")
		assert.Contains(t, out, "Notes (1):")
		assert.Contains(t, out, "Todo (1):")
		assert.Contains(t, out, "[x] Order bread flour")
		assert.Contains(t, out, "Messages: 2")
	})

	t.Run("reports an unknown notebook", func(t *testing.T) {
		t.Parallel()

		notebooks := &mock.NotebookService{FindNotebooksFn: notebookFinder()}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: stderr, Notebooks: notebooks}

		err := (&main.OpenCmd{Notebook: "missing"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, sourcebook.ENOTFOUND, sourcebook.ErrorCode(err))
		assert.Contains(t, stderr.String(), `error: notebook "missing" not found`)
	})

	t.Run("rejects an ambiguous title", func(t *testing.T) {
		t.Parallel()

		notebooks := &mock.NotebookService{
			FindNotebooksFn: notebookFinder(
				&sourcebook.Notebook{ID: "nb-1", Title: "Notes"},
				&sourcebook.Notebook{ID: "nb-2", Title: "Notes"},
			),
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Notebooks: notebooks}

		err := (&main.OpenCmd{Notebook: "Notes"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, sourcebook.EINVALID, sourcebook.ErrorCode(err))
		assert.Contains(t, stderr.String(), "ambiguous")
	})
}

func TestRenameCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("renames a notebook", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"}
		notebooks := &mock.NotebookService{
			FindNotebooksFn: notebookFinder(notebook),
			UpdateNotebookFn: func(_ context.Context, id string, upd sourcebook.NotebookUpdate) (*sourcebook.Notebook, error) {
				assert.Equal(t, "nb-1", id)
				require.NotNil(t, upd.Title)
				return &sourcebook.Notebook{ID: id, Title: *upd.Title}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: notebooks}

		err := (&main.RenameCmd{Notebook: "nb-1", Title: "Sourdough Research"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), `Renamed notebook "Bread Research" to "Sourdough Research"`)
	})
}

func TestDeleteCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("requires force", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr}

		err := (&main.DeleteCmd{Notebook: "nb-1"}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "--force")
	})

	t.Run("deletes with force", func(t *testing.T) {
		t.Parallel()

		deleted := ""
		notebooks := &mock.NotebookService{
			FindNotebooksFn: notebookFinder(&sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"}),
			DeleteNotebookFn: func(_ context.Context, id string) error {
				deleted = id
				return nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: notebooks}

		err := (&main.DeleteCmd{Notebook: "Bread Research", Force: true}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "nb-1", deleted)
		assert.Contains(t, stdout.String(), `Deleted notebook "Bread Research"`)
	})
}
