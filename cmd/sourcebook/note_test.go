package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fwojciec/sourcebook"
	main "github.com/fwojciec/sourcebook/cmd/sourcebook"
	"github.com/fwojciec/sourcebook/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noteTestNotebooks(t *testing.T, notebook *sourcebook.Notebook, saved **sourcebook.Notebook) *mock.NotebookService {
	t.Helper()
	return &mock.NotebookService{
		FindNotebooksFn: notebookFinder(notebook),
		FindNotebookByIDFn: func(_ context.Context, id string) (*sourcebook.Notebook, error) {
			return notebook, nil
		},
		SaveNotebookFn: func(_ context.Context, n *sourcebook.Notebook) error {
			if saved != nil {
				*saved = n
			}
			return nil
		},
	}
}

func TestNoteAddCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("adds a note", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"}
		var saved *sourcebook.Notebook

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: noteTestNotebooks(t, notebook, &saved)}

		cmd := &main.NoteAddCmd{Notebook: "nb-1", Title: "Feeding Schedule", Content: "Morning and evening."}
		err := cmd.Run(deps)

		require.NoError(t, err)
		require.NotNil(t, saved)
		require.Len(t, saved.Notes, 1)
		assert.Equal(t, "Feeding Schedule", saved.Notes[0].Title)
		assert.Equal(t, "Morning and evening.", saved.Notes[0].Content)
		assert.False(t, saved.Notes[0].CreatedAt.IsZero())
		assert.Contains(t, stdout.String(), `Added note "Feeding Schedule"`)
	})

	t.Run("rejects an untitled note", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Notebooks: noteTestNotebooks(t, notebook, nil)}

		err := (&main.NoteAddCmd{Notebook: "nb-1"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, sourcebook.EINVALID, sourcebook.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: note title required")
	})
}

func TestNoteListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists notes", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{
			ID:    "nb-1",
			Title: "Bread Research",
			Notes: []*sourcebook.Note{
				{ID: "n1", Title: "Feeding Schedule"},
				{ID: "n2", Title: "Flour Brands"},
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: noteTestNotebooks(t, notebook, nil)}

		err := (&main.NoteListCmd{Notebook: "Bread Research"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "n1  Feeding Schedule")
		assert.Contains(t, stdout.String(), "n2  Flour Brands")
	})

	t.Run("suggests note add when empty", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: noteTestNotebooks(t, notebook, nil)}

		err := (&main.NoteListCmd{Notebook: "nb-1"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No notes found")
	})
}

func TestNoteDeleteCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("deletes by title", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{
			ID:    "nb-1",
			Title: "Bread Research",
			Notes: []*sourcebook.Note{{ID: "n1", Title: "Feeding Schedule"}},
		}
		var saved *sourcebook.Notebook

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: noteTestNotebooks(t, notebook, &saved)}

		err := (&main.NoteDeleteCmd{Notebook: "nb-1", Note: "Feeding Schedule"}).Run(deps)

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Empty(t, saved.Notes)
		assert.Contains(t, stdout.String(), `Deleted note "Feeding Schedule"`)
	})

	t.Run("reports an unknown note", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Notebooks: noteTestNotebooks(t, notebook, nil)}

		err := (&main.NoteDeleteCmd{Notebook: "nb-1", Note: "missing"}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, sourcebook.ENOTFOUND, sourcebook.ErrorCode(err))
		assert.Contains(t, stderr.String(), `note "missing" not found`)
	})
}
