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

func TestAskCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("streams the answer with citations", func(t *testing.T) {
		t.Parallel()

		var gotReq sourcebook.AskRequest
		asker := &mock.Asker{
			AskStreamFn: func(_ context.Context, req sourcebook.AskRequest) (*sourcebook.Answer, error) {
				gotReq = req
				answer := sourcebook.NewAnswer(4)
				go func() {
					_ = answer.Send(context.Background(), "Feed the starter ")
					_ = answer.Send(context.Background(), "twice a day.")
					answer.Close(nil)
					answer.Complete(&sourcebook.ChatMessage{
						Role:    sourcebook.RoleAssistant,
						Content: "Feed the starter twice a day.",
						Citations: []sourcebook.Citation{
							{Title: "Starter Guide", Quote: "feed it every twelve hours"},
						},
					}, nil)
				}()
				return answer, nil
			},
		}
		notebooks := &mock.NotebookService{
			FindNotebooksFn: notebookFinder(&sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"}),
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: stderr, Notebooks: notebooks, Asker: asker}

		cmd := &main.AskCmd{Notebook: "Bread Research", Question: "How often should I feed it?"}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, "nb-1", gotReq.NotebookID)
		assert.Equal(t, "How often should I feed it?", gotReq.Question)
		out := stdout.String()
		assert.Contains(t, out, "Feed the starter twice a day.\n")
		assert.Contains(t, out, "Cited:")
		assert.Contains(t, out, `- Starter Guide: "feed it every twelve hours"`)
		assert.Empty(t, stderr.String())
	})

	t.Run("streaming failure keeps the partial answer", func(t *testing.T) {
		t.Parallel()

		cause := sourcebook.Errorf(sourcebook.EUNAVAILABLE, "connection reset")
		asker := &mock.Asker{
			AskStreamFn: func(_ context.Context, req sourcebook.AskRequest) (*sourcebook.Answer, error) {
				answer := sourcebook.NewAnswer(4)
				go func() {
					_ = answer.Send(context.Background(), "The starter ")
					answer.Close(cause)
					answer.Complete(&sourcebook.ChatMessage{
						Role:    sourcebook.RoleAssistant,
						Content: "Generation failed: connection reset\n\nPartial answer:\nThe starter ",
						IsError: true,
					}, nil)
				}()
				return answer, nil
			},
		}
		notebooks := &mock.NotebookService{
			FindNotebooksFn: notebookFinder(&sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"}),
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: stderr, Notebooks: notebooks, Asker: asker}

		cmd := &main.AskCmd{Notebook: "nb-1", Question: "What now?"}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "The starter \n")
		assert.Contains(t, stderr.String(), "error: connection reset")
	})

	t.Run("restricts the question to selected sources", func(t *testing.T) {
		t.Parallel()

		notebook := &sourcebook.Notebook{
			ID:    "nb-1",
			Title: "Bread Research",
			Sources: []*sourcebook.Source{
				{ID: "s1", Name: "Starter Guide"},
				{ID: "s2", Name: "Baking Notes"},
			},
		}
		var gotReq sourcebook.AskRequest
		asker := &mock.Asker{
			AskFn: func(_ context.Context, req sourcebook.AskRequest) (*sourcebook.ChatMessage, error) {
				gotReq = req
				return &sourcebook.ChatMessage{Role: sourcebook.RoleAssistant, Content: "From the guide only."}, nil
			},
		}
		notebooks := &mock.NotebookService{
			FindNotebooksFn: notebookFinder(notebook),
			FindNotebookByIDFn: func(_ context.Context, id string) (*sourcebook.Notebook, error) {
				return notebook, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: notebooks, Asker: asker}

		cmd := &main.AskCmd{Notebook: "nb-1", Question: "What does the guide say?", Sources: []string{"Starter Guide"}, NoStream: true}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, []string{"s1"}, gotReq.SourceIDs)
		assert.Contains(t, stdout.String(), "From the guide only.")
	})

	t.Run("no-stream prints the answer with citations", func(t *testing.T) {
		t.Parallel()

		asker := &mock.Asker{
			AskFn: func(_ context.Context, req sourcebook.AskRequest) (*sourcebook.ChatMessage, error) {
				return &sourcebook.ChatMessage{
					Role:    sourcebook.RoleAssistant,
					Content: "Twice a day.",
					Citations: []sourcebook.Citation{
						{Title: "Starter Guide"},
					},
				}, nil
			},
		}
		notebooks := &mock.NotebookService{
			FindNotebooksFn: notebookFinder(&sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"}),
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Notebooks: notebooks, Asker: asker}

		cmd := &main.AskCmd{Notebook: "nb-1", Question: "How often?", NoStream: true}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Twice a day.")
		assert.Contains(t, stdout.String(), "  - Starter Guide\n")
	})

	t.Run("no-stream routes a failed answer to stderr", func(t *testing.T) {
		t.Parallel()

		asker := &mock.Asker{
			AskFn: func(_ context.Context, req sourcebook.AskRequest) (*sourcebook.ChatMessage, error) {
				return &sourcebook.ChatMessage{
					Role:    sourcebook.RoleAssistant,
					Content: "Generation failed: invalid API key",
					IsError: true,
				}, nil
			},
		}
		notebooks := &mock.NotebookService{
			FindNotebooksFn: notebookFinder(&sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"}),
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: stderr, Notebooks: notebooks, Asker: asker}

		cmd := &main.AskCmd{Notebook: "nb-1", Question: "How often?", NoStream: true}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Empty(t, stdout.String())
		assert.Contains(t, stderr.String(), "Generation failed: invalid API key")
	})

	t.Run("reports a rejected question", func(t *testing.T) {
		t.Parallel()

		asker := &mock.Asker{
			AskFn: func(_ context.Context, req sourcebook.AskRequest) (*sourcebook.ChatMessage, error) {
				return nil, sourcebook.Errorf(sourcebook.EINVALID, "question required")
			},
		}
		notebooks := &mock.NotebookService{
			FindNotebooksFn: notebookFinder(&sourcebook.Notebook{ID: "nb-1", Title: "Bread Research"}),
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Notebooks: notebooks, Asker: asker}

		cmd := &main.AskCmd{Notebook: "nb-1", Question: "", NoStream: true}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error: question required")
	})
}
