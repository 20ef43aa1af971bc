package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/sourcebook"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	resolved, err := resolveNotebook(deps, c.Notebook)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	req := sourcebook.AskRequest{
		NotebookID: resolved.ID,
		Question:   c.Question,
		ModelID:    c.Model,
	}

	if len(c.Sources) > 0 {
		notebook, err := deps.Notebooks.FindNotebookByID(deps.Ctx, resolved.ID)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
			return err
		}
		for _, ref := range c.Sources {
			src, err := resolveSource(notebook, ref)
			if err != nil {
				fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
				return err
			}
			req.SourceIDs = append(req.SourceIDs, src.ID)
		}
	}

	if c.NoStream {
		return c.askOnce(deps, req)
	}
	return c.askStreaming(deps, req)
}

// askOnce waits for the complete answer. A settled exchange is a success
// even when the answer itself failed: the transcript records what happened.
func (c *AskCmd) askOnce(deps *Dependencies, req sourcebook.AskRequest) error {
	msg, err := deps.Asker.Ask(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	if msg.IsError {
		fmt.Fprintln(deps.Stderr, msg.Content)
		return nil
	}

	fmt.Fprintln(deps.Stdout, msg.Content)
	printCitations(deps.Stdout, msg.Citations)
	return nil
}

// askStreaming prints chunks as they arrive.
func (c *AskCmd) askStreaming(deps *Dependencies, req sourcebook.AskRequest) error {
	answer, err := deps.Asker.AskStream(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	printed := false
	for chunk := range answer.Chunks() {
		fmt.Fprint(deps.Stdout, chunk)
		printed = true
	}
	if printed {
		fmt.Fprintln(deps.Stdout)
	}

	msg, err := answer.Message(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	if cause := answer.Err(); cause != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(cause))
		return nil
	}

	printCitations(deps.Stdout, msg.Citations)
	return nil
}

func printCitations(w io.Writer, citations []sourcebook.Citation) {
	if len(citations) == 0 {
		return
	}

	fmt.Fprintln(w, "\nCited:")
	for _, c := range citations {
		if c.Quote != "" {
			fmt.Fprintf(w, "  - %s: %q\n", c.Title, c.Quote)
			continue
		}
		fmt.Fprintf(w, "  - %s\n", c.Title)
	}
}
