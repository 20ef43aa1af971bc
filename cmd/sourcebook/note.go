package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/sourcebook"
)

// resolveNote finds a note in a loaded notebook by ID or title.
func resolveNote(notebook *sourcebook.Notebook, ref string) (*sourcebook.Note, error) {
	if note := notebook.NoteByID(ref); note != nil {
		return note, nil
	}

	var matches []*sourcebook.Note
	for _, note := range notebook.Notes {
		if note.Title == ref {
			matches = append(matches, note)
		}
	}
	if len(matches) == 0 {
		return nil, sourcebook.Errorf(sourcebook.ENOTFOUND, "note %q not found", ref)
	}
	if len(matches) > 1 {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "note title %q is ambiguous, use the ID", ref)
	}
	return matches[0], nil
}

// Run executes the note add command.
func (c *NoteAddCmd) Run(deps *Dependencies) error {
	resolved, err := resolveNotebook(deps, c.Notebook)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	notebook, err := deps.Notebooks.FindNotebookByID(deps.Ctx, resolved.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	note := &sourcebook.Note{
		Title:     c.Title,
		Content:   c.Content,
		CreatedAt: time.Now().UTC(),
	}
	if err := note.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	notebook.Notes = append(notebook.Notes, note)
	if err := deps.Notebooks.SaveNotebook(deps.Ctx, notebook); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added note %q\n", note.Title)
	return nil
}

// Run executes the note list command.
func (c *NoteListCmd) Run(deps *Dependencies) error {
	resolved, err := resolveNotebook(deps, c.Notebook)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	notebook, err := deps.Notebooks.FindNotebookByID(deps.Ctx, resolved.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	if len(notebook.Notes) == 0 {
		fmt.Fprintln(deps.Stdout, "No notes found. Use 'sourcebook note add' to create one.")
		return nil
	}

	for _, note := range notebook.Notes {
		fmt.Fprintf(deps.Stdout, "%s  %s\n", note.ID, note.Title)
	}

	return nil
}

// Run executes the note delete command.
func (c *NoteDeleteCmd) Run(deps *Dependencies) error {
	resolved, err := resolveNotebook(deps, c.Notebook)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	notebook, err := deps.Notebooks.FindNotebookByID(deps.Ctx, resolved.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	note, err := resolveNote(notebook, c.Note)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	notebook.RemoveNote(note.ID)
	if err := deps.Notebooks.SaveNotebook(deps.Ctx, notebook); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted note %q\n", note.Title)
	return nil
}
