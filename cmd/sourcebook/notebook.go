package main

import (
	"fmt"

	"github.com/fwojciec/sourcebook"
)

// resolveNotebook finds a notebook by ID or title. Child collections are not
// loaded.
func resolveNotebook(deps *Dependencies, ref string) (*sourcebook.Notebook, error) {
	notebooks, err := deps.Notebooks.FindNotebooks(deps.Ctx, sourcebook.NotebookFilter{ID: &ref})
	if err != nil {
		return nil, err
	}
	if len(notebooks) == 1 {
		return notebooks[0], nil
	}

	notebooks, err = deps.Notebooks.FindNotebooks(deps.Ctx, sourcebook.NotebookFilter{Title: &ref})
	if err != nil {
		return nil, err
	}
	if len(notebooks) == 0 {
		return nil, sourcebook.Errorf(sourcebook.ENOTFOUND, "notebook %q not found", ref)
	}
	if len(notebooks) > 1 {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "notebook title %q is ambiguous, use the ID", ref)
	}
	return notebooks[0], nil
}

// Run executes the new command.
func (c *NewCmd) Run(deps *Dependencies) error {
	notebook := &sourcebook.Notebook{Title: c.Title}
	if err := deps.Notebooks.CreateNotebook(deps.Ctx, notebook); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Created notebook %q (%s)\n", notebook.Title, notebook.ID)
	return nil
}

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	notebooks, err := deps.Notebooks.FindNotebooks(deps.Ctx, sourcebook.NotebookFilter{})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	if len(notebooks) == 0 {
		fmt.Fprintln(deps.Stdout, "No notebooks found. Use 'sourcebook new' to create one.")
		return nil
	}

	for _, n := range notebooks {
		fmt.Fprintf(deps.Stdout, "%s  %s\n", n.ID, n.Title)
	}

	return nil
}

// Run executes the open command.
func (c *OpenCmd) Run(deps *Dependencies) error {
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

	fmt.Fprintf(deps.Stdout, "%s (%s)\n", notebook.Title, notebook.ID)
	fmt.Fprintf(deps.Stdout, "Created %s\n", notebook.CreatedAt.Format("2006-01-02"))

	if len(notebook.Sources) > 0 {
		fmt.Fprintf(deps.Stdout, "\nSources (%d):\n", len(notebook.Sources))
		for i, src := range notebook.Sources {
			fmt.Fprintf(deps.Stdout, "  %d. %s (%s) [%s]\n", i+1, src.Name, src.Type, src.Status)
		}
	}

	if len(notebook.Notes) > 0 {
		fmt.Fprintf(deps.Stdout, "\nNotes (%d):\n", len(notebook.Notes))
		for _, note := range notebook.Notes {
			fmt.Fprintf(deps.Stdout, "  - %s\n", note.Title)
		}
	}

	if len(notebook.Todos) > 0 {
		fmt.Fprintf(deps.Stdout, "\nTodo (%d):\n", len(notebook.Todos))
		for _, todo := range notebook.Todos {
			mark := " "
			if todo.Done {
				mark = "x"
			}
			fmt.Fprintf(deps.Stdout, "  [%s] %s\n", mark, todo.Text)
		}
	}

	if len(notebook.Messages) > 0 {
		fmt.Fprintf(deps.Stdout, "\nMessages: %d\n", len(notebook.Messages))
	}

	return nil
}

// Run executes the rename command.
func (c *RenameCmd) Run(deps *Dependencies) error {
	notebook, err := resolveNotebook(deps, c.Notebook)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	updated, err := deps.Notebooks.UpdateNotebook(deps.Ctx, notebook.ID, sourcebook.NotebookUpdate{Title: &c.Title})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Renamed notebook %q to %q\n", notebook.Title, updated.Title)
	return nil
}

// Run executes the delete command.
func (c *DeleteCmd) Run(deps *Dependencies) error {
	if !c.Force {
		fmt.Fprintf(deps.Stderr, "error: use --force to confirm deletion\n")
		return sourcebook.Errorf(sourcebook.EINVALID, "use --force to confirm deletion")
	}

	notebook, err := resolveNotebook(deps, c.Notebook)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	if err := deps.Notebooks.DeleteNotebook(deps.Ctx, notebook.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted notebook %q\n", notebook.Title)
	return nil
}
