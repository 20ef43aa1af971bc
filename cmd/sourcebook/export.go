package main

import (
	"fmt"

	"github.com/fwojciec/sourcebook"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
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

	dir, err := deps.Exporter.Export(deps.Ctx, notebook)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Exported %q to %s\n", notebook.Title, dir)
	return nil
}
