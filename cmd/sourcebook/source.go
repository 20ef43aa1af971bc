package main

import (
	"fmt"

	"github.com/fwojciec/sourcebook"
)

// resolveSource finds a source in a loaded notebook by ID or name.
func resolveSource(notebook *sourcebook.Notebook, ref string) (*sourcebook.Source, error) {
	if src := notebook.SourceByID(ref); src != nil {
		return src, nil
	}

	var matches []*sourcebook.Source
	for _, src := range notebook.Sources {
		if src.Name == ref {
			matches = append(matches, src)
		}
	}
	if len(matches) == 0 {
		return nil, sourcebook.Errorf(sourcebook.ENOTFOUND, "source %q not found", ref)
	}
	if len(matches) > 1 {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "source name %q is ambiguous, use the ID", ref)
	}
	return matches[0], nil
}

// loadSource resolves a notebook reference and a source reference together.
func loadSource(deps *Dependencies, notebookRef, sourceRef string) (*sourcebook.Notebook, *sourcebook.Source, error) {
	resolved, err := resolveNotebook(deps, notebookRef)
	if err != nil {
		return nil, nil, err
	}
	notebook, err := deps.Notebooks.FindNotebookByID(deps.Ctx, resolved.ID)
	if err != nil {
		return nil, nil, err
	}
	source, err := resolveSource(notebook, sourceRef)
	if err != nil {
		return nil, nil, err
	}
	return notebook, source, nil
}

// Run executes the sources command.
func (c *SourcesCmd) Run(deps *Dependencies) error {
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

	if len(notebook.Sources) == 0 {
		fmt.Fprintln(deps.Stdout, "No sources found. Use 'sourcebook add' to add some.")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Sources for %s (%d total):\n\n", notebook.Title, len(notebook.Sources))
	for i, src := range notebook.Sources {
		fmt.Fprintf(deps.Stdout, "  %d. %s (%s) [%s]  %s\n", i+1, src.Name, src.Type, src.Status, src.ID)
		if src.Summary != nil && src.Summary.Summary != "" {
			fmt.Fprintf(deps.Stdout, "     %s\n", src.Summary.Summary)
		}
		if src.Summary != nil && src.Summary.Error != "" {
			fmt.Fprintf(deps.Stdout, "     %s\n", src.Summary.Error)
		}
	}

	return nil
}

// Run executes the source rename command.
func (c *SourceRenameCmd) Run(deps *Dependencies) error {
	notebook, source, err := loadSource(deps, c.Notebook, c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	if err := deps.Sources.RenameSource(deps.Ctx, notebook.ID, source.ID, c.Name); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Renamed source %q to %q\n", source.Name, c.Name)
	return nil
}

// Run executes the source delete command.
func (c *SourceDeleteCmd) Run(deps *Dependencies) error {
	notebook, source, err := loadSource(deps, c.Notebook, c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	if err := deps.Sources.DeleteSource(deps.Ctx, notebook.ID, source.ID); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted source %q\n", source.Name)
	return nil
}

// Run executes the source retry command.
func (c *SourceRetryCmd) Run(deps *Dependencies) error {
	notebook, source, err := loadSource(deps, c.Notebook, c.Source)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	retried, err := deps.Sources.RetrySource(deps.Ctx, notebook.ID, source.ID, c.Model)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	if retried.Status == sourcebook.StatusError {
		reason := "summary generation failed"
		if retried.Summary != nil && retried.Summary.Error != "" {
			reason = retried.Summary.Error
		}
		fmt.Fprintf(deps.Stdout, "Summary for %q failed again: %s\n", retried.Name, reason)
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Regenerated summary for %q\n", retried.Name)
	return nil
}
