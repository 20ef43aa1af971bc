package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/fwojciec/sourcebook"
)

// Run executes the add command.
func (c *AddCmd) Run(deps *Dependencies) error {
	notebook, err := resolveNotebook(deps, c.Notebook)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	switch {
	case c.URL != "":
		source, err := deps.Sources.AddURL(deps.Ctx, notebook.ID, c.URL, c.Model)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
			return err
		}
		printSource(deps, source)

	case c.Text != "":
		source, err := deps.Sources.AddText(deps.Ctx, notebook.ID, c.Name, c.Text, c.Model)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
			return err
		}
		printSource(deps, source)

	case len(c.Files) > 0:
		files := make([]*sourcebook.File, 0, len(c.Files))
		for _, path := range c.Files {
			data, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintf(deps.Stderr, "error: cannot read %s: %v\n", path, err)
				return err
			}
			files = append(files, &sourcebook.File{
				Name: filepath.Base(path),
				MIME: mime.TypeByExtension(filepath.Ext(path)),
				Data: data,
			})
		}

		sources, err := deps.Sources.AddFiles(deps.Ctx, notebook.ID, files, c.Model)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
			return err
		}
		for _, source := range sources {
			printSource(deps, source)
		}

	default:
		fmt.Fprintf(deps.Stderr, "error: nothing to add, pass files, --url or --text\n")
		return sourcebook.Errorf(sourcebook.EINVALID, "nothing to add")
	}

	return nil
}

func printSource(deps *Dependencies, source *sourcebook.Source) {
	fmt.Fprintf(deps.Stdout, "Added %q (%s) [%s]\n", source.Name, source.Type, source.Status)
}
