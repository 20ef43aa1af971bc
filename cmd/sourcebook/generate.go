package main

import (
	"fmt"

	"github.com/fwojciec/sourcebook"
)

// generateKinds maps CLI kind names to prompt kinds.
var generateKinds = map[string]sourcebook.PromptKind{
	"work-aid": sourcebook.PromptWorkAid,
	"faq":      sourcebook.PromptFAQ,
	"briefing": sourcebook.PromptBriefing,
	"timeline": sourcebook.PromptTimeline,
	"outline":  sourcebook.PromptOutline,
}

// Run executes the generate command.
func (c *GenerateCmd) Run(deps *Dependencies) error {
	resolved, err := resolveNotebook(deps, c.Notebook)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	req := sourcebook.ComposeRequest{
		NotebookID: resolved.ID,
		Kind:       generateKinds[c.Kind],
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

	text, err := deps.Composer.Compose(deps.Ctx, req)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sourcebook.ErrorMessage(err))
		return err
	}

	if req.Kind == sourcebook.PromptWorkAid {
		printWorkAid(deps, text)
		return nil
	}

	fmt.Fprintln(deps.Stdout, text)
	return nil
}

// printWorkAid renders a work aid as titled sections. A response that
// ignored the header contract is printed as-is.
func printWorkAid(deps *Dependencies, text string) {
	aid := sourcebook.ParseWorkAid(text)
	if aid.Summary == "" && aid.Highlights == "" && aid.Checklist == "" {
		fmt.Fprintln(deps.Stdout, text)
		return
	}

	fmt.Fprintf(deps.Stdout, "Summary\n\n%s\n\n", aid.Summary)
	fmt.Fprintf(deps.Stdout, "Key Highlights\n\n%s\n\n", aid.Highlights)
	fmt.Fprintf(deps.Stdout, "Checklist\n\n%s\n", aid.Checklist)
}
