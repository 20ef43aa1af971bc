package chat

import (
	"context"

	"github.com/fwojciec/sourcebook"
)

var _ sourcebook.Composer = (*Engine)(nil)

// Compose generates a standalone document from the notebook's sources. The
// material is selected and budget-trimmed exactly as for a question, but the
// result is returned directly instead of entering the transcript, so
// failures propagate as errors rather than settling on a message.
func (e *Engine) Compose(ctx context.Context, req sourcebook.ComposeRequest) (string, error) {
	if req.Kind == sourcebook.PromptQuestion {
		return "", sourcebook.Errorf(sourcebook.EINVALID, "kind %q requires a question", req.Kind)
	}

	model, err := e.Settings.FindModelByID(ctx, req.ModelID)
	if err != nil {
		return "", err
	}

	notebook, err := e.Notebooks.FindNotebookByID(ctx, req.NotebookID)
	if err != nil {
		return "", err
	}

	candidates := contextSources(notebook, req.SourceIDs)
	if len(candidates) == 0 {
		return "", sourcebook.Errorf(sourcebook.EINVALID, "notebook has no usable sources")
	}
	sources, err := e.fitBudget(ctx, candidates, model.ContextTokens)
	if err != nil {
		return "", err
	}

	generator, err := e.generatorFor(ctx, model)
	if err != nil {
		return "", err
	}

	prompt := sourcebook.BuildPrompt(req.Kind, sourcebook.FormatSources(sources), "")
	return generator.Generate(ctx, prompt)
}
