package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/sourcebook"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AddFiles extracts the uploaded files, persists them as processing sources
// in a single write, generates summaries for all eligible sources
// concurrently and settles the batch with a second write. Every returned
// source is in a terminal state.
func (p *Pipeline) AddFiles(ctx context.Context, notebookID string, files []*sourcebook.File, modelID string) ([]*sourcebook.Source, error) {
	if len(files) == 0 {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "no files provided")
	}

	model, err := p.Settings.FindModelByID(ctx, modelID)
	if err != nil {
		return nil, err
	}

	var sources []*sourcebook.Source
	for _, file := range files {
		content, err := p.Extractor.ExtractText(ctx, file)
		if err != nil {
			return nil, err
		}
		sources = append(sources, fileSources(notebookID, file, content, model)...)
	}

	if err := p.ingest(ctx, notebookID, sources); err != nil {
		return nil, err
	}
	if err := p.generate(ctx, notebookID, sources, model); err != nil {
		return nil, err
	}
	return sources, nil
}

// AddURL fetches a web page, extracts its main content and adds the markdown
// as a source. Fetch and extraction failures still produce a source, carrying
// marker content and error status.
func (p *Pipeline) AddURL(ctx context.Context, notebookID, url, modelID string) (*sourcebook.Source, error) {
	if strings.TrimSpace(url) == "" {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "URL required")
	}

	model, err := p.Settings.FindModelByID(ctx, modelID)
	if err != nil {
		return nil, err
	}

	name, content := p.fetchURL(ctx, url)

	source := &sourcebook.Source{
		NotebookID:  notebookID,
		Name:        name,
		Type:        sourcebook.SourceTypeURL,
		Content:     content,
		ContentHash: hashContent(content),
		Status:      sourcebook.StatusProcessing,
	}

	if err := p.addOne(ctx, notebookID, source, model); err != nil {
		return nil, err
	}
	return source, nil
}

// AddText adds pasted text as a source.
func (p *Pipeline) AddText(ctx context.Context, notebookID, name, text, modelID string) (*sourcebook.Source, error) {
	if strings.TrimSpace(text) == "" {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "text content required")
	}
	if name == "" {
		name = "Pasted text"
	}

	model, err := p.Settings.FindModelByID(ctx, modelID)
	if err != nil {
		return nil, err
	}

	source := &sourcebook.Source{
		NotebookID:  notebookID,
		Name:        name,
		Type:        sourcebook.SourceTypeText,
		Content:     text,
		ContentHash: hashContent(text),
		Status:      sourcebook.StatusProcessing,
	}

	if err := p.addOne(ctx, notebookID, source, model); err != nil {
		return nil, err
	}
	return source, nil
}

// RetrySource re-runs summary generation for a source. The source re-enters
// processing state in its own write before generation starts.
func (p *Pipeline) RetrySource(ctx context.Context, notebookID, sourceID, modelID string) (*sourcebook.Source, error) {
	model, err := p.Settings.FindModelByID(ctx, modelID)
	if err != nil {
		return nil, err
	}

	source, err := p.markProcessing(ctx, notebookID, sourceID)
	if err != nil {
		return nil, err
	}

	if err := p.generate(ctx, notebookID, []*sourcebook.Source{source}, model); err != nil {
		return nil, err
	}
	return source, nil
}

// RenameSource changes a source's display name. Renaming does not invalidate
// an in-flight summary generation.
func (p *Pipeline) RenameSource(ctx context.Context, notebookID, sourceID, name string) error {
	if name == "" {
		return sourcebook.Errorf(sourcebook.EINVALID, "source name required")
	}

	unlock := p.lockNotebook(notebookID)
	defer unlock()

	notebook, err := p.Notebooks.FindNotebookByID(ctx, notebookID)
	if err != nil {
		return err
	}
	source := notebook.SourceByID(sourceID)
	if source == nil {
		return sourcebook.Errorf(sourcebook.ENOTFOUND, "source not found")
	}

	source.Name = name
	source.UpdatedAt = now()
	return p.Notebooks.SaveNotebook(ctx, notebook)
}

// DeleteSource removes a source from the notebook and invalidates any
// in-flight generation for it, so a late result cannot resurrect the source.
func (p *Pipeline) DeleteSource(ctx context.Context, notebookID, sourceID string) error {
	unlock := p.lockNotebook(notebookID)
	defer unlock()

	notebook, err := p.Notebooks.FindNotebookByID(ctx, notebookID)
	if err != nil {
		return err
	}
	if !notebook.RemoveSource(sourceID) {
		return sourcebook.Errorf(sourcebook.ENOTFOUND, "source not found")
	}

	p.bumpToken(sourceID)
	return p.Notebooks.SaveNotebook(ctx, notebook)
}

// fileSources builds the sources for one uploaded file. Content that exceeds
// the model's context budget is split into parts sharing an OriginalID;
// markers, placeholders and media content never split.
func fileSources(notebookID string, file *sourcebook.File, content string, model *sourcebook.AIModel) []*sourcebook.Source {
	typ := sourcebook.MapFileType(file.Name, file.MIME)

	newSource := func(name, text string) *sourcebook.Source {
		return &sourcebook.Source{
			NotebookID:  notebookID,
			Name:        name,
			Type:        typ,
			Content:     text,
			Data:        file.Data,
			ContentHash: hashContent(text),
			Status:      sourcebook.StatusProcessing,
		}
	}

	if typ.Media() || sourcebook.IsExtractionError(content) || sourcebook.IsMediaPlaceholder(content) {
		return []*sourcebook.Source{newSource(file.Name, content)}
	}

	parts := sourcebook.SplitContent(content, model.ContextTokens)
	if len(parts) == 1 {
		return []*sourcebook.Source{newSource(file.Name, content)}
	}

	originalID := uuid.New().String()
	sources := make([]*sourcebook.Source, len(parts))
	for i, part := range parts {
		source := newSource(fmt.Sprintf("%s (part %d of %d)", file.Name, i+1, len(parts)), part)
		source.Part = i + 1
		source.TotalParts = len(parts)
		source.OriginalID = originalID
		sources[i] = source
	}
	return sources
}

// addOne runs the ingest-then-generate cycle for a single source.
func (p *Pipeline) addOne(ctx context.Context, notebookID string, source *sourcebook.Source, model *sourcebook.AIModel) error {
	if err := p.ingest(ctx, notebookID, []*sourcebook.Source{source}); err != nil {
		return err
	}
	return p.generate(ctx, notebookID, []*sourcebook.Source{source}, model)
}

// ingest appends new sources to the notebook in one write. Persisting assigns
// the sources their IDs.
func (p *Pipeline) ingest(ctx context.Context, notebookID string, sources []*sourcebook.Source) error {
	unlock := p.lockNotebook(notebookID)
	defer unlock()

	notebook, err := p.Notebooks.FindNotebookByID(ctx, notebookID)
	if err != nil {
		return err
	}
	notebook.Sources = append(notebook.Sources, sources...)
	return p.Notebooks.SaveNotebook(ctx, notebook)
}

// markProcessing re-enters processing state for a retried source under the
// notebook lock and persists the transition.
func (p *Pipeline) markProcessing(ctx context.Context, notebookID, sourceID string) (*sourcebook.Source, error) {
	unlock := p.lockNotebook(notebookID)
	defer unlock()

	notebook, err := p.Notebooks.FindNotebookByID(ctx, notebookID)
	if err != nil {
		return nil, err
	}
	source := notebook.SourceByID(sourceID)
	if source == nil {
		return nil, sourcebook.Errorf(sourcebook.ENOTFOUND, "source not found")
	}
	if !source.Status.CanTransition(sourcebook.StatusProcessing) {
		return nil, sourcebook.Errorf(sourcebook.ECONFLICT, "source %q is still processing", source.Name)
	}

	source.Status = sourcebook.StatusProcessing
	source.Summary = nil
	source.UpdatedAt = now()
	if err := p.Notebooks.SaveNotebook(ctx, notebook); err != nil {
		return nil, err
	}
	return source, nil
}

// outcome carries one source through a generation batch: the staleness token
// captured at the start, and the terminal state to apply at the end.
type outcome struct {
	source  *sourcebook.Source
	token   uint64
	status  sourcebook.SourceStatus
	summary *sourcebook.DocumentSummary
	genErr  error
}

// generate produces summaries for a batch of processing sources and settles
// them with a single write. Media sources complete without a summary,
// extraction failures go straight to error status, and provider failures
// land on the source instead of failing the operation.
func (p *Pipeline) generate(ctx context.Context, notebookID string, sources []*sourcebook.Source, model *sourcebook.AIModel) error {
	outcomes := make([]*outcome, len(sources))
	var eligible []*outcome

	for i, source := range sources {
		o := &outcome{source: source, token: p.bumpToken(source.ID)}
		outcomes[i] = o

		switch {
		case source.Type.Media() || sourcebook.IsMediaPlaceholder(source.Content):
			o.status = sourcebook.StatusCompleted
		case sourcebook.IsExtractionError(source.Content):
			o.status = sourcebook.StatusError
		default:
			eligible = append(eligible, o)
		}
	}

	var resolveErr error
	if len(eligible) > 0 {
		resolveErr = p.generateAll(ctx, eligible, model)
	}

	if err := p.apply(ctx, notebookID, outcomes); err != nil {
		return err
	}

	// A resolution failure affects the whole batch and is surfaced once;
	// per-source provider failures are surfaced individually.
	if resolveErr != nil {
		p.notify(sourcebook.NotificationError, "Summary generation failed: "+sourcebook.ErrorMessage(resolveErr))
		return nil
	}
	for _, o := range outcomes {
		if o.genErr != nil {
			p.notify(sourcebook.NotificationError, fmt.Sprintf("Summary generation failed for %q: %s", o.source.Name, sourcebook.ErrorMessage(o.genErr)))
		}
	}
	return nil
}

// generateAll runs summary generation for the eligible outcomes with bounded
// concurrency. Workers never fail the group; each records its result on its
// outcome. Returns an error only when the generator itself cannot be built.
func (p *Pipeline) generateAll(ctx context.Context, eligible []*outcome, model *sourcebook.AIModel) error {
	generator, err := p.generatorFor(ctx, model)
	if err != nil {
		for _, o := range eligible {
			o.status = sourcebook.StatusError
			o.summary = sourcebook.FailedSummary(err)
			o.genErr = err
		}
		return err
	}

	concurrency := p.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	delays := p.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}

	g := new(errgroup.Group)
	g.SetLimit(concurrency)
	for _, o := range eligible {
		g.Go(func() error {
			prompt := sourcebook.BuildPrompt(sourcebook.PromptOverview, o.source.Content, "")
			raw, err := GenerateWithRetryDelays(ctx, generator, prompt, delays)
			if err != nil {
				o.status = sourcebook.StatusError
				o.summary = sourcebook.FailedSummary(err)
				o.genErr = err
				return nil
			}

			// A malformed response still completes the source; the parse
			// failure is recorded inside the summary.
			summary := sourcebook.ParseDocumentSummary(raw)
			summary.UpdatedAt = now()
			o.status = sourcebook.StatusCompleted
			o.summary = summary
			return nil
		})
	}
	_ = g.Wait()
	return nil
}

// apply settles a generation batch: one write under the notebook lock after
// all outcomes are in. Results whose token no longer matches, or whose source
// is gone from the notebook, are discarded. The caller's source copies are
// settled regardless, so returned sources are always terminal.
func (p *Pipeline) apply(ctx context.Context, notebookID string, outcomes []*outcome) error {
	unlock := p.lockNotebook(notebookID)
	defer unlock()

	notebook, err := p.Notebooks.FindNotebookByID(ctx, notebookID)
	if err != nil {
		return err
	}

	settledAt := now()
	changed := false
	for _, o := range outcomes {
		o.source.Status = o.status
		o.source.Summary = o.summary
		o.source.UpdatedAt = settledAt

		if p.currentToken(o.source.ID) != o.token {
			continue
		}
		stored := notebook.SourceByID(o.source.ID)
		if stored == nil {
			continue
		}
		stored.Status = o.status
		stored.Summary = o.summary
		stored.UpdatedAt = settledAt
		changed = true
	}

	if !changed {
		return nil
	}
	return p.Notebooks.SaveNotebook(ctx, notebook)
}

// fetchURL downloads and converts a page, returning a display name and the
// markdown content. Failures come back as marker content, never as errors.
func (p *Pipeline) fetchURL(ctx context.Context, url string) (name, content string) {
	html, err := p.Fetcher.Fetch(ctx, url)
	if err != nil {
		return url, sourcebook.MarkerURLError + " " + err.Error()
	}

	result, err := p.extractContent(html)
	if err != nil {
		return url, sourcebook.MarkerURLError + " " + err.Error()
	}
	name = result.Title
	if name == "" {
		name = url
	}

	markdown, err := p.Converter.Convert(result.ContentHTML)
	if err != nil {
		return name, sourcebook.MarkerURLError + " " + err.Error()
	}
	if strings.TrimSpace(markdown) == "" {
		return name, sourcebook.MarkerURLError + " page produced no readable content"
	}
	return name, markdown
}

// extractContent runs the primary content extractor with a fallback for pages
// it cannot handle or returns empty-handed from.
func (p *Pipeline) extractContent(html string) (*sourcebook.ExtractResult, error) {
	result, err := p.Web.Extract(html)
	if err == nil && strings.TrimSpace(result.ContentHTML) != "" {
		return result, nil
	}
	if p.WebFallback == nil {
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return p.WebFallback.Extract(html)
}
