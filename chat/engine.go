// Package chat implements question answering over a notebook's sources.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/sourcebook"
)

var _ sourcebook.Asker = (*Engine)(nil)

// streamBuffer is the chunk channel capacity for streamed answers.
const streamBuffer = 16

// Engine answers questions over a notebook's sources: it assembles a
// numbered context block from the selected sources, calls the model, and
// records the exchange in the notebook transcript.
//
// Validation failures (blank question, unknown notebook or model) return
// errors with nothing appended. Once a question is accepted the exchange is
// durable: the user message persists first, and any later failure lands on
// the assistant message as IsError instead of failing the call.
type Engine struct {
	Factory     sourcebook.GeneratorFactory
	Credentials sourcebook.CredentialService
	Settings    sourcebook.SettingsService
	Notebooks   sourcebook.NotebookService
	Notifier    sourcebook.Notifier

	// Tokens measures source content against the model's context budget.
	// Defaults to sourcebook.TokenEstimator.
	Tokens sourcebook.TokenCounter

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Ask answers a question in a single round trip and returns the persisted
// assistant message.
func (e *Engine) Ask(ctx context.Context, req sourcebook.AskRequest) (*sourcebook.ChatMessage, error) {
	prep, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := e.appendMessage(ctx, prep.userMessage()); err != nil {
		return nil, err
	}

	transcript := NewTranscript(req.NotebookID)

	generator, err := e.generatorFor(ctx, prep.model)
	if err != nil {
		return e.failExchange(ctx, transcript, err)
	}

	text, err := generator.Generate(ctx, prep.prompt)
	if err != nil {
		return e.failExchange(ctx, transcript, err)
	}

	transcript.Append(text)
	msg := transcript.Complete(ExtractCitations(text, prep.sources))
	if err := e.appendMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// AskStream answers a question with incremental delivery. The returned
// answer's chunk channel closes when generation settles; Message then
// resolves to the assistant message as persisted.
func (e *Engine) AskStream(ctx context.Context, req sourcebook.AskRequest) (*sourcebook.Answer, error) {
	prep, err := e.prepare(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := e.appendMessage(ctx, prep.userMessage()); err != nil {
		return nil, err
	}

	answer := sourcebook.NewAnswer(streamBuffer)
	transcript := NewTranscript(req.NotebookID)

	go func() {
		generator, err := e.generatorFor(ctx, prep.model)
		if err != nil {
			e.settleFailure(ctx, answer, transcript, err)
			return
		}

		stream, err := generator.GenerateStream(ctx, prep.prompt)
		if err != nil {
			e.settleFailure(ctx, answer, transcript, err)
			return
		}

		for chunk := range stream.Chunks() {
			transcript.Append(chunk)
			if err := answer.Send(ctx, chunk); err != nil {
				e.settleFailure(ctx, answer, transcript, err)
				return
			}
		}
		if err := stream.Err(); err != nil {
			e.settleFailure(ctx, answer, transcript, err)
			return
		}

		msg := transcript.Complete(ExtractCitations(transcript.Content(), prep.sources))
		answer.Close(nil)
		if err := e.appendMessage(ctx, msg); err != nil {
			answer.Complete(nil, err)
			return
		}
		answer.Complete(msg, nil)
	}()

	return answer, nil
}

// preparation carries a validated request through the answer flow.
type preparation struct {
	notebookID string
	question   string
	model      *sourcebook.AIModel
	sources    []*sourcebook.Source
	prompt     string
}

func (p *preparation) userMessage() *sourcebook.ChatMessage {
	return &sourcebook.ChatMessage{
		NotebookID: p.notebookID,
		Role:       sourcebook.RoleUser,
		Content:    p.question,
	}
}

// prepare validates the request and assembles the prompt: resolve the model,
// load the notebook, pick the candidate sources and fit them to the model's
// context budget.
func (e *Engine) prepare(ctx context.Context, req sourcebook.AskRequest) (*preparation, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, sourcebook.Errorf(sourcebook.EINVALID, "question required")
	}

	model, err := e.Settings.FindModelByID(ctx, req.ModelID)
	if err != nil {
		return nil, err
	}

	notebook, err := e.Notebooks.FindNotebookByID(ctx, req.NotebookID)
	if err != nil {
		return nil, err
	}

	candidates := contextSources(notebook, req.SourceIDs)
	sources, err := e.fitBudget(ctx, candidates, model.ContextTokens)
	if err != nil {
		return nil, err
	}

	return &preparation{
		notebookID: req.NotebookID,
		question:   question,
		model:      model,
		sources:    sources,
		prompt:     sourcebook.BuildPrompt(sourcebook.PromptQuestion, sourcebook.FormatSources(sources), question),
	}, nil
}

// contextSources resolves the candidate sources for a question: the selected
// IDs in selection order, or all sources when the selection is empty, minus
// error-status sources.
func contextSources(notebook *sourcebook.Notebook, ids []string) []*sourcebook.Source {
	candidates := notebook.SelectSources(ids)
	kept := make([]*sourcebook.Source, 0, len(candidates))
	for _, src := range candidates {
		if src.Status == sourcebook.StatusError {
			continue
		}
		kept = append(kept, src)
	}
	return kept
}

// fitBudget trims whole sources from the end of the list until the formatted
// context fits the budget. The first source is always kept; content is never
// cut mid-source. A budget of zero disables trimming.
func (e *Engine) fitBudget(ctx context.Context, sources []*sourcebook.Source, budget int) ([]*sourcebook.Source, error) {
	if budget <= 0 {
		return sources, nil
	}

	counter := e.counter()
	total := 0
	for i, src := range sources {
		n, err := counter.CountTokens(ctx, sourcebook.FormatSources([]*sourcebook.Source{src}))
		if err != nil {
			return nil, err
		}
		total += n
		if total > budget && i > 0 {
			return sources[:i], nil
		}
	}
	return sources, nil
}

func (e *Engine) counter() sourcebook.TokenCounter {
	if e.Tokens != nil {
		return e.Tokens
	}
	return sourcebook.TokenEstimator{}
}

// generatorFor resolves the credential for a model and builds its generator.
// Returns EUNAUTHORIZED naming the provider when no credential is available,
// without any network attempt.
func (e *Engine) generatorFor(ctx context.Context, model *sourcebook.AIModel) (sourcebook.Generator, error) {
	var stored string
	if model.Provider.KeyBased() && !model.Sponsored() {
		cred, err := e.Credentials.FindCredential(ctx, model.Provider)
		if err != nil && sourcebook.ErrorCode(err) != sourcebook.ENOTFOUND {
			return nil, err
		}
		if cred != nil {
			stored = cred.Value
		}
	}

	var ollamaHost string
	if model.Provider == sourcebook.ProviderOllama {
		settings, err := e.Settings.Settings(ctx)
		if err != nil {
			return nil, err
		}
		ollamaHost = settings.OllamaHost
	}

	credential, err := sourcebook.ResolveCredential(model, stored, ollamaHost)
	if err != nil {
		return nil, err
	}
	return e.Factory.Generator(model, credential)
}

// failExchange settles a failed non-streaming exchange: the failure lands on
// a persisted IsError assistant message and is surfaced once.
func (e *Engine) failExchange(ctx context.Context, transcript *Transcript, cause error) (*sourcebook.ChatMessage, error) {
	e.notify(sourcebook.NotificationError, "Answer failed: "+sourcebook.ErrorMessage(cause))
	msg := transcript.Fail(cause)
	if err := e.appendMessage(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// settleFailure settles a failed streamed exchange: close the stream with
// the cause, persist the IsError message, release Message callers.
func (e *Engine) settleFailure(ctx context.Context, answer *sourcebook.Answer, transcript *Transcript, cause error) {
	e.notify(sourcebook.NotificationError, "Answer failed: "+sourcebook.ErrorMessage(cause))
	answer.Close(cause)
	msg := transcript.Fail(cause)
	if err := e.appendMessage(ctx, msg); err != nil {
		answer.Complete(nil, err)
		return
	}
	answer.Complete(msg, nil)
}

// appendMessage appends one message to the notebook transcript under the
// notebook lock. Persisting assigns the message its ID.
func (e *Engine) appendMessage(ctx context.Context, msg *sourcebook.ChatMessage) error {
	unlock := e.lockNotebook(msg.NotebookID)
	defer unlock()

	notebook, err := e.Notebooks.FindNotebookByID(ctx, msg.NotebookID)
	if err != nil {
		return err
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now()
	}
	notebook.Messages = append(notebook.Messages, msg)
	return e.Notebooks.SaveNotebook(ctx, notebook)
}

func (e *Engine) lockNotebook(id string) func() {
	e.mu.Lock()
	if e.locks == nil {
		e.locks = make(map[string]*sync.Mutex)
	}
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (e *Engine) notify(level sourcebook.NotificationLevel, message string) {
	if e.Notifier != nil {
		e.Notifier.Notify(level, message)
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
