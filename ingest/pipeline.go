// Package ingest orchestrates the source lifecycle: extraction, splitting,
// asynchronous summary generation and notebook persistence.
package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sourcebook"
)

// Ensure Pipeline implements sourcebook.SourceService at compile time.
var _ sourcebook.SourceService = (*Pipeline)(nil)

// DefaultConcurrency bounds how many summary generations run at once.
const DefaultConcurrency = 4

// Pipeline implements the source lifecycle over a notebook aggregate. Every
// read-modify-write cycle for a notebook runs under a per-notebook lock;
// summary generation runs outside the lock and re-checks staleness before
// applying its results.
type Pipeline struct {
	Extractor   sourcebook.TextExtractor
	Fetcher     sourcebook.Fetcher
	Web         sourcebook.Extractor
	WebFallback sourcebook.Extractor
	Converter   sourcebook.Converter

	Factory     sourcebook.GeneratorFactory
	Credentials sourcebook.CredentialService
	Settings    sourcebook.SettingsService
	Notebooks   sourcebook.NotebookService
	Notifier    sourcebook.Notifier

	// Concurrency bounds parallel summary generation.
	// Defaults to DefaultConcurrency.
	Concurrency int

	// RetryDelays configures the backoff between generation attempts while
	// the provider is unavailable. Defaults to DefaultRetryDelays().
	RetryDelays []time.Duration

	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	tokens map[string]uint64
}

// lockNotebook acquires the write lock for a notebook, creating it on first
// use. The returned func releases the lock.
func (p *Pipeline) lockNotebook(id string) func() {
	p.mu.Lock()
	if p.locks == nil {
		p.locks = make(map[string]*sync.Mutex)
	}
	l, ok := p.locks[id]
	if !ok {
		l = &sync.Mutex{}
		p.locks[id] = l
	}
	p.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// bumpToken invalidates any in-flight generation for a source and returns
// the new token. A generation batch captures the token when it starts and
// may apply its result only while the token still matches.
func (p *Pipeline) bumpToken(sourceID string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tokens == nil {
		p.tokens = make(map[string]uint64)
	}
	p.tokens[sourceID]++
	return p.tokens[sourceID]
}

func (p *Pipeline) currentToken(sourceID string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tokens[sourceID]
}

// generatorFor resolves the credential for a model and builds its generator.
// Returns EUNAUTHORIZED naming the provider when no credential is available,
// without any network attempt.
func (p *Pipeline) generatorFor(ctx context.Context, model *sourcebook.AIModel) (sourcebook.Generator, error) {
	var stored string
	if model.Provider.KeyBased() && !model.Sponsored() {
		cred, err := p.Credentials.FindCredential(ctx, model.Provider)
		if err != nil && sourcebook.ErrorCode(err) != sourcebook.ENOTFOUND {
			return nil, err
		}
		if cred != nil {
			stored = cred.Value
		}
	}

	var ollamaHost string
	if model.Provider == sourcebook.ProviderOllama {
		settings, err := p.Settings.Settings(ctx)
		if err != nil {
			return nil, err
		}
		ollamaHost = settings.OllamaHost
	}

	credential, err := sourcebook.ResolveCredential(model, stored, ollamaHost)
	if err != nil {
		return nil, err
	}
	return p.Factory.Generator(model, credential)
}

func (p *Pipeline) notify(level sourcebook.NotificationLevel, message string) {
	if p.Notifier != nil {
		p.Notifier.Notify(level, message)
	}
}

// now returns the current time at the precision the store round-trips.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// hashContent fingerprints source content with xxhash.
func hashContent(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}
