package llm

import (
	"context"

	"github.com/fwojciec/sourcebook"
	"golang.org/x/time/rate"
)

var _ sourcebook.Generator = (*RateLimitedGenerator)(nil)

// RateLimitedGenerator wraps a Generator with a token bucket, spacing out
// API calls when many sources are summarized at once.
type RateLimitedGenerator struct {
	inner   sourcebook.Generator
	limiter *rate.Limiter
}

// NewRateLimitedGenerator creates a rate-limited wrapper allowing rps
// requests per second with the given burst.
func NewRateLimitedGenerator(inner sourcebook.Generator, rps float64, burst int) *RateLimitedGenerator {
	return &RateLimitedGenerator{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Generate waits for the rate limit, then delegates.
func (g *RateLimitedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return g.inner.Generate(ctx, prompt)
}

// GenerateStream waits for the rate limit, then delegates.
func (g *RateLimitedGenerator) GenerateStream(ctx context.Context, prompt string) (*sourcebook.Stream, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return g.inner.GenerateStream(ctx, prompt)
}

var _ sourcebook.GeneratorFactory = (*RateLimitedFactory)(nil)

// RateLimitedFactory wraps a GeneratorFactory so that every generator it
// builds shares one token bucket. Batch ingest builds a generator per run;
// a per-generator limiter would reset the budget each time.
type RateLimitedFactory struct {
	inner   sourcebook.GeneratorFactory
	limiter *rate.Limiter
}

// NewRateLimitedFactory creates a factory whose generators collectively
// allow rps requests per second with the given burst.
func NewRateLimitedFactory(inner sourcebook.GeneratorFactory, rps float64, burst int) *RateLimitedFactory {
	return &RateLimitedFactory{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Generator builds a generator through the inner factory and attaches the
// shared limiter.
func (f *RateLimitedFactory) Generator(model *sourcebook.AIModel, credential string) (sourcebook.Generator, error) {
	g, err := f.inner.Generator(model, credential)
	if err != nil {
		return nil, err
	}
	return &RateLimitedGenerator{inner: g, limiter: f.limiter}, nil
}

// Validator delegates to the inner factory; credential probes are one-off
// calls and are not limited.
func (f *RateLimitedFactory) Validator(provider sourcebook.Provider, credential string) (sourcebook.CredentialValidator, error) {
	return f.inner.Validator(provider, credential)
}
