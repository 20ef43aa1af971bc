package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sourcebook"
)

// streamBuffer is the chunk buffer size for relayed streams.
const streamBuffer = 16

// Ensure the logging types implement their service interfaces.
var (
	_ sourcebook.Generator        = (*LoggingGenerator)(nil)
	_ sourcebook.GeneratorFactory = (*LoggingFactory)(nil)
)

// LoggingFactory wraps a GeneratorFactory so that every generator it
// produces logs its generations.
type LoggingFactory struct {
	next   sourcebook.GeneratorFactory
	logger *slog.Logger
}

// NewLoggingFactory creates a new LoggingFactory.
func NewLoggingFactory(next sourcebook.GeneratorFactory, logger *slog.Logger) *LoggingFactory {
	return &LoggingFactory{next: next, logger: logger}
}

// Generator returns a logging generator for the model.
func (f *LoggingFactory) Generator(model *sourcebook.AIModel, credential string) (sourcebook.Generator, error) {
	g, err := f.next.Generator(model, credential)
	if err != nil {
		return nil, err
	}
	return &LoggingGenerator{next: g, model: model.ID, logger: f.logger}, nil
}

// Validator delegates to the wrapped factory.
func (f *LoggingFactory) Validator(provider sourcebook.Provider, credential string) (sourcebook.CredentialValidator, error) {
	return f.next.Validator(provider, credential)
}

// LoggingGenerator wraps a Generator with generation logging.
type LoggingGenerator struct {
	next   sourcebook.Generator
	model  string
	logger *slog.Logger
}

// Generate delegates to the wrapped generator and logs the operation.
func (g *LoggingGenerator) Generate(ctx context.Context, prompt string) (text string, err error) {
	defer func(begin time.Time) {
		g.logger.Info("generate",
			"model", g.model,
			"prompt_chars", len(prompt),
			"response_chars", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return g.next.Generate(ctx, prompt)
}

// GenerateStream starts a generation on the wrapped generator and relays
// its chunks, logging once when the stream settles.
func (g *LoggingGenerator) GenerateStream(ctx context.Context, prompt string) (*sourcebook.Stream, error) {
	begin := time.Now()
	inner, err := g.next.GenerateStream(ctx, prompt)
	if err != nil {
		g.logger.Info("generate stream",
			"model", g.model,
			"prompt_chars", len(prompt),
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}
	out := sourcebook.NewStream(streamBuffer)
	go func() {
		var chunks, chars int
		var sendErr error
		for chunk := range inner.Chunks() {
			if sendErr != nil {
				// Keep draining so the producer is not blocked.
				continue
			}
			if err := out.Send(ctx, chunk); err != nil {
				sendErr = err
				continue
			}
			chunks++
			chars += len(chunk)
		}
		err := inner.Err()
		if sendErr != nil {
			err = sendErr
		}
		g.logger.Info("generate stream",
			"model", g.model,
			"prompt_chars", len(prompt),
			"chunks", chunks,
			"response_chars", chars,
			"duration", time.Since(begin),
			"err", err,
		)
		out.Close(err)
	}()
	return out, nil
}
