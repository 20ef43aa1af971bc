package mock

import (
	"context"

	"github.com/fwojciec/sourcebook"
)

var (
	_ sourcebook.Generator           = (*Generator)(nil)
	_ sourcebook.CredentialValidator = (*CredentialValidator)(nil)
	_ sourcebook.GeneratorFactory    = (*GeneratorFactory)(nil)
)

// Generator is a mock implementation of sourcebook.Generator.
type Generator struct {
	GenerateFn       func(ctx context.Context, prompt string) (string, error)
	GenerateStreamFn func(ctx context.Context, prompt string) (*sourcebook.Stream, error)
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.GenerateFn(ctx, prompt)
}

func (g *Generator) GenerateStream(ctx context.Context, prompt string) (*sourcebook.Stream, error) {
	return g.GenerateStreamFn(ctx, prompt)
}

// StreamOf returns a closed stream that yields the given chunks, for wiring
// GenerateStreamFn in tests.
func StreamOf(chunks ...string) *sourcebook.Stream {
	stream := sourcebook.NewStream(len(chunks))
	for _, chunk := range chunks {
		_ = stream.Send(context.Background(), chunk)
	}
	stream.Close(nil)
	return stream
}

// FailedStreamOf is like StreamOf but settles with err after the chunks.
func FailedStreamOf(err error, chunks ...string) *sourcebook.Stream {
	stream := sourcebook.NewStream(len(chunks))
	for _, chunk := range chunks {
		_ = stream.Send(context.Background(), chunk)
	}
	stream.Close(err)
	return stream
}

// CredentialValidator is a mock implementation of sourcebook.CredentialValidator.
type CredentialValidator struct {
	ValidateCredentialFn func(ctx context.Context) error
}

func (v *CredentialValidator) ValidateCredential(ctx context.Context) error {
	return v.ValidateCredentialFn(ctx)
}

// GeneratorFactory is a mock implementation of sourcebook.GeneratorFactory.
type GeneratorFactory struct {
	GeneratorFn func(model *sourcebook.AIModel, credential string) (sourcebook.Generator, error)
	ValidatorFn func(provider sourcebook.Provider, credential string) (sourcebook.CredentialValidator, error)
}

func (f *GeneratorFactory) Generator(model *sourcebook.AIModel, credential string) (sourcebook.Generator, error) {
	return f.GeneratorFn(model, credential)
}

func (f *GeneratorFactory) Validator(provider sourcebook.Provider, credential string) (sourcebook.CredentialValidator, error) {
	return f.ValidatorFn(provider, credential)
}
