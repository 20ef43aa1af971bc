// Package llm wires catalog models to provider generator implementations.
package llm

import (
	"context"

	"github.com/fwojciec/sourcebook"
	"github.com/fwojciec/sourcebook/anthropic"
	"github.com/fwojciec/sourcebook/gemini"
	"github.com/fwojciec/sourcebook/ollama"
	"github.com/fwojciec/sourcebook/openai"
)

// Ensure interface compliance at compile time.
var _ sourcebook.GeneratorFactory = (*Factory)(nil)

// Factory builds provider-specific generators and validators. The model's
// catalog ID doubles as the provider-facing model name.
type Factory struct{}

// NewFactory creates a new Factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Generator returns a generator for the model.
func (f *Factory) Generator(model *sourcebook.AIModel, credential string) (sourcebook.Generator, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}

	switch model.Provider {
	case sourcebook.ProviderGemini:
		client, err := gemini.NewClient(context.Background(), credential)
		if err != nil {
			return nil, sourcebook.Errorf(sourcebook.EINTERNAL, "gemini: create client: %v", err)
		}
		return gemini.NewGenerator(client, model.ID), nil

	case sourcebook.ProviderOpenAI:
		return openai.NewGenerator(openai.Config{APIKey: credential, Model: model.ID})

	case sourcebook.ProviderAnthropic:
		return anthropic.NewGenerator(anthropic.Config{APIKey: credential, Model: model.ID})

	case sourcebook.ProviderOllama:
		return ollama.NewGenerator(ollama.Config{Host: credential, Model: model.ID})
	}

	return nil, sourcebook.Errorf(sourcebook.EINVALID, "unknown provider %q", model.Provider)
}

// Validator returns a credential validator for the provider.
func (f *Factory) Validator(provider sourcebook.Provider, credential string) (sourcebook.CredentialValidator, error) {
	switch provider {
	case sourcebook.ProviderGemini:
		client, err := gemini.NewClient(context.Background(), credential)
		if err != nil {
			return nil, sourcebook.Errorf(sourcebook.EINTERNAL, "gemini: create client: %v", err)
		}
		return gemini.NewValidator(client), nil

	case sourcebook.ProviderOpenAI:
		return openai.NewValidator(openai.Config{APIKey: credential})

	case sourcebook.ProviderAnthropic:
		return anthropic.NewValidator(anthropic.Config{APIKey: credential})

	case sourcebook.ProviderOllama:
		return ollama.NewValidator(ollama.Config{Host: credential})
	}

	return nil, sourcebook.Errorf(sourcebook.EINVALID, "unknown provider %q", provider)
}
