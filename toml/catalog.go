package toml

import (
	"github.com/fwojciec/sourcebook"
)

// DefaultModelID is the catalog model used until the user picks another.
const DefaultModelID = "gemini-2.5-flash"

// sponsoredGeminiKey carries a bundled Gemini credential for sponsored
// builds, injected with
//
//	-ldflags "-X github.com/fwojciec/sourcebook/toml.sponsoredGeminiKey=..."
//
// Source builds carry none, so no model is sponsored.
var sponsoredGeminiKey string

// DefaultCatalog returns the built-in model catalog used to seed a fresh
// config file.
func DefaultCatalog() []*sourcebook.AIModel {
	return []*sourcebook.AIModel{
		{
			ID:            "gemini-2.5-flash",
			Name:          "Gemini 2.5 Flash",
			Provider:      sourcebook.ProviderGemini,
			ContextTokens: 1_000_000,
			Streaming:     true,
		},
		{
			ID:            "gemini-2.5-pro",
			Name:          "Gemini 2.5 Pro",
			Provider:      sourcebook.ProviderGemini,
			ContextTokens: 1_000_000,
			Streaming:     true,
		},
		{
			ID:            "gpt-4o",
			Name:          "GPT-4o",
			Provider:      sourcebook.ProviderOpenAI,
			ContextTokens: 128_000,
			Streaming:     true,
		},
		{
			ID:            "gpt-4o-mini",
			Name:          "GPT-4o mini",
			Provider:      sourcebook.ProviderOpenAI,
			ContextTokens: 128_000,
			Streaming:     true,
		},
		{
			ID:            "claude-3-5-sonnet-20241022",
			Name:          "Claude 3.5 Sonnet",
			Provider:      sourcebook.ProviderAnthropic,
			ContextTokens: 200_000,
			Streaming:     true,
		},
		{
			ID:            "claude-3-5-haiku-20241022",
			Name:          "Claude 3.5 Haiku",
			Provider:      sourcebook.ProviderAnthropic,
			ContextTokens: 200_000,
			Streaming:     true,
		},
		{
			ID:            "llama3.1",
			Name:          "Llama 3.1 (Ollama)",
			Provider:      sourcebook.ProviderOllama,
			ContextTokens: 8_192,
			Streaming:     true,
		},
	}
}

func defaultSettings() *sourcebook.Settings {
	models := DefaultCatalog()
	attachSponsoredKeys(models)
	return &sourcebook.Settings{
		DefaultModel: DefaultModelID,
		Models:       models,
	}
}

// attachSponsoredKeys applies build-time sponsored credentials to matching
// catalog entries. Sponsored keys live only in the binary, never in the
// config file.
func attachSponsoredKeys(models []*sourcebook.AIModel) {
	if sponsoredGeminiKey == "" {
		return
	}
	for _, m := range models {
		if m.ID == DefaultModelID {
			m.SponsoredKey = sponsoredGeminiKey
		}
	}
}
