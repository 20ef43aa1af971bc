package sourcebook

// Provider identifies an AI provider backend.
type Provider string

// Providers.
const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
	ProviderOllama    Provider = "ollama"
)

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderOllama:
		return true
	}
	return false
}

// KeyBased reports whether the provider authenticates with an API key.
// Ollama is host-based: its credential is the server URL.
func (p Provider) KeyBased() bool {
	return p != ProviderOllama
}

// AIModel describes a model in the catalog.
type AIModel struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Provider Provider `json:"provider"`

	// ContextTokens bounds how much source material fits in a prompt.
	ContextTokens int `json:"contextTokens"`

	// Streaming reports whether the model supports incremental output.
	Streaming bool `json:"streaming"`

	// SponsoredKey is set on sponsored models that ship with a bundled
	// credential. It takes precedence over stored credentials.
	SponsoredKey string `json:"-"`
}

// Sponsored reports whether the model carries a bundled credential.
func (m *AIModel) Sponsored() bool {
	return m.SponsoredKey != ""
}

// Validate returns an error if the model contains invalid fields.
func (m *AIModel) Validate() error {
	if m.ID == "" {
		return Errorf(EINVALID, "model ID required")
	}
	if !m.Provider.Valid() {
		return Errorf(EINVALID, "unknown provider %q", m.Provider)
	}
	return nil
}

// ResolveCredential picks the credential for a model call: a sponsored
// model's bundled key wins, then the stored credential for the provider.
// Ollama models resolve to the configured host instead of a key. Returns
// EUNAUTHORIZED naming the provider when nothing is available.
func ResolveCredential(model *AIModel, stored, ollamaHost string) (string, error) {
	if model.Sponsored() {
		return model.SponsoredKey, nil
	}
	if model.Provider == ProviderOllama {
		if ollamaHost == "" {
			return "", Errorf(EUNAUTHORIZED, "no Ollama host configured")
		}
		return ollamaHost, nil
	}
	if stored != "" {
		return stored, nil
	}
	return "", Errorf(EUNAUTHORIZED, "no API key configured for provider %q", model.Provider)
}
