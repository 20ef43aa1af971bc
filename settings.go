package sourcebook

import "context"

// Settings holds user-configurable options and the model catalog.
type Settings struct {
	// DefaultModel is the catalog ID used when no model is requested.
	DefaultModel string `json:"defaultModel"`

	// OllamaHost is the base URL of the local Ollama server.
	OllamaHost string `json:"ollamaHost"`

	Models []*AIModel `json:"models"`
}

// ModelByID returns the catalog model with the given ID, or nil if absent.
func (s *Settings) ModelByID(id string) *AIModel {
	for _, m := range s.Models {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// SettingsService provides access to user settings and the model catalog.
type SettingsService interface {
	// Settings returns the current settings.
	Settings(ctx context.Context) (*Settings, error)

	// UpdateSettings applies an update and persists it.
	UpdateSettings(ctx context.Context, upd SettingsUpdate) (*Settings, error)

	// FindModelByID retrieves a model from the catalog. An empty id
	// resolves to the default model. Returns ENOTFOUND if the model is not
	// in the catalog.
	FindModelByID(ctx context.Context, id string) (*AIModel, error)
}

// SettingsUpdate represents fields that can be updated in settings.
type SettingsUpdate struct {
	DefaultModel *string `json:"defaultModel"`
	OllamaHost   *string `json:"ollamaHost"`
}
