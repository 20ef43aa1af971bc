// Package toml persists user settings and the model catalog as a TOML file
// in the user's config directory.
package toml

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/sourcebook"
	"github.com/pelletier/go-toml/v2"
)

var _ sourcebook.SettingsService = (*SettingsService)(nil)

// fileSettings is the on-disk shape. Sponsored credentials never persist;
// they are attached from build-time injection on load.
type fileSettings struct {
	DefaultModel string      `toml:"default_model"`
	OllamaHost   string      `toml:"ollama_host,omitempty"`
	Models       []fileModel `toml:"models,omitempty"`
}

type fileModel struct {
	ID            string `toml:"id"`
	Name          string `toml:"name"`
	Provider      string `toml:"provider"`
	ContextTokens int    `toml:"context_tokens"`
	Streaming     bool   `toml:"streaming"`
}

// SettingsService is a file-based implementation of
// sourcebook.SettingsService. Settings live in a TOML file seeded with the
// built-in model catalog on first run; every update persists immediately.
type SettingsService struct {
	mu       sync.RWMutex
	filePath string
	settings *sourcebook.Settings
}

// NewSettingsService creates a settings store under configDir, creating the
// directory and seeding the config file if needed. An empty configDir
// defaults to ~/.sourcebook.
func NewSettingsService(configDir string) (*SettingsService, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".sourcebook")
	}
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return nil, err
	}

	s := &SettingsService{
		filePath: filepath.Join(configDir, "config.toml"),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the config file path.
func (s *SettingsService) Path() string {
	return s.filePath
}

// Settings returns a copy of the current settings.
func (s *SettingsService) Settings(_ context.Context) (*sourcebook.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSettings(s.settings), nil
}

// UpdateSettings applies the update and persists it immediately. The default
// model must name a catalog entry.
func (s *SettingsService) UpdateSettings(_ context.Context, upd sourcebook.SettingsUpdate) (*sourcebook.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if upd.DefaultModel != nil {
		if s.settings.ModelByID(*upd.DefaultModel) == nil {
			return nil, sourcebook.Errorf(sourcebook.EINVALID, "model %q not in catalog", *upd.DefaultModel)
		}
		s.settings.DefaultModel = *upd.DefaultModel
	}
	if upd.OllamaHost != nil {
		s.settings.OllamaHost = *upd.OllamaHost
	}

	if err := s.save(); err != nil {
		return nil, err
	}
	return cloneSettings(s.settings), nil
}

// FindModelByID retrieves a catalog model. An empty id resolves to the
// default model.
func (s *SettingsService) FindModelByID(_ context.Context, id string) (*sourcebook.AIModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id == "" {
		id = s.settings.DefaultModel
	}
	model := s.settings.ModelByID(id)
	if model == nil {
		return nil, sourcebook.Errorf(sourcebook.ENOTFOUND, "model %q not in catalog", id)
	}
	copied := *model
	return &copied, nil
}

// load reads the config file, seeding and writing the defaults when it does
// not exist yet.
func (s *SettingsService) load() error {
	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		s.settings = defaultSettings()
		return s.save()
	}
	if err != nil {
		return err
	}

	var file fileSettings
	if err := toml.Unmarshal(data, &file); err != nil {
		return sourcebook.Errorf(sourcebook.EINVALID, "malformed config file %s: %s", s.filePath, err)
	}

	settings := &sourcebook.Settings{
		DefaultModel: file.DefaultModel,
		OllamaHost:   file.OllamaHost,
	}
	for _, m := range file.Models {
		settings.Models = append(settings.Models, &sourcebook.AIModel{
			ID:            m.ID,
			Name:          m.Name,
			Provider:      sourcebook.Provider(m.Provider),
			ContextTokens: m.ContextTokens,
			Streaming:     m.Streaming,
		})
	}
	if len(settings.Models) == 0 {
		settings.Models = DefaultCatalog()
	}
	if settings.DefaultModel == "" || settings.ModelByID(settings.DefaultModel) == nil {
		settings.DefaultModel = DefaultModelID
	}
	attachSponsoredKeys(settings.Models)

	s.settings = settings
	return nil
}

// save writes the settings to the TOML file. Caller must hold the lock.
func (s *SettingsService) save() error {
	file := fileSettings{
		DefaultModel: s.settings.DefaultModel,
		OllamaHost:   s.settings.OllamaHost,
	}
	for _, m := range s.settings.Models {
		file.Models = append(file.Models, fileModel{
			ID:            m.ID,
			Name:          m.Name,
			Provider:      string(m.Provider),
			ContextTokens: m.ContextTokens,
			Streaming:     m.Streaming,
		})
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0o600)
}

func cloneSettings(settings *sourcebook.Settings) *sourcebook.Settings {
	clone := &sourcebook.Settings{
		DefaultModel: settings.DefaultModel,
		OllamaHost:   settings.OllamaHost,
		Models:       make([]*sourcebook.AIModel, len(settings.Models)),
	}
	for i, m := range settings.Models {
		copied := *m
		clone.Models[i] = &copied
	}
	return clone
}
