package mock

import (
	"context"

	"github.com/fwojciec/sourcebook"
)

var _ sourcebook.SettingsService = (*SettingsService)(nil)

// SettingsService is a mock implementation of sourcebook.SettingsService.
type SettingsService struct {
	SettingsFn       func(ctx context.Context) (*sourcebook.Settings, error)
	UpdateSettingsFn func(ctx context.Context, upd sourcebook.SettingsUpdate) (*sourcebook.Settings, error)
	FindModelByIDFn  func(ctx context.Context, id string) (*sourcebook.AIModel, error)
}

func (s *SettingsService) Settings(ctx context.Context) (*sourcebook.Settings, error) {
	return s.SettingsFn(ctx)
}

func (s *SettingsService) UpdateSettings(ctx context.Context, upd sourcebook.SettingsUpdate) (*sourcebook.Settings, error) {
	return s.UpdateSettingsFn(ctx, upd)
}

func (s *SettingsService) FindModelByID(ctx context.Context, id string) (*sourcebook.AIModel, error) {
	return s.FindModelByIDFn(ctx, id)
}
