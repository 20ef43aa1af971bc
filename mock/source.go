package mock

import (
	"context"

	"github.com/fwojciec/sourcebook"
)

var _ sourcebook.SourceService = (*SourceService)(nil)

// SourceService is a mock implementation of sourcebook.SourceService.
type SourceService struct {
	AddFilesFn     func(ctx context.Context, notebookID string, files []*sourcebook.File, modelID string) ([]*sourcebook.Source, error)
	AddURLFn       func(ctx context.Context, notebookID, url, modelID string) (*sourcebook.Source, error)
	AddTextFn      func(ctx context.Context, notebookID, name, text, modelID string) (*sourcebook.Source, error)
	RetrySourceFn  func(ctx context.Context, notebookID, sourceID, modelID string) (*sourcebook.Source, error)
	RenameSourceFn func(ctx context.Context, notebookID, sourceID, name string) error
	DeleteSourceFn func(ctx context.Context, notebookID, sourceID string) error
}

func (s *SourceService) AddFiles(ctx context.Context, notebookID string, files []*sourcebook.File, modelID string) ([]*sourcebook.Source, error) {
	return s.AddFilesFn(ctx, notebookID, files, modelID)
}

func (s *SourceService) AddURL(ctx context.Context, notebookID, url, modelID string) (*sourcebook.Source, error) {
	return s.AddURLFn(ctx, notebookID, url, modelID)
}

func (s *SourceService) AddText(ctx context.Context, notebookID, name, text, modelID string) (*sourcebook.Source, error) {
	return s.AddTextFn(ctx, notebookID, name, text, modelID)
}

func (s *SourceService) RetrySource(ctx context.Context, notebookID, sourceID, modelID string) (*sourcebook.Source, error) {
	return s.RetrySourceFn(ctx, notebookID, sourceID, modelID)
}

func (s *SourceService) RenameSource(ctx context.Context, notebookID, sourceID, name string) error {
	return s.RenameSourceFn(ctx, notebookID, sourceID, name)
}

func (s *SourceService) DeleteSource(ctx context.Context, notebookID, sourceID string) error {
	return s.DeleteSourceFn(ctx, notebookID, sourceID)
}
