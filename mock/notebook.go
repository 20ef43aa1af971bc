package mock

import (
	"context"

	"github.com/fwojciec/sourcebook"
)

var _ sourcebook.NotebookService = (*NotebookService)(nil)

// NotebookService is a mock implementation of sourcebook.NotebookService.
type NotebookService struct {
	CreateNotebookFn   func(ctx context.Context, notebook *sourcebook.Notebook) error
	FindNotebookByIDFn func(ctx context.Context, id string) (*sourcebook.Notebook, error)
	FindNotebooksFn    func(ctx context.Context, filter sourcebook.NotebookFilter) ([]*sourcebook.Notebook, error)
	UpdateNotebookFn   func(ctx context.Context, id string, upd sourcebook.NotebookUpdate) (*sourcebook.Notebook, error)
	SaveNotebookFn     func(ctx context.Context, notebook *sourcebook.Notebook) error
	DeleteNotebookFn   func(ctx context.Context, id string) error
}

func (s *NotebookService) CreateNotebook(ctx context.Context, notebook *sourcebook.Notebook) error {
	return s.CreateNotebookFn(ctx, notebook)
}

func (s *NotebookService) FindNotebookByID(ctx context.Context, id string) (*sourcebook.Notebook, error) {
	return s.FindNotebookByIDFn(ctx, id)
}

func (s *NotebookService) FindNotebooks(ctx context.Context, filter sourcebook.NotebookFilter) ([]*sourcebook.Notebook, error) {
	return s.FindNotebooksFn(ctx, filter)
}

func (s *NotebookService) UpdateNotebook(ctx context.Context, id string, upd sourcebook.NotebookUpdate) (*sourcebook.Notebook, error) {
	return s.UpdateNotebookFn(ctx, id, upd)
}

func (s *NotebookService) SaveNotebook(ctx context.Context, notebook *sourcebook.Notebook) error {
	return s.SaveNotebookFn(ctx, notebook)
}

func (s *NotebookService) DeleteNotebook(ctx context.Context, id string) error {
	return s.DeleteNotebookFn(ctx, id)
}
