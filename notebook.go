package sourcebook

import (
	"context"
	"time"
)

// Notebook is the aggregate root grouping sources, chat history, notes and
// the workspace todo list. All mutations go through the aggregate: load,
// modify, save.
type Notebook struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Sources   []*Source      `json:"sources"`
	Messages  []*ChatMessage `json:"messages"`
	Notes     []*Note        `json:"notes"`
	Todos     []*TodoItem    `json:"todos"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Validate returns an error if the notebook contains invalid fields.
func (n *Notebook) Validate() error {
	if n.Title == "" {
		return Errorf(EINVALID, "notebook title required")
	}
	return nil
}

// SourceByID returns the source with the given ID, or nil if absent.
func (n *Notebook) SourceByID(id string) *Source {
	for _, src := range n.Sources {
		if src.ID == id {
			return src
		}
	}
	return nil
}

// SelectSources resolves a source selection against the notebook. An empty
// selection means all sources. Unknown IDs are ignored. The result preserves
// selection order.
func (n *Notebook) SelectSources(ids []string) []*Source {
	if len(ids) == 0 {
		return n.Sources
	}
	selected := make([]*Source, 0, len(ids))
	for _, id := range ids {
		if src := n.SourceByID(id); src != nil {
			selected = append(selected, src)
		}
	}
	return selected
}

// RemoveSource deletes the source with the given ID from the notebook.
// Returns false if the source was not found.
func (n *Notebook) RemoveSource(id string) bool {
	for i, src := range n.Sources {
		if src.ID == id {
			n.Sources = append(n.Sources[:i], n.Sources[i+1:]...)
			return true
		}
	}
	return false
}

// NoteByID returns the note with the given ID, or nil if absent.
func (n *Notebook) NoteByID(id string) *Note {
	for _, note := range n.Notes {
		if note.ID == id {
			return note
		}
	}
	return nil
}

// RemoveNote deletes the note with the given ID from the notebook.
// Returns false if the note was not found.
func (n *Notebook) RemoveNote(id string) bool {
	for i, note := range n.Notes {
		if note.ID == id {
			n.Notes = append(n.Notes[:i], n.Notes[i+1:]...)
			return true
		}
	}
	return false
}

// TodoByID returns the todo item with the given ID, or nil if absent.
func (n *Notebook) TodoByID(id string) *TodoItem {
	for _, todo := range n.Todos {
		if todo.ID == id {
			return todo
		}
	}
	return nil
}

// RemoveTodo deletes the todo item with the given ID from the notebook.
// Returns false if the item was not found.
func (n *Notebook) RemoveTodo(id string) bool {
	for i, todo := range n.Todos {
		if todo.ID == id {
			n.Todos = append(n.Todos[:i], n.Todos[i+1:]...)
			return true
		}
	}
	return false
}

// Note is a piece of saved text in a notebook, written by the user or kept
// from an assistant answer.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the note contains invalid fields.
func (nt *Note) Validate() error {
	if nt.Title == "" {
		return Errorf(EINVALID, "note title required")
	}
	return nil
}

// TodoItem is one entry in a notebook's workspace todo list.
type TodoItem struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate returns an error if the todo item contains invalid fields.
func (t *TodoItem) Validate() error {
	if t.Text == "" {
		return Errorf(EINVALID, "todo text required")
	}
	return nil
}

// NotebookService represents a service for managing notebooks.
type NotebookService interface {
	// CreateNotebook creates a new notebook.
	CreateNotebook(ctx context.Context, notebook *Notebook) error

	// FindNotebookByID retrieves a notebook with all sources, messages and
	// notes loaded. Returns ENOTFOUND if notebook does not exist.
	FindNotebookByID(ctx context.Context, id string) (*Notebook, error)

	// FindNotebooks retrieves notebooks matching the filter. Child
	// collections are not loaded.
	FindNotebooks(ctx context.Context, filter NotebookFilter) ([]*Notebook, error)

	// UpdateNotebook updates notebook metadata.
	// Returns ENOTFOUND if notebook does not exist.
	UpdateNotebook(ctx context.Context, id string, upd NotebookUpdate) (*Notebook, error)

	// SaveNotebook atomically replaces the stored aggregate (sources,
	// messages, citations, notes, todos) with the in-memory state of
	// notebook. Messages still marked loading are skipped. Returns
	// ENOTFOUND if notebook does not exist.
	SaveNotebook(ctx context.Context, notebook *Notebook) error

	// DeleteNotebook permanently removes a notebook and everything in it.
	// Returns ENOTFOUND if notebook does not exist.
	DeleteNotebook(ctx context.Context, id string) error
}

// NotebookFilter represents a filter for FindNotebooks.
type NotebookFilter struct {
	ID    *string `json:"id"`
	Title *string `json:"title"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// NotebookUpdate represents fields that can be updated on a notebook.
type NotebookUpdate struct {
	Title *string `json:"title"`
}
