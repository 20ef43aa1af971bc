package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/sourcebook"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ sourcebook.NotebookService = (*NotebookService)(nil)

// NotebookService implements sourcebook.NotebookService using SQLite.
// Notebooks are stored as an aggregate: SaveNotebook replaces all child rows
// in one transaction, so the database always holds a consistent snapshot.
type NotebookService struct {
	db *DB
}

// NewNotebookService creates a new NotebookService.
func NewNotebookService(db *DB) *NotebookService {
	return &NotebookService{db: db}
}

// CreateNotebook creates a new notebook.
func (s *NotebookService) CreateNotebook(ctx context.Context, notebook *sourcebook.Notebook) error {
	if err := notebook.Validate(); err != nil {
		return err
	}

	notebook.ID = uuid.New().String()
	now := time.Now().UTC().Truncate(time.Millisecond)
	notebook.CreatedAt = now
	notebook.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notebooks (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, notebook.ID, notebook.Title, formatTime(notebook.CreatedAt), formatTime(notebook.UpdatedAt))
	if err != nil {
		return err
	}

	if len(notebook.Sources) > 0 || len(notebook.Messages) > 0 || len(notebook.Notes) > 0 || len(notebook.Todos) > 0 {
		return s.SaveNotebook(ctx, notebook)
	}
	return nil
}

// FindNotebookByID retrieves a notebook with all sources, messages, notes and
// todos loaded.
func (s *NotebookService) FindNotebookByID(ctx context.Context, id string) (*sourcebook.Notebook, error) {
	var nb sourcebook.Notebook
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, created_at, updated_at
		FROM notebooks
		WHERE id = ?
	`, id).Scan(&nb.ID, &nb.Title, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, sourcebook.Errorf(sourcebook.ENOTFOUND, "notebook not found")
	}
	if err != nil {
		return nil, err
	}

	if nb.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if nb.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	if nb.Sources, err = s.findSources(ctx, id); err != nil {
		return nil, err
	}
	if nb.Messages, err = s.findMessages(ctx, id); err != nil {
		return nil, err
	}
	if nb.Notes, err = s.findNotes(ctx, id); err != nil {
		return nil, err
	}
	if nb.Todos, err = s.findTodos(ctx, id); err != nil {
		return nil, err
	}

	return &nb, nil
}

// FindNotebooks retrieves notebooks matching the filter. Child collections
// are not loaded.
func (s *NotebookService) FindNotebooks(ctx context.Context, filter sourcebook.NotebookFilter) ([]*sourcebook.Notebook, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, title, created_at, updated_at FROM notebooks WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Title != nil {
		query.WriteString(" AND title = ?")
		args = append(args, *filter.Title)
	}

	query.WriteString(" ORDER BY created_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notebooks []*sourcebook.Notebook
	for rows.Next() {
		var nb sourcebook.Notebook
		var createdAt, updatedAt string

		if err := rows.Scan(&nb.ID, &nb.Title, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if nb.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if nb.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}

		notebooks = append(notebooks, &nb)
	}

	return notebooks, rows.Err()
}

// UpdateNotebook updates notebook metadata.
func (s *NotebookService) UpdateNotebook(ctx context.Context, id string, upd sourcebook.NotebookUpdate) (*sourcebook.Notebook, error) {
	notebook, err := s.FindNotebookByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		notebook.Title = *upd.Title
	}

	if err := notebook.Validate(); err != nil {
		return nil, err
	}

	notebook.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	_, err = s.db.ExecContext(ctx, `
		UPDATE notebooks
		SET title = ?, updated_at = ?
		WHERE id = ?
	`, notebook.Title, formatTime(notebook.UpdatedAt), id)
	if err != nil {
		return nil, err
	}

	return notebook, nil
}

// SaveNotebook atomically replaces the stored aggregate with the in-memory
// state of notebook. New children are assigned IDs and timestamps. Messages
// still marked loading are skipped.
func (s *NotebookService) SaveNotebook(ctx context.Context, notebook *sourcebook.Notebook) error {
	if notebook.ID == "" {
		return sourcebook.Errorf(sourcebook.EINVALID, "notebook ID required")
	}
	if err := notebook.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM notebooks WHERE id = ?", notebook.ID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return sourcebook.Errorf(sourcebook.ENOTFOUND, "notebook not found")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)

	// Replace children wholesale. Citations cascade with their messages.
	for _, stmt := range []string{
		"DELETE FROM sources WHERE notebook_id = ?",
		"DELETE FROM messages WHERE notebook_id = ?",
		"DELETE FROM notes WHERE notebook_id = ?",
		"DELETE FROM todos WHERE notebook_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, notebook.ID); err != nil {
			return err
		}
	}

	if err := s.insertSources(ctx, tx, notebook, now); err != nil {
		return err
	}
	if err := s.insertMessages(ctx, tx, notebook, now); err != nil {
		return err
	}
	if err := s.insertNotes(ctx, tx, notebook, now); err != nil {
		return err
	}
	if err := s.insertTodos(ctx, tx, notebook, now); err != nil {
		return err
	}

	notebook.UpdatedAt = now
	if _, err := tx.ExecContext(ctx, `
		UPDATE notebooks SET title = ?, updated_at = ? WHERE id = ?
	`, notebook.Title, formatTime(notebook.UpdatedAt), notebook.ID); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteNotebook permanently removes a notebook and everything in it.
func (s *NotebookService) DeleteNotebook(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM notebooks WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sourcebook.Errorf(sourcebook.ENOTFOUND, "notebook not found")
	}

	return nil
}

func (s *NotebookService) insertSources(ctx context.Context, tx *sql.Tx, notebook *sourcebook.Notebook, now time.Time) error {
	for i, src := range notebook.Sources {
		if src.ID == "" {
			src.ID = uuid.New().String()
		}
		src.NotebookID = notebook.ID
		if src.CreatedAt.IsZero() {
			src.CreatedAt = now
		}
		if src.UpdatedAt.IsZero() {
			src.UpdatedAt = now
		}
		if err := src.Validate(); err != nil {
			return err
		}

		var summary any
		if src.Summary != nil {
			encoded, err := json.Marshal(src.Summary)
			if err != nil {
				return fmt.Errorf("failed to encode summary for source %s: %w", src.ID, err)
			}
			summary = string(encoded)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sources (id, notebook_id, name, type, content, data, content_hash,
				status, summary, part, total_parts, original_id, position, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, src.ID, src.NotebookID, src.Name, src.Type, src.Content, src.Data, src.ContentHash,
			src.Status, summary, src.Part, src.TotalParts, src.OriginalID, i,
			formatTime(src.CreatedAt), formatTime(src.UpdatedAt)); err != nil {
			return err
		}
	}
	return nil
}

func (s *NotebookService) insertMessages(ctx context.Context, tx *sql.Tx, notebook *sourcebook.Notebook, now time.Time) error {
	pos := 0
	for _, msg := range notebook.Messages {
		if msg.IsLoading {
			continue
		}
		if msg.ID == "" {
			msg.ID = uuid.New().String()
		}
		msg.NotebookID = notebook.ID
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = now
		}
		if err := msg.Validate(); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO messages (id, notebook_id, role, content, is_error, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, msg.ID, msg.NotebookID, msg.Role, msg.Content, msg.IsError, pos, formatTime(msg.CreatedAt)); err != nil {
			return err
		}
		pos++

		for j := range msg.Citations {
			cit := &msg.Citations[j]
			if cit.ID == "" {
				cit.ID = uuid.New().String()
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO citations (id, message_id, source_id, title, page, quote, search_text, position)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, cit.ID, msg.ID, cit.SourceID, cit.Title, cit.Page, cit.Quote, cit.SearchText, j); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *NotebookService) insertNotes(ctx context.Context, tx *sql.Tx, notebook *sourcebook.Notebook, now time.Time) error {
	for i, note := range notebook.Notes {
		if note.ID == "" {
			note.ID = uuid.New().String()
		}
		if note.CreatedAt.IsZero() {
			note.CreatedAt = now
		}
		if note.UpdatedAt.IsZero() {
			note.UpdatedAt = now
		}
		if err := note.Validate(); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO notes (id, notebook_id, title, content, position, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, note.ID, notebook.ID, note.Title, note.Content, i,
			formatTime(note.CreatedAt), formatTime(note.UpdatedAt)); err != nil {
			return err
		}
	}
	return nil
}

func (s *NotebookService) insertTodos(ctx context.Context, tx *sql.Tx, notebook *sourcebook.Notebook, now time.Time) error {
	for i, todo := range notebook.Todos {
		if todo.ID == "" {
			todo.ID = uuid.New().String()
		}
		if todo.CreatedAt.IsZero() {
			todo.CreatedAt = now
		}
		if err := todo.Validate(); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO todos (id, notebook_id, text, done, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, todo.ID, notebook.ID, todo.Text, todo.Done, i, formatTime(todo.CreatedAt)); err != nil {
			return err
		}
	}
	return nil
}

func (s *NotebookService) findSources(ctx context.Context, notebookID string) ([]*sourcebook.Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, notebook_id, name, type, content, data, content_hash, status,
			summary, part, total_parts, original_id, created_at, updated_at
		FROM sources
		WHERE notebook_id = ?
		ORDER BY position ASC
	`, notebookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*sourcebook.Source
	for rows.Next() {
		var src sourcebook.Source
		var summary sql.NullString
		var createdAt, updatedAt string

		if err := rows.Scan(&src.ID, &src.NotebookID, &src.Name, &src.Type, &src.Content,
			&src.Data, &src.ContentHash, &src.Status, &summary, &src.Part, &src.TotalParts,
			&src.OriginalID, &createdAt, &updatedAt); err != nil {
			return nil, err
		}

		if summary.Valid {
			var ds sourcebook.DocumentSummary
			if err := json.Unmarshal([]byte(summary.String), &ds); err != nil {
				return nil, fmt.Errorf("failed to decode summary for source %s: %w", src.ID, err)
			}
			src.Summary = &ds
		}
		if src.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if src.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}

		sources = append(sources, &src)
	}

	return sources, rows.Err()
}

func (s *NotebookService) findMessages(ctx context.Context, notebookID string) ([]*sourcebook.ChatMessage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, notebook_id, role, content, is_error, created_at
		FROM messages
		WHERE notebook_id = ?
		ORDER BY position ASC
	`, notebookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*sourcebook.ChatMessage
	byID := make(map[string]*sourcebook.ChatMessage)
	for rows.Next() {
		var msg sourcebook.ChatMessage
		var createdAt string

		if err := rows.Scan(&msg.ID, &msg.NotebookID, &msg.Role, &msg.Content, &msg.IsError, &createdAt); err != nil {
			return nil, err
		}
		if msg.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}

		messages = append(messages, &msg)
		byID[msg.ID] = &msg
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachCitations(ctx, notebookID, byID); err != nil {
		return nil, err
	}

	return messages, nil
}

func (s *NotebookService) attachCitations(ctx context.Context, notebookID string, messages map[string]*sourcebook.ChatMessage) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.message_id, c.source_id, c.title, c.page, c.quote, c.search_text
		FROM citations c
		JOIN messages m ON m.id = c.message_id
		WHERE m.notebook_id = ?
		ORDER BY m.position ASC, c.position ASC
	`, notebookID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cit sourcebook.Citation
		var messageID string

		if err := rows.Scan(&cit.ID, &messageID, &cit.SourceID, &cit.Title, &cit.Page,
			&cit.Quote, &cit.SearchText); err != nil {
			return err
		}
		if msg := messages[messageID]; msg != nil {
			msg.Citations = append(msg.Citations, cit)
		}
	}

	return rows.Err()
}

func (s *NotebookService) findNotes(ctx context.Context, notebookID string) ([]*sourcebook.Note, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, created_at, updated_at
		FROM notes
		WHERE notebook_id = ?
		ORDER BY position ASC
	`, notebookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*sourcebook.Note
	for rows.Next() {
		var note sourcebook.Note
		var createdAt, updatedAt string

		if err := rows.Scan(&note.ID, &note.Title, &note.Content, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		if note.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}
		if note.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}

		notes = append(notes, &note)
	}

	return notes, rows.Err()
}

func (s *NotebookService) findTodos(ctx context.Context, notebookID string) ([]*sourcebook.TodoItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, done, created_at
		FROM todos
		WHERE notebook_id = ?
		ORDER BY position ASC
	`, notebookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []*sourcebook.TodoItem
	for rows.Next() {
		var todo sourcebook.TodoItem
		var createdAt string

		if err := rows.Scan(&todo.ID, &todo.Text, &todo.Done, &createdAt); err != nil {
			return nil, err
		}
		if todo.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}

		todos = append(todos, &todo)
	}

	return todos, rows.Err()
}
