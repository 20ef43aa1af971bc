package sqlite_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/sourcebook"
	"github.com/fwojciec/sourcebook/sqlite"
	"github.com/stretchr/testify/require"
)

// BenchmarkWALMode compares aggregate save performance between WAL and
// rollback journal modes. This simulates an ingest workload: a notebook
// accumulating sources, saved after each addition.
func BenchmarkWALMode(b *testing.B) {
	b.Run("rollback_journal", func(b *testing.B) {
		benchmarkNotebookSaves(b, false)
	})

	b.Run("wal_mode", func(b *testing.B) {
		benchmarkNotebookSaves(b, true)
	})
}

func benchmarkNotebookSaves(b *testing.B, useWAL bool) {
	b.Helper()

	tmpDir := b.TempDir()
	dbPath := filepath.Join(tmpDir, "bench.db")

	db := sqlite.NewDB(dbPath)
	require.NoError(b, db.Open())

	ctx := context.Background()
	if !useWAL {
		_, err := db.ExecContext(ctx, "PRAGMA journal_mode = DELETE")
		require.NoError(b, err)
	}

	defer func() {
		db.Close()
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}()

	svc := sqlite.NewNotebookService(db)
	notebook := &sourcebook.Notebook{Title: "benchmark"}
	require.NoError(b, svc.CreateNotebook(ctx, notebook))

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		notebook.Sources = append(notebook.Sources, &sourcebook.Source{
			Name:    fmt.Sprintf("doc-%d.txt", i),
			Type:    sourcebook.SourceTypeTXT,
			Content: fmt.Sprintf("Content of document %d with some additional text to make it more realistic. Lorem ipsum dolor sit amet, consectetur adipiscing elit.", i),
			Status:  sourcebook.StatusCompleted,
		})
		if err := svc.SaveNotebook(ctx, notebook); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkAggregateSave measures saving a fully populated notebook in one
// transaction (sources, chat history with citations, notes).
func BenchmarkAggregateSave(b *testing.B) {
	const sourceCount = 100

	tmpDir := b.TempDir()
	dbPath := filepath.Join(tmpDir, "bench.db")

	db := sqlite.NewDB(dbPath)
	require.NoError(b, db.Open())
	defer func() {
		db.Close()
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	}()

	ctx := context.Background()
	svc := sqlite.NewNotebookService(db)
	notebook := &sourcebook.Notebook{Title: "benchmark"}
	require.NoError(b, svc.CreateNotebook(ctx, notebook))

	for i := 0; i < sourceCount; i++ {
		notebook.Sources = append(notebook.Sources, &sourcebook.Source{
			Name:    fmt.Sprintf("doc-%d.txt", i),
			Type:    sourcebook.SourceTypeTXT,
			Content: fmt.Sprintf("Content for document %d. Lorem ipsum dolor sit amet.", i),
			Status:  sourcebook.StatusCompleted,
		})
	}
	notebook.Messages = []*sourcebook.ChatMessage{
		{Role: sourcebook.RoleUser, Content: "What do these documents cover?"},
		{
			Role:    sourcebook.RoleAssistant,
			Content: "They cover many topics [1].",
			Citations: []sourcebook.Citation{
				{SourceID: "doc-0", Title: "doc-0.txt", Quote: "Lorem ipsum"},
			},
		},
	}
	notebook.Notes = []*sourcebook.Note{{Title: "summary", Content: "lots of lorem"}}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := svc.SaveNotebook(ctx, notebook); err != nil {
			b.Fatal(err)
		}
	}
}
