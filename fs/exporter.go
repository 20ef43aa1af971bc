// Package fs provides file-based notebook export.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/fwojciec/sourcebook"
)

// Exporter writes notebooks to disk as markdown directories with atomic
// update semantics. Files are written to a temporary directory, then moved
// into place with a single rename once the whole notebook has been written.
type Exporter struct {
	baseDir string
}

// NewExporter creates a new Exporter rooted at baseDir. Each notebook is
// exported to baseDir/<slug of its title>.
func NewExporter(baseDir string) *Exporter {
	return &Exporter{baseDir: baseDir}
}

func (e *Exporter) finalDir(notebook *sourcebook.Notebook) string {
	return filepath.Join(e.baseDir, Slug(notebook.Title))
}

func (e *Exporter) tempDir(notebook *sourcebook.Notebook) string {
	return e.finalDir(notebook) + ".tmp"
}

// Export writes the notebook as a markdown directory under the base
// directory and returns the directory path. An existing export of the same
// notebook is replaced only after the new one is complete.
func (e *Exporter) Export(ctx context.Context, notebook *sourcebook.Notebook) (string, error) {
	if err := notebook.Validate(); err != nil {
		return "", err
	}

	if err := e.write(notebook); err != nil {
		os.RemoveAll(e.tempDir(notebook))
		return "", err
	}

	final := e.finalDir(notebook)
	if err := os.RemoveAll(final); err != nil {
		return "", err
	}
	if err := os.Rename(e.tempDir(notebook), final); err != nil {
		return "", err
	}
	return final, nil
}

func (e *Exporter) write(notebook *sourcebook.Notebook) error {
	dir := e.tempDir(notebook)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	overview := filepath.Join(dir, "notebook.md")
	if err := os.WriteFile(overview, []byte(FormatNotebook(notebook)), 0644); err != nil {
		return err
	}

	if len(notebook.Sources) > 0 {
		srcDir := filepath.Join(dir, "sources")
		if err := os.MkdirAll(srcDir, 0755); err != nil {
			return err
		}
		used := make(map[string]int)
		for _, src := range notebook.Sources {
			path := filepath.Join(srcDir, uniqueSlug(used, src.Name)+".md")
			if err := os.WriteFile(path, []byte(FormatSource(src)), 0644); err != nil {
				return err
			}
		}
	}

	if len(notebook.Notes) > 0 {
		noteDir := filepath.Join(dir, "notes")
		if err := os.MkdirAll(noteDir, 0755); err != nil {
			return err
		}
		used := make(map[string]int)
		for _, note := range notebook.Notes {
			path := filepath.Join(noteDir, uniqueSlug(used, note.Title)+".md")
			if err := os.WriteFile(path, []byte(FormatNote(note)), 0644); err != nil {
				return err
			}
		}
	}

	if len(notebook.Messages) > 0 {
		transcript := filepath.Join(dir, "transcript.md")
		if err := os.WriteFile(transcript, []byte(FormatTranscript(notebook)), 0644); err != nil {
			return err
		}
	}

	return nil
}

// Slug converts a display name to a filesystem-safe file name.
// Example: "Chapter 3: Results?" becomes "chapter-3-results".
func Slug(name string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}

func uniqueSlug(used map[string]int, name string) string {
	slug := Slug(name)
	used[slug]++
	if n := used[slug]; n > 1 {
		return fmt.Sprintf("%s-%d", slug, n)
	}
	return slug
}

// FormatNotebook formats the notebook overview with YAML frontmatter.
func FormatNotebook(notebook *sourcebook.Notebook) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: ")
	b.WriteString(notebook.Title)
	b.WriteString("\ncreated: ")
	b.WriteString(notebook.CreatedAt.Format("2006-01-02"))
	b.WriteString("\n---\n\n# ")
	b.WriteString(notebook.Title)
	b.WriteString("\n")
	if len(notebook.Sources) > 0 {
		b.WriteString("\n## Sources\n\n")
		for _, src := range notebook.Sources {
			fmt.Fprintf(&b, "- %s (%s, %s)\n", src.Name, src.Type, src.Status)
		}
	}
	if len(notebook.Todos) > 0 {
		b.WriteString("\n## Todo\n\n")
		for _, todo := range notebook.Todos {
			mark := " "
			if todo.Done {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s\n", mark, todo.Text)
		}
	}
	return b.String()
}

// FormatSource formats a source with YAML frontmatter.
func FormatSource(src *sourcebook.Source) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("name: ")
	b.WriteString(src.Name)
	b.WriteString("\ntype: ")
	b.WriteString(string(src.Type))
	b.WriteString("\ncreated: ")
	b.WriteString(src.CreatedAt.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(src.Content)
	return b.String()
}

// FormatNote formats a note with YAML frontmatter.
func FormatNote(note *sourcebook.Note) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: ")
	b.WriteString(note.Title)
	b.WriteString("\ncreated: ")
	b.WriteString(note.CreatedAt.Format("2006-01-02"))
	b.WriteString("\n---\n\n")
	b.WriteString(note.Content)
	return b.String()
}

// FormatTranscript formats the notebook's chat history as markdown. Cited
// sources are listed after each answer.
func FormatTranscript(notebook *sourcebook.Notebook) string {
	var b strings.Builder
	b.WriteString("---\ntitle: ")
	b.WriteString(notebook.Title)
	b.WriteString("\ncreated: ")
	b.WriteString(notebook.CreatedAt.Format("2006-01-02"))
	b.WriteString("\n---\n")
	for _, msg := range notebook.Messages {
		b.WriteString("\n## ")
		b.WriteString(roleHeading(msg))
		b.WriteString("\n\n")
		b.WriteString(msg.Content)
		b.WriteString("\n")
		if len(msg.Citations) > 0 {
			b.WriteString("\nCited:\n\n")
			for _, c := range msg.Citations {
				b.WriteString("- ")
				b.WriteString(c.Title)
				if c.Quote != "" {
					b.WriteString(": \"")
					b.WriteString(c.Quote)
					b.WriteString("\"")
				}
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

func roleHeading(msg *sourcebook.ChatMessage) string {
	if msg.Role == sourcebook.RoleUser {
		return "You"
	}
	if msg.IsError {
		return "Assistant (failed)"
	}
	return "Assistant"
}
