package main

import (
	"context"
	"io"

	"github.com/fwojciec/sourcebook"
	"github.com/fwojciec/sourcebook/fs"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	Notebooks   sourcebook.NotebookService
	Sources     sourcebook.SourceService
	Credentials sourcebook.CredentialService
	Settings    sourcebook.SettingsService
	Factory     sourcebook.GeneratorFactory
	Asker       sourcebook.Asker
	Composer    sourcebook.Composer
	Exporter    *fs.Exporter
	ConfigPath  string
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable verbose logging"`

	New      NewCmd      `cmd:"" help:"Create a notebook"`
	List     ListCmd     `cmd:"" help:"List notebooks"`
	Open     OpenCmd     `cmd:"" help:"Show a notebook's sources, notes and chat history"`
	Rename   RenameCmd   `cmd:"" help:"Rename a notebook"`
	Delete   DeleteCmd   `cmd:"" help:"Delete a notebook and everything in it"`
	Add      AddCmd      `cmd:"" help:"Add file, URL or text sources to a notebook"`
	Sources  SourcesCmd  `cmd:"" help:"List a notebook's sources"`
	Source   SourceCmd   `cmd:"" help:"Manage a single source"`
	Ask      AskCmd      `cmd:"" help:"Ask a question about a notebook's sources"`
	Generate GenerateCmd `cmd:"" help:"Generate a document from a notebook's sources"`
	Note     NoteCmd     `cmd:"" help:"Manage notebook notes"`
	Todo     TodoCmd     `cmd:"" help:"Manage a notebook's todo list"`
	Auth     AuthCmd     `cmd:"" help:"Manage provider credentials"`
	Models   ModelsCmd   `cmd:"" help:"List the model catalog"`
	Settings SettingsCmd `cmd:"" help:"Show or change settings"`
	Export   ExportCmd   `cmd:"" help:"Export a notebook as a markdown directory"`
}

// NewCmd is the "new" subcommand.
type NewCmd struct {
	Title string `arg:"" help:"Notebook title"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct{}

// OpenCmd is the "open" subcommand.
type OpenCmd struct {
	Notebook string `arg:"" help:"Notebook title or ID"`
}

// RenameCmd is the "rename" subcommand.
type RenameCmd struct {
	Notebook string `arg:"" help:"Notebook title or ID"`
	Title    string `arg:"" help:"New title"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	Notebook string `arg:"" help:"Notebook title or ID"`
	Force    bool   `help:"Confirm deletion"`
}

// AddCmd is the "add" subcommand.
type AddCmd struct {
	Notebook    string   `arg:"" help:"Notebook title or ID"`
	Files       []string `arg:"" optional:"" type:"existingfile" help:"Files to add"`
	URL         string   `help:"Add a web page as a source"`
	Text        string   `help:"Add pasted text as a source"`
	Name        string   `help:"Display name for pasted text"`
	Model       string   `short:"m" help:"Catalog model for summary generation"`
	Concurrency int      `short:"c" default:"4" help:"Concurrent summary limit"`
}

// SourcesCmd is the "sources" subcommand.
type SourcesCmd struct {
	Notebook string `arg:"" help:"Notebook title or ID"`
}

// SourceCmd groups the per-source subcommands.
type SourceCmd struct {
	Rename SourceRenameCmd `cmd:"" help:"Rename a source"`
	Delete SourceDeleteCmd `cmd:"" help:"Delete a source"`
	Retry  SourceRetryCmd  `cmd:"" help:"Re-run summary generation for a source"`
}

// SourceRenameCmd is the "source rename" subcommand.
type SourceRenameCmd struct {
	Notebook string `arg:"" help:"Notebook title or ID"`
	Source   string `arg:"" help:"Source name or ID"`
	Name     string `arg:"" help:"New name"`
}

// SourceDeleteCmd is the "source delete" subcommand.
type SourceDeleteCmd struct {
	Notebook string `arg:"" help:"Notebook title or ID"`
	Source   string `arg:"" help:"Source name or ID"`
}

// SourceRetryCmd is the "source retry" subcommand.
type SourceRetryCmd struct {
	Notebook string `arg:"" help:"Notebook title or ID"`
	Source   string `arg:"" help:"Source name or ID"`
	Model    string `short:"m" help:"Catalog model for summary generation"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Notebook string   `arg:"" help:"Notebook title or ID"`
	Question string   `arg:"" help:"Question to ask about the sources"`
	Sources  []string `short:"s" help:"Restrict the answer to these sources (repeatable)"`
	Model    string   `short:"m" help:"Catalog model to answer with"`
	NoStream bool     `help:"Wait for the complete answer instead of streaming"`
}

// GenerateCmd is the "generate" subcommand.
type GenerateCmd struct {
	Notebook string   `arg:"" help:"Notebook title or ID"`
	Kind     string   `arg:"" enum:"work-aid,faq,briefing,timeline,outline" help:"Document kind: work-aid, faq, briefing, timeline or outline"`
	Sources  []string `short:"s" help:"Restrict the material to these sources (repeatable)"`
	Model    string   `short:"m" help:"Catalog model to generate with"`
}

// NoteCmd groups the note subcommands.
type NoteCmd struct {
	Add    NoteAddCmd    `cmd:"" help:"Add a note to a notebook"`
	List   NoteListCmd   `cmd:"" help:"List a notebook's notes"`
	Delete NoteDeleteCmd `cmd:"" help:"Delete a note"`
}

// NoteAddCmd is the "note add" subcommand.
type NoteAddCmd struct {
	Notebook string `arg:"" help:"Notebook title or ID"`
	Title    string `arg:"" help:"Note title"`
	Content  string `arg:"" optional:"" help:"Note content"`
}

// NoteListCmd is the "note list" subcommand.
type NoteListCmd struct {
	Notebook string `arg:"" help:"Notebook title or ID"`
}

// NoteDeleteCmd is the "note delete" subcommand.
type NoteDeleteCmd struct {
	Notebook string `arg:"" help:"Notebook title or ID"`
	Note     string `arg:"" help:"Note title or ID"`
}

// TodoCmd groups the todo subcommands.
type TodoCmd struct {
	Add    TodoAddCmd    `cmd:"" help:"Add a todo item to a notebook"`
	List   TodoListCmd   `cmd:"" help:"List a notebook's todo items"`
	Done   TodoDoneCmd   `cmd:"" help:"Mark a todo item as done"`
	Delete TodoDeleteCmd `cmd:"" help:"Delete a todo item"`
}

// TodoAddCmd is the "todo add" subcommand.
type TodoAddCmd struct {
	Notebook string `arg:"" help:"Notebook title or ID"`
	Text     string `arg:"" help:"Todo text"`
}

// TodoListCmd is the "todo list" subcommand.
type TodoListCmd struct {
	Notebook string `arg:"" help:"Notebook title or ID"`
}

// TodoDoneCmd is the "todo done" subcommand.
type TodoDoneCmd struct {
	Notebook string `arg:"" help:"Notebook title or ID"`
	Todo     string `arg:"" help:"Todo text or ID"`
}

// TodoDeleteCmd is the "todo delete" subcommand.
type TodoDeleteCmd struct {
	Notebook string `arg:"" help:"Notebook title or ID"`
	Todo     string `arg:"" help:"Todo text or ID"`
}

// AuthCmd groups the credential subcommands.
type AuthCmd struct {
	Set    AuthSetCmd    `cmd:"" help:"Store a provider API key"`
	Check  AuthCheckCmd  `cmd:"" help:"Validate a stored credential against the provider"`
	List   AuthListCmd   `cmd:"" help:"List stored credentials"`
	Delete AuthDeleteCmd `cmd:"" help:"Remove a stored credential"`
}

// AuthSetCmd is the "auth set" subcommand.
type AuthSetCmd struct {
	Provider string `arg:"" help:"Provider (openai, anthropic, gemini)"`
	Key      string `arg:"" help:"API key"`
}

// AuthCheckCmd is the "auth check" subcommand.
type AuthCheckCmd struct {
	Provider string `arg:"" help:"Provider (openai, anthropic, gemini, ollama)"`
}

// AuthListCmd is the "auth list" subcommand.
type AuthListCmd struct{}

// AuthDeleteCmd is the "auth delete" subcommand.
type AuthDeleteCmd struct {
	Provider string `arg:"" help:"Provider (openai, anthropic, gemini, ollama)"`
}

// ModelsCmd is the "models" subcommand.
type ModelsCmd struct{}

// SettingsCmd is the "settings" subcommand.
type SettingsCmd struct {
	DefaultModel string `help:"Set the default model"`
	OllamaHost   string `help:"Set the Ollama server URL"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	Notebook string `arg:"" help:"Notebook title or ID"`
	Dir      string `short:"d" default:"." help:"Directory to export into"`
}
