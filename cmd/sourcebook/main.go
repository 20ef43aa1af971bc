package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sourcebook"
	"github.com/fwojciec/sourcebook/chat"
	"github.com/fwojciec/sourcebook/extract"
	"github.com/fwojciec/sourcebook/fs"
	"github.com/fwojciec/sourcebook/gemini"
	"github.com/fwojciec/sourcebook/goquery"
	"github.com/fwojciec/sourcebook/htmltomarkdown"
	sbhttp "github.com/fwojciec/sourcebook/http"
	"github.com/fwojciec/sourcebook/ingest"
	"github.com/fwojciec/sourcebook/llm"
	sbslog "github.com/fwojciec/sourcebook/slog"
	"github.com/fwojciec/sourcebook/sqlite"
	"github.com/fwojciec/sourcebook/toml"
	"github.com/fwojciec/sourcebook/trafilatura"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Config directory. Empty means ~/.sourcebook.
	ConfigDir string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	NotebookService   sourcebook.NotebookService
	SourceService     sourcebook.SourceService
	CredentialService sourcebook.CredentialService
	SettingsService   sourcebook.SettingsService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sourcebook"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sourcebook --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Generation logs go to stderr; notices always pass the threshold.
	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SOURCEBOOK_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	// Load settings
	settings, err := toml.NewSettingsService(m.ConfigDir)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	// Wire core services into dependencies
	m.NotebookService = sqlite.NewNotebookService(m.DB)
	m.CredentialService = sqlite.NewCredentialService(m.DB)
	m.SettingsService = settings

	notifier := sbslog.NewNotifier(logger)
	factory := sbslog.NewLoggingFactory(llm.NewFactory(), logger)

	deps.Notebooks = m.NotebookService
	deps.Credentials = m.CredentialService
	deps.Settings = settings
	deps.ConfigPath = settings.Path()
	deps.Factory = factory

	pipeline := &ingest.Pipeline{
		Extractor:   extract.NewExtractor(),
		Fetcher:     sbhttp.NewFetcher(),
		Web:         trafilatura.NewExtractor(),
		WebFallback: goquery.NewExtractor(),
		Converter:   htmltomarkdown.NewConverter(),
		Factory:     llm.NewRateLimitedFactory(factory, summaryRPS, summaryBurst),
		Credentials: m.CredentialService,
		Settings:    settings,
		Notebooks:   m.NotebookService,
		Notifier:    notifier,
		Concurrency: ingest.DefaultConcurrency,
		RetryDelays: ingest.DefaultRetryDelays(),
	}
	if cmd == "add" && cli.Add.Concurrency > 0 {
		pipeline.Concurrency = cli.Add.Concurrency
	}
	m.SourceService = pipeline
	deps.Sources = pipeline

	engine := &chat.Engine{
		Factory:     factory,
		Credentials: m.CredentialService,
		Settings:    settings,
		Notebooks:   m.NotebookService,
		Notifier:    notifier,
	}
	if cmd == "ask" || cmd == "generate" {
		// Exact token counts improve budget trimming; the engine falls back
		// to estimation without one.
		if counter, err := gemini.NewTokenCounter(tokenizerModel); err == nil {
			engine.Tokens = counter
		} else {
			logger.Warn("token counter unavailable", "err", err)
		}
	}
	deps.Asker = engine
	deps.Composer = engine

	if cmd == "export" {
		deps.Exporter = fs.NewExporter(cli.Export.Dir)
	}

	return kongCtx.Run(deps)
}

// Rate limit for summary generation (2 requests per second, burst of 4).
const (
	summaryRPS   = 2
	summaryBurst = 4
)

// tokenizerModel is used for local token counting.
const tokenizerModel = "gemini-2.5-flash"

func defaultDBPath() string {
	if path := os.Getenv("SOURCEBOOK_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "sourcebook.db"
	}
	dir := filepath.Join(home, ".sourcebook")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "sourcebook.db")
}
