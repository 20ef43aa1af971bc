package sourcebook

import (
	"context"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

// SourceType identifies the kind of content a source holds.
type SourceType string

// Source types.
const (
	SourceTypePDF      SourceType = "pdf"
	SourceTypeDOCX     SourceType = "docx"
	SourceTypeTXT      SourceType = "txt"
	SourceTypeMarkdown SourceType = "md"
	SourceTypeCSV      SourceType = "csv"
	SourceTypeJSON     SourceType = "json"
	SourceTypeImage    SourceType = "image"
	SourceTypeAudio    SourceType = "audio"
	SourceTypeURL      SourceType = "url"
	SourceTypeText     SourceType = "text"
)

// Valid reports whether t is a known source type.
func (t SourceType) Valid() bool {
	switch t {
	case SourceTypePDF, SourceTypeDOCX, SourceTypeTXT, SourceTypeMarkdown,
		SourceTypeCSV, SourceTypeJSON, SourceTypeImage, SourceTypeAudio,
		SourceTypeURL, SourceTypeText:
		return true
	}
	return false
}

// Media reports whether t is a non-text media type. Media sources store a
// placeholder instead of extracted text and skip summary generation.
func (t SourceType) Media() bool {
	return t == SourceTypeImage || t == SourceTypeAudio
}

// SourceStatus tracks a source through its processing lifecycle.
type SourceStatus string

// Source statuses.
const (
	StatusPending    SourceStatus = "pending"
	StatusProcessing SourceStatus = "processing"
	StatusCompleted  SourceStatus = "completed"
	StatusError      SourceStatus = "error"
)

// Valid reports whether s is a known status.
func (s SourceStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusError:
		return true
	}
	return false
}

// Terminal reports whether s is a resting state.
func (s SourceStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// CanTransition reports whether a status change is legal. Sources move
// pending → processing → completed or error. Terminal sources may re-enter
// processing on retry.
func (s SourceStatus) CanTransition(to SourceStatus) bool {
	switch s {
	case StatusPending:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusCompleted || to == StatusError
	case StatusCompleted, StatusError:
		return to == StatusProcessing
	}
	return false
}

// Source represents a single piece of reference material in a notebook.
type Source struct {
	ID          string           `json:"id"`
	NotebookID  string           `json:"notebookId"`
	Name        string           `json:"name"`
	Type        SourceType       `json:"type"`
	Content     string           `json:"content"`
	Data        []byte           `json:"-"`
	ContentHash string           `json:"contentHash"`
	Status      SourceStatus     `json:"status"`
	Summary     *DocumentSummary `json:"summary,omitempty"`

	// Part, TotalParts and OriginalID track sources that were split because
	// their content exceeded the model's context budget. Part is 1-based;
	// all three are zero values on unsplit sources.
	Part       int    `json:"part,omitempty"`
	TotalParts int    `json:"totalParts,omitempty"`
	OriginalID string `json:"originalId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the source contains invalid fields.
func (s *Source) Validate() error {
	if s.NotebookID == "" {
		return Errorf(EINVALID, "source notebook ID required")
	}
	if s.Name == "" {
		return Errorf(EINVALID, "source name required")
	}
	if !s.Type.Valid() {
		return Errorf(EINVALID, "unknown source type %q", s.Type)
	}
	return nil
}

// File is an uploaded file payload before extraction.
type File struct {
	Name string
	MIME string
	Data []byte
}

// SourceService manages the source lifecycle within a notebook: extraction,
// asynchronous summary generation, retries and removal.
type SourceService interface {
	// AddFiles extracts the uploaded files, adds them to the notebook and
	// generates summaries for all eligible new sources concurrently. Every
	// returned source is in a terminal state.
	AddFiles(ctx context.Context, notebookID string, files []*File, modelID string) ([]*Source, error)

	// AddURL fetches a web page, converts it to markdown and adds it as a
	// source, then generates its summary.
	AddURL(ctx context.Context, notebookID, url, modelID string) (*Source, error)

	// AddText adds pasted text as a source, then generates its summary.
	AddText(ctx context.Context, notebookID, name, text, modelID string) (*Source, error)

	// RetrySource re-runs summary generation for a source. Retrying a
	// completed source regenerates its summary.
	// Returns ENOTFOUND if the source does not exist.
	RetrySource(ctx context.Context, notebookID, sourceID, modelID string) (*Source, error)

	// RenameSource changes a source's display name.
	// Returns ENOTFOUND if the source does not exist.
	RenameSource(ctx context.Context, notebookID, sourceID, name string) error

	// DeleteSource removes a source from the notebook. Chat messages and
	// notes are left untouched; citations may dangle.
	// Returns ENOTFOUND if the source does not exist.
	DeleteSource(ctx context.Context, notebookID, sourceID string) error
}

// MapFileType resolves the source type for an uploaded file. The file
// extension wins over the declared MIME type; unrecognized files fall back
// to plain text.
func MapFileType(filename, mimeType string) SourceType {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return SourceTypePDF
	case ".docx":
		return SourceTypeDOCX
	case ".txt":
		return SourceTypeTXT
	case ".md", ".markdown":
		return SourceTypeMarkdown
	case ".csv":
		return SourceTypeCSV
	case ".json":
		return SourceTypeJSON
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".svg":
		return SourceTypeImage
	case ".mp3", ".wav", ".m4a", ".ogg", ".flac":
		return SourceTypeAudio
	}

	switch {
	case mimeType == "application/pdf":
		return SourceTypePDF
	case mimeType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return SourceTypeDOCX
	case mimeType == "text/markdown":
		return SourceTypeMarkdown
	case mimeType == "text/csv":
		return SourceTypeCSV
	case mimeType == "application/json":
		return SourceTypeJSON
	case strings.HasPrefix(mimeType, "image/"):
		return SourceTypeImage
	case strings.HasPrefix(mimeType, "audio/"):
		return SourceTypeAudio
	}

	return SourceTypeTXT
}

// Extraction failure markers. Extractors return placeholder content carrying
// one of these prefixes instead of failing an upload; the ingest pipeline
// routes marked sources straight to error status.
const (
	MarkerPDFError  = "Error processing PDF:"
	MarkerDOCXError = "Error processing DOCX:"
	MarkerTextError = "Error reading text file:"
	MarkerURLError  = "Error fetching URL:"
)

var extractionMarkers = []string{
	MarkerPDFError,
	MarkerDOCXError,
	MarkerTextError,
	MarkerURLError,
}

// IsExtractionError reports whether content is an extraction failure
// placeholder.
func IsExtractionError(content string) bool {
	for _, marker := range extractionMarkers {
		if strings.HasPrefix(content, marker) {
			return true
		}
	}
	return false
}

// MediaPlaceholder returns the placeholder content stored for non-text
// media sources. Returns an empty string for non-media types.
func MediaPlaceholder(t SourceType, name string) string {
	switch t {
	case SourceTypeImage:
		return "[Image file: " + name + "]"
	case SourceTypeAudio:
		return "[Audio file: " + name + "]"
	}
	return ""
}

// IsMediaPlaceholder reports whether content is a media placeholder.
func IsMediaPlaceholder(content string) bool {
	return strings.HasPrefix(content, "[Image file:") ||
		strings.HasPrefix(content, "[Audio file:")
}

// SplitContent splits text into parts that each fit within the token budget,
// preferring paragraph boundaries. Text that already fits is returned
// unchanged as a single part.
func SplitContent(text string, maxTokens int) []string {
	if maxTokens <= 0 || EstimateTokens(text) <= maxTokens {
		return []string{text}
	}

	maxChars := maxTokens * tokenCharRatio

	var parts []string
	var sb strings.Builder
	flush := func() {
		if sb.Len() > 0 {
			parts = append(parts, sb.String())
			sb.Reset()
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		// Hard-split paragraphs that exceed the budget on their own,
		// backing up to a rune boundary.
		for len(para) > maxChars {
			flush()
			cut := maxChars
			for cut > 0 && !utf8.RuneStart(para[cut]) {
				cut--
			}
			if cut == 0 {
				cut = maxChars
			}
			parts = append(parts, para[:cut])
			para = para[cut:]
		}

		if sb.Len() > 0 && sb.Len()+2+len(para) > maxChars {
			flush()
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(para)
	}
	flush()

	return parts
}
