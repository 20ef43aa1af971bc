package sourcebook

import "context"

// TextExtractor converts uploaded file bytes into plain text.
type TextExtractor interface {
	// ExtractText extracts readable text from an uploaded file. Extraction
	// failures are reported in-band: the returned content carries a
	// recognizable error marker instead of an error, so an upload never
	// fails outright. The error return is reserved for context
	// cancellation.
	ExtractText(ctx context.Context, file *File) (string, error)
}
