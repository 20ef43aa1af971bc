package mock

import (
	"context"

	"github.com/fwojciec/sourcebook"
)

var _ sourcebook.TextExtractor = (*TextExtractor)(nil)

// TextExtractor is a mock implementation of sourcebook.TextExtractor.
type TextExtractor struct {
	ExtractTextFn func(ctx context.Context, file *sourcebook.File) (string, error)
}

func (e *TextExtractor) ExtractText(ctx context.Context, file *sourcebook.File) (string, error) {
	return e.ExtractTextFn(ctx, file)
}
