package mock

import (
	"context"

	"github.com/fwojciec/sourcebook"
)

var (
	_ sourcebook.Fetcher   = (*Fetcher)(nil)
	_ sourcebook.Extractor = (*Extractor)(nil)
	_ sourcebook.Converter = (*Converter)(nil)
)

// Fetcher is a mock implementation of sourcebook.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (string, error)
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	return f.FetchFn(ctx, url)
}

// Extractor is a mock implementation of sourcebook.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*sourcebook.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*sourcebook.ExtractResult, error) {
	return e.ExtractFn(html)
}

// Converter is a mock implementation of sourcebook.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
