package mock

import (
	"context"

	"github.com/fwojciec/sourcebook"
)

var _ sourcebook.Composer = (*Composer)(nil)

// Composer is a mock implementation of sourcebook.Composer.
type Composer struct {
	ComposeFn func(ctx context.Context, req sourcebook.ComposeRequest) (string, error)
}

func (c *Composer) Compose(ctx context.Context, req sourcebook.ComposeRequest) (string, error) {
	return c.ComposeFn(ctx, req)
}
