package mock

import (
	"context"

	"github.com/fwojciec/sourcebook"
)

var _ sourcebook.Asker = (*Asker)(nil)

// Asker is a mock implementation of sourcebook.Asker.
type Asker struct {
	AskFn       func(ctx context.Context, req sourcebook.AskRequest) (*sourcebook.ChatMessage, error)
	AskStreamFn func(ctx context.Context, req sourcebook.AskRequest) (*sourcebook.Answer, error)
}

func (a *Asker) Ask(ctx context.Context, req sourcebook.AskRequest) (*sourcebook.ChatMessage, error) {
	return a.AskFn(ctx, req)
}

func (a *Asker) AskStream(ctx context.Context, req sourcebook.AskRequest) (*sourcebook.Answer, error) {
	return a.AskStreamFn(ctx, req)
}
