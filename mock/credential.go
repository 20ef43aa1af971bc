package mock

import (
	"context"

	"github.com/fwojciec/sourcebook"
)

var _ sourcebook.CredentialService = (*CredentialService)(nil)

// CredentialService is a mock implementation of sourcebook.CredentialService.
type CredentialService struct {
	FindCredentialFn   func(ctx context.Context, provider sourcebook.Provider) (*sourcebook.Credential, error)
	FindCredentialsFn  func(ctx context.Context) ([]*sourcebook.Credential, error)
	SetCredentialFn    func(ctx context.Context, provider sourcebook.Provider, value string) error
	MarkVerifiedFn     func(ctx context.Context, provider sourcebook.Provider) error
	DeleteCredentialFn func(ctx context.Context, provider sourcebook.Provider) error
}

func (s *CredentialService) FindCredential(ctx context.Context, provider sourcebook.Provider) (*sourcebook.Credential, error) {
	return s.FindCredentialFn(ctx, provider)
}

func (s *CredentialService) FindCredentials(ctx context.Context) ([]*sourcebook.Credential, error) {
	return s.FindCredentialsFn(ctx)
}

func (s *CredentialService) SetCredential(ctx context.Context, provider sourcebook.Provider, value string) error {
	return s.SetCredentialFn(ctx, provider, value)
}

func (s *CredentialService) MarkVerified(ctx context.Context, provider sourcebook.Provider) error {
	return s.MarkVerifiedFn(ctx, provider)
}

func (s *CredentialService) DeleteCredential(ctx context.Context, provider sourcebook.Provider) error {
	return s.DeleteCredentialFn(ctx, provider)
}
