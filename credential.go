package sourcebook

import (
	"context"
	"time"
)

// Credential is a stored provider credential: an API key, or the server URL
// for host-based providers.
type Credential struct {
	Provider Provider `json:"provider"`
	Value    string   `json:"-"`

	// Verified is set after the credential passes a validation probe and
	// cleared whenever the value changes.
	Verified  bool      `json:"verified"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate returns an error if the credential contains invalid fields.
func (c *Credential) Validate() error {
	if !c.Provider.Valid() {
		return Errorf(EINVALID, "unknown provider %q", c.Provider)
	}
	if c.Value == "" {
		return Errorf(EINVALID, "credential value required")
	}
	return nil
}

// CredentialService stores provider credentials.
type CredentialService interface {
	// FindCredential retrieves the stored credential for a provider.
	// Returns ENOTFOUND if none is stored.
	FindCredential(ctx context.Context, provider Provider) (*Credential, error)

	// FindCredentials lists all stored credentials.
	FindCredentials(ctx context.Context) ([]*Credential, error)

	// SetCredential stores or replaces a provider credential. Changing the
	// value clears the verified flag.
	SetCredential(ctx context.Context, provider Provider, value string) error

	// MarkVerified records that a credential passed a validation probe.
	// Returns ENOTFOUND if no credential is stored for the provider.
	MarkVerified(ctx context.Context, provider Provider) error

	// DeleteCredential removes a stored credential.
	// Returns ENOTFOUND if none is stored.
	DeleteCredential(ctx context.Context, provider Provider) error
}
