package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fwojciec/sourcebook"
)

// Compile-time interface verification.
var _ sourcebook.CredentialService = (*CredentialService)(nil)

// CredentialService implements sourcebook.CredentialService using SQLite.
// One row per provider; setting a credential resets its verified flag.
type CredentialService struct {
	db *DB
}

// NewCredentialService creates a new CredentialService.
func NewCredentialService(db *DB) *CredentialService {
	return &CredentialService{db: db}
}

// FindCredential retrieves the stored credential for a provider.
func (s *CredentialService) FindCredential(ctx context.Context, provider sourcebook.Provider) (*sourcebook.Credential, error) {
	var cred sourcebook.Credential
	var updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT provider, value, verified, updated_at
		FROM credentials
		WHERE provider = ?
	`, provider).Scan(&cred.Provider, &cred.Value, &cred.Verified, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, sourcebook.Errorf(sourcebook.ENOTFOUND, "no credential stored for provider %q", provider)
	}
	if err != nil {
		return nil, err
	}

	if cred.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &cred, nil
}

// FindCredentials retrieves all stored credentials ordered by provider.
func (s *CredentialService) FindCredentials(ctx context.Context) ([]*sourcebook.Credential, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT provider, value, verified, updated_at
		FROM credentials
		ORDER BY provider ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creds []*sourcebook.Credential
	for rows.Next() {
		var cred sourcebook.Credential
		var updatedAt string

		if err := rows.Scan(&cred.Provider, &cred.Value, &cred.Verified, &updatedAt); err != nil {
			return nil, err
		}
		if cred.UpdatedAt, err = parseTime(updatedAt, "updated_at"); err != nil {
			return nil, err
		}

		creds = append(creds, &cred)
	}

	return creds, rows.Err()
}

// SetCredential stores or replaces the credential for a provider. The
// verified flag is cleared until the next successful validation.
func (s *CredentialService) SetCredential(ctx context.Context, provider sourcebook.Provider, value string) error {
	cred := sourcebook.Credential{Provider: provider, Value: value}
	if err := cred.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (provider, value, verified, updated_at)
		VALUES (?, ?, 0, ?)
		ON CONFLICT (provider) DO UPDATE SET
			value = excluded.value,
			verified = 0,
			updated_at = excluded.updated_at
	`, provider, value, formatTime(time.Now()))
	return err
}

// MarkVerified records that the stored credential passed validation.
func (s *CredentialService) MarkVerified(ctx context.Context, provider sourcebook.Provider) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE credentials
		SET verified = 1, updated_at = ?
		WHERE provider = ?
	`, formatTime(time.Now()), provider)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sourcebook.Errorf(sourcebook.ENOTFOUND, "no credential stored for provider %q", provider)
	}

	return nil
}

// DeleteCredential removes the stored credential for a provider.
func (s *CredentialService) DeleteCredential(ctx context.Context, provider sourcebook.Provider) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM credentials WHERE provider = ?", provider)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sourcebook.Errorf(sourcebook.ENOTFOUND, "no credential stored for provider %q", provider)
	}

	return nil
}
