package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/moodmusic/internal/models"
	"github.com/desertthunder/moodmusic/internal/shared"
)

const credentialColumns = "user_id, provider, access_token, refresh_token, provider_user_id, display_name, provider_email, updated_at"

// CredentialRepository persists linked provider credentials. It satisfies services.CredentialStore.
type CredentialRepository struct {
	db *sql.DB
}

// NewCredentialRepository creates a new [CredentialRepository] with the given database connection
func NewCredentialRepository(db *sql.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// Load returns the stored credential for (userID, provider), or nil when none is linked.
func (r *CredentialRepository) Load(ctx context.Context, userID string, provider models.Provider) (*models.Credential, error) {
	query := "SELECT " + credentialColumns + " FROM credentials WHERE user_id = ? AND provider = ?"

	cred, err := scanCredential(r.db.QueryRowContext(ctx, query, userID, string(provider)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query credential: %w", err)
	}
	return cred, nil
}

// Save upserts the credential for (userID, provider).
//
// Returns [shared.ErrAlreadyLinked] when the provider account is already linked to a different user.
func (r *CredentialRepository) Save(ctx context.Context, userID string, provider models.Provider, cred *models.Credential) error {
	if cred == nil {
		return fmt.Errorf("%w: nil credential", shared.ErrInvalidInput)
	}

	now := time.Now()
	query := `
		INSERT INTO credentials (user_id, provider, access_token, refresh_token, provider_user_id, display_name, provider_email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			provider_user_id = excluded.provider_user_id,
			display_name = excluded.display_name,
			provider_email = excluded.provider_email,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		userID, string(provider),
		nullString(cred.AccessToken), nullString(cred.RefreshToken),
		nullString(cred.ProviderUserID), nullString(cred.DisplayName), nullString(cred.ProviderEmail),
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s account %s", shared.ErrAlreadyLinked, provider, cred.ProviderUserID)
		}
		return fmt.Errorf("failed to save credential: %w", err)
	}

	cred.UserID = userID
	cred.Provider = provider
	cred.UpdatedAt = now
	return nil
}

// Clear removes the stored credential for (userID, provider). Clearing an unlinked provider is not an error.
func (r *CredentialRepository) Clear(ctx context.Context, userID string, provider models.Provider) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM credentials WHERE user_id = ? AND provider = ?", userID, string(provider)); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}

// ClearAll removes every credential owned by the user, used on account deletion.
func (r *CredentialRepository) ClearAll(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM credentials WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// ListByUser returns every linked credential for the user ordered by provider name.
func (r *CredentialRepository) ListByUser(ctx context.Context, userID string) ([]*models.Credential, error) {
	query := "SELECT " + credentialColumns + " FROM credentials WHERE user_id = ? ORDER BY provider ASC"

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query credentials: %w", err)
	}
	defer rows.Close()

	var creds []*models.Credential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		creds = append(creds, cred)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return creds, nil
}

func scanCredential(s scanner) (*models.Credential, error) {
	var (
		userID, provider                        string
		access, refresh, profileID, name, email sql.NullString
		updatedAt                               time.Time
	)

	if err := s.Scan(&userID, &provider, &access, &refresh, &profileID, &name, &email, &updatedAt); err != nil {
		return nil, err
	}

	return &models.Credential{
		UserID:         userID,
		Provider:       models.Provider(provider),
		AccessToken:    access.String,
		RefreshToken:   refresh.String,
		ProviderUserID: profileID.String,
		DisplayName:    name.String,
		ProviderEmail:  email.String,
		UpdatedAt:      updatedAt,
	}, nil
}
