package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ledgerkeep/ledgerkeep/internal/client/storage"
)

// Compile-time check that Storage implements AuthStorage
var _ storage.AuthStorage = (*Storage)(nil)

// SaveAuth stores or replaces authentication data.
// В таблице всегда не больше одной строки (id = 1).
func (s *Storage) SaveAuth(ctx context.Context, auth *storage.AuthData) error {
	query := `
		INSERT INTO auth (id, username, access_token, expires_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			access_token = excluded.access_token,
			expires_at = excluded.expires_at
	`

	if _, err := s.db.ExecContext(ctx, query, auth.Username, auth.AccessToken, auth.ExpiresAt); err != nil {
		return fmt.Errorf("failed to save auth data: %w", err)
	}

	return nil
}

// GetAuth retrieves authentication data
func (s *Storage) GetAuth(ctx context.Context) (*storage.AuthData, error) {
	query := `SELECT username, access_token, expires_at FROM auth WHERE id = 1`

	auth := &storage.AuthData{}
	err := s.db.QueryRowContext(ctx, query).Scan(&auth.Username, &auth.AccessToken, &auth.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrAuthNotFound
		}
		return nil, fmt.Errorf("failed to get auth data: %w", err)
	}

	return auth, nil
}

// DeleteAuth removes stored authentication data
func (s *Storage) DeleteAuth(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM auth WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to delete auth data: %w", err)
	}
	return nil
}
