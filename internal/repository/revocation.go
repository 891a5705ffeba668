package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// RevocationRepository keeps the jti denylist in the revoked_tokens table.
type RevocationRepository struct {
	db *sql.DB
}

// NewRevocationRepository creates a new RevocationRepository.
func NewRevocationRepository(db *sql.DB) *RevocationRepository {
	return &RevocationRepository{db: db}
}

// Revoke denylists a token id until its natural expiry.
func (r *RevocationRepository) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	query := `INSERT INTO revoked_tokens (jti, expires_at) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE expires_at = VALUES(expires_at)`
	_, err := r.db.ExecContext(ctx, query, jti, expiresAt.UTC())
	return err
}

// IsRevoked reports whether the token id is denylisted and not yet expired.
func (r *RevocationRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var expiresAt time.Time
	err := r.db.QueryRowContext(ctx, `SELECT expires_at FROM revoked_tokens WHERE jti = ?`, jti).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return time.Now().Before(expiresAt), nil
}

// PurgeExpired deletes denylist rows whose tokens have expired anyway.
func (r *RevocationRepository) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
