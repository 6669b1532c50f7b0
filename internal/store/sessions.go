package store

import (
	"context"
	"fmt"
	"time"
)

// RevokeSession marks a token id as signed out until it would have expired.
func (db *DB) RevokeSession(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO revoked_sessions (jti, expires_at) VALUES (?, ?)
		ON CONFLICT(jti) DO NOTHING
	`, jti, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("store: revoke session: %w", err)
	}
	return nil
}

// IsRevoked reports whether the token id was signed out.
func (db *DB) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT count(*) FROM revoked_sessions WHERE jti = ?`, jti).Scan(&n); err != nil {
		return false, fmt.Errorf("store: is revoked: %w", err)
	}
	return n > 0, nil
}

// PruneRevoked drops revocations whose tokens have expired anyway.
func (db *DB) PruneRevoked(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM revoked_sessions WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("store: prune revoked: %w", err)
	}
	return res.RowsAffected()
}
