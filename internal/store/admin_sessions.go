package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// AddAdminSession records an admin session token with its expiry.
func (s *Store) AddAdminSession(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO admin_sessions (token, expires_at) VALUES (?, ?)
         ON CONFLICT(token) DO UPDATE SET expires_at = excluded.expires_at`,
		token, expiresAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert admin session: %w", err)
	}
	return nil
}

// HasAdminSession reports whether the token exists and is unexpired. Expired
// rows are evicted on lookup.
func (s *Store) HasAdminSession(ctx context.Context, token string) (bool, error) {
	var expiresRaw string
	err := s.db.QueryRowContext(ctx, `SELECT expires_at FROM admin_sessions WHERE token = ?`, token).Scan(&expiresRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup admin session: %w", err)
	}
	expires, err := parseTimeString(expiresRaw)
	if err != nil {
		return false, fmt.Errorf("parse session expiry: %w", err)
	}
	if time.Now().After(expires) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE token = ?`, token)
		return false, nil
	}
	return true, nil
}

// RemoveAdminSession deletes a session token.
func (s *Store) RemoveAdminSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete admin session: %w", err)
	}
	return nil
}

// PurgeExpiredAdminSessions removes every expired token and returns the count.
func (s *Store) PurgeExpiredAdminSessions(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM admin_sessions WHERE expires_at < ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("purge admin sessions: %w", err)
	}
	return res.RowsAffected()
}
