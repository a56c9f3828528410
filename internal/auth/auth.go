// Package auth manages admin login sessions. Tokens are random, carried in a
// cookie, and validated against a SessionStore; the memory store mirrors the
// single-process behavior of the original deployment while the database store
// survives restarts.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/hwetherall/innovera-ama/internal/store"
)

// SessionStore tracks valid admin session tokens.
type SessionStore interface {
	Add(ctx context.Context, token string) error
	Has(ctx context.Context, token string) (bool, error)
	Remove(ctx context.Context, token string) error
}

// NewToken returns a 64-character random hex token.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// MemoryStore keeps sessions in process memory. Expired entries are evicted
// lazily on lookup.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	expires map[string]time.Time
	now     func() time.Time
}

// NewMemoryStore builds a MemoryStore with the given session lifetime.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Add registers a token.
func (m *MemoryStore) Add(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expires[token] = m.now().Add(m.ttl)
	return nil
}

// Has reports whether a token is present and unexpired.
func (m *MemoryStore) Has(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.expires[token]
	if !ok {
		return false, nil
	}
	if m.now().After(expiry) {
		delete(m.expires, token)
		return false, nil
	}
	return true, nil
}

// Remove deletes a token.
func (m *MemoryStore) Remove(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.expires, token)
	return nil
}

// DBStore persists sessions in the admin_sessions table so logins survive a
// restart.
type DBStore struct {
	store *store.Store
	ttl   time.Duration
}

// NewDBStore builds a DBStore with the given session lifetime.
func NewDBStore(st *store.Store, ttl time.Duration) *DBStore {
	return &DBStore{store: st, ttl: ttl}
}

// Add registers a token.
func (d *DBStore) Add(ctx context.Context, token string) error {
	return d.store.AddAdminSession(ctx, token, time.Now().Add(d.ttl))
}

// Has reports whether a token is present and unexpired.
func (d *DBStore) Has(ctx context.Context, token string) (bool, error) {
	return d.store.HasAdminSession(ctx, token)
}

// Remove deletes a token.
func (d *DBStore) Remove(ctx context.Context, token string) error {
	return d.store.RemoveAdminSession(ctx, token)
}
