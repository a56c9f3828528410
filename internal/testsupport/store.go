package testsupport

import (
	"context"
	"testing"

	"github.com/hwetherall/innovera-ama/internal/config"
	"github.com/hwetherall/innovera-ama/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewSession creates a session for tests using the provided store.
func NewSession(t testing.TB, st *store.Store, monthYear string) *store.Session {
	t.Helper()

	session, err := st.CreateSession(context.Background(), monthYear, store.SessionActive)
	if err != nil {
		t.Fatalf("store.CreateSession: %v", err)
	}
	return session
}

// NewQuestion appends a question to a session for tests.
func NewQuestion(t testing.TB, st *store.Store, sessionID, text string) *store.Question {
	t.Helper()

	question, err := st.CreateQuestion(context.Background(), sessionID, text, "")
	if err != nil {
		t.Fatalf("store.CreateQuestion: %v", err)
	}
	return question
}
