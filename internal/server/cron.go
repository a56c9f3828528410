package server

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/hwetherall/innovera-ama/internal/store"
)

// handleMonthlySession rolls the session cycle over: any still-active session
// is moved to waiting_transcript and a fresh session is opened for the
// current month. Guarded by the cron API key instead of an admin cookie so a
// scheduler can call it.
func (s *Server) handleMonthlySession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	provided := r.Header.Get("x-api-key")
	expected := s.cfg.Auth.CronAPIKey
	if expected == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
		s.writeError(w, http.StatusUnauthorized, "invalid api key")
		return
	}

	label := time.Now().Format("January 2006")
	closed, err := s.store.CloseActiveSessions(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	existing, err := s.store.FindSessionByMonthYear(r.Context(), label)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if existing != nil {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"created": false,
			"closed":  closed,
			"session": existing,
		})
		return
	}

	session, err := s.store.CreateSession(r.Context(), label, store.SessionActive)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.logger.Info("monthly session created",
		slog.String("month_year", label),
		slog.Int64("closed", closed))
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"created": true,
		"closed":  closed,
		"session": session,
	})
}
