package server

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/hwetherall/innovera-ama/internal/auth"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	expected := s.cfg.Auth.AdminPassword
	if expected == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(expected)) != 1 {
		s.writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}

	token, err := auth.NewToken()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := s.sessions.Add(r.Context(), token); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.writeJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := s.sessions.Remove(r.Context(), cookie.Value); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.writeJSON(w, http.StatusOK, map[string]bool{"authenticated": false})
}

func (s *Server) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	authenticated := false
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		ok, err := s.sessions.Has(r.Context(), cookie.Value)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		authenticated = ok
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"authenticated": authenticated})
}

func (s *Server) sessionTTL() time.Duration {
	hours := s.cfg.Auth.SessionTTLHours
	if hours <= 0 {
		hours = 8
	}
	return time.Duration(hours) * time.Hour
}
