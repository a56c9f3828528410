// Package server exposes the REST API: session and question management,
// transcript ingestion, customer conversation tracking, and the ask-anything
// endpoint. Handlers follow a thin pattern: decode, call the service, map the
// error to a status code.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hwetherall/innovera-ama/internal/askanything"
	"github.com/hwetherall/innovera-ama/internal/auth"
	"github.com/hwetherall/innovera-ama/internal/config"
	"github.com/hwetherall/innovera-ama/internal/conversations"
	"github.com/hwetherall/innovera-ama/internal/ingest"
	"github.com/hwetherall/innovera-ama/internal/logging"
	"github.com/hwetherall/innovera-ama/internal/services"
	"github.com/hwetherall/innovera-ama/internal/store"
)

const sessionCookieName = "admin_session"

// Server hosts the HTTP API.
type Server struct {
	cfg      *config.Config
	store    *store.Store
	logger   *slog.Logger
	sessions auth.SessionStore
	ingestor *ingest.Ingestor
	creator  *conversations.Creator
	answerer *askanything.Answerer

	listener net.Listener
	server   *http.Server
}

// New wires the API server. The listener is created by Start.
func New(
	cfg *config.Config,
	st *store.Store,
	sessions auth.SessionStore,
	ingestor *ingest.Ingestor,
	creator *conversations.Creator,
	answerer *askanything.Answerer,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	srv := &Server{
		cfg:      cfg,
		store:    st,
		logger:   logger.With(slog.String("component", "api")),
		sessions: sessions,
		ingestor: ingestor,
		creator:  creator,
		answerer: answerer,
	}
	srv.server = &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler builds the route table. Exposed for handler tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", s.handleSessions)
	mux.HandleFunc("/api/sessions/", s.handleSessionSubtree)
	mux.HandleFunc("/api/questions/", s.handleQuestionSubtree)
	mux.HandleFunc("/api/transcripts", s.handleTranscripts)
	mux.HandleFunc("/api/transcripts/", s.handleTranscriptItem)
	mux.HandleFunc("/api/companies", s.handleCompanies)
	mux.HandleFunc("/api/companies/", s.handleCompanySubtree)
	mux.HandleFunc("/api/customer-conversations/", s.handleConversationSubtree)
	mux.HandleFunc("/api/customer-conversations/summaries", s.handleSummaryRecords)
	mux.HandleFunc("/api/tags", s.handleTags)
	mux.HandleFunc("/api/tags/", s.handleTagItem)
	mux.HandleFunc("/api/ai/ask-anything", s.handleAskAnything)
	mux.HandleFunc("/api/cron/monthly-session", s.handleMonthlySession)
	mux.HandleFunc("/api/auth/login", s.handleLogin)
	mux.HandleFunc("/api/auth/logout", s.handleLogout)
	mux.HandleFunc("/api/auth/check", s.handleAuthCheck)
	return s.withRequestID(mux)
}

// withRequestID tags each request with a correlation identifier so downstream
// log lines and the response header can be matched up.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

// Start binds the listener and serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.Paths.Bind)
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the bound address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a service error onto the HTTP surface. 5xx details
// are logged but not echoed to the client.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := services.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		attrs := []any{
			slog.String("path", r.URL.Path),
			logging.Error(err),
		}
		if id, ok := services.RequestIDFromContext(r.Context()); ok {
			attrs = append(attrs, slog.String("request_id", id))
		}
		s.logger.Error("request failed", attrs...)
		s.writeError(w, status, "internal error")
		return
	}
	s.writeError(w, status, err.Error())
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// requireAdmin enforces the admin session cookie. It writes the error
// response itself and reports whether the request may proceed.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		s.writeError(w, http.StatusUnauthorized, "admin session required")
		return false
	}
	ok, err := s.sessions.Has(r.Context(), cookie.Value)
	if err != nil {
		s.writeServiceError(w, r, err)
		return false
	}
	if !ok {
		s.writeError(w, http.StatusUnauthorized, "admin session expired")
		return false
	}
	return true
}

// pathParts splits the path remainder after prefix into trimmed segments.
func pathParts(r *http.Request, prefix string) []string {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}
