package server

import (
	"net/http"
	"strings"
)

func (s *Server) handleTranscripts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
		transcripts, err := s.store.ListTranscripts(r.Context(), sessionID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"transcripts": transcripts})
	case http.MethodPost:
		if !s.requireAdmin(w, r) {
			return
		}
		var req struct {
			SessionID string `json:"session_id"`
			Content   string `json:"content"`
		}
		if !s.decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.SessionID) == "" {
			s.writeError(w, http.StatusBadRequest, "session_id required")
			return
		}
		result, err := s.ingestor.CreateTranscriptAndAnswerSession(r.Context(), req.SessionID, req.Content)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, result)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleTranscriptItem(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, "/api/transcripts/")
	if len(parts) != 1 {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	id := parts[0]
	switch r.Method {
	case http.MethodGet:
		transcript, err := s.store.GetTranscript(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if transcript == nil {
			s.writeError(w, http.StatusNotFound, "transcript not found")
			return
		}
		s.writeJSON(w, http.StatusOK, transcript)
	case http.MethodDelete:
		if !s.requireAdmin(w, r) {
			return
		}
		deleted, err := s.store.DeleteTranscript(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if !deleted {
			s.writeError(w, http.StatusNotFound, "transcript not found")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
