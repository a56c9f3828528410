package server

import (
	"net/http"
	"strings"

	"github.com/hwetherall/innovera-ama/internal/conversations"
	"github.com/hwetherall/innovera-ama/internal/store"
)

func (s *Server) handleConversationSubtree(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, "/api/customer-conversations/")
	switch {
	case len(parts) == 1:
		s.handleConversationItem(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "summary":
		s.handleConversationSummary(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "notes":
		s.handleConversationNotes(w, r, parts[0])
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

type conversationDetail struct {
	Conversation *store.CustomerConversation   `json:"conversation"`
	Transcript   *store.ConversationTranscript `json:"transcript,omitempty"`
	Notes        *store.ConversationNote       `json:"notes,omitempty"`
	Summary      *store.ConversationSummary    `json:"summary,omitempty"`
}

func (s *Server) handleConversationItem(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		conversation, err := s.store.GetConversation(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if conversation == nil {
			s.writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		detail := conversationDetail{Conversation: conversation}
		if detail.Transcript, err = s.store.GetConversationTranscript(r.Context(), id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if detail.Notes, err = s.store.GetConversationNote(r.Context(), id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if detail.Summary, err = s.store.GetConversationSummary(r.Context(), id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, detail)
	case http.MethodPut:
		if !s.requireAdmin(w, r) {
			return
		}
		var req conversations.UpdateInput
		if !s.decodeBody(w, r, &req) {
			return
		}
		updated, err := s.creator.Update(r.Context(), id, req)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if !s.requireAdmin(w, r) {
			return
		}
		deleted, err := s.store.DeleteConversation(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if !deleted {
			s.writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleConversationSummary(w http.ResponseWriter, r *http.Request, conversationID string) {
	switch r.Method {
	case http.MethodGet:
		summary, err := s.store.GetConversationSummary(r.Context(), conversationID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if summary == nil {
			s.writeError(w, http.StatusNotFound, "summary not found")
			return
		}
		s.writeJSON(w, http.StatusOK, summary)
	case http.MethodPut:
		if !s.requireAdmin(w, r) {
			return
		}
		var req struct {
			Content string `json:"content"`
		}
		if !s.decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			s.writeError(w, http.StatusBadRequest, "content required")
			return
		}
		conversation, err := s.store.GetConversation(r.Context(), conversationID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if conversation == nil {
			s.writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		summary, err := s.store.UpsertConversationSummary(r.Context(), conversationID, req.Content)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, summary)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleConversationNotes(w http.ResponseWriter, r *http.Request, conversationID string) {
	switch r.Method {
	case http.MethodGet:
		note, err := s.store.GetConversationNote(r.Context(), conversationID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if note == nil {
			s.writeError(w, http.StatusNotFound, "notes not found")
			return
		}
		s.writeJSON(w, http.StatusOK, note)
	case http.MethodPut:
		if !s.requireAdmin(w, r) {
			return
		}
		var req struct {
			Content string `json:"content"`
		}
		if !s.decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.Content) == "" {
			s.writeError(w, http.StatusBadRequest, "content required")
			return
		}
		conversation, err := s.store.GetConversation(r.Context(), conversationID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if conversation == nil {
			s.writeError(w, http.StatusNotFound, "conversation not found")
			return
		}
		note, err := s.store.UpsertConversationNote(r.Context(), conversationID, req.Content)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, note)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleSummaryRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	records, err := s.store.ListSummaryRecords(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"summaries": records})
}
