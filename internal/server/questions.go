package server

import (
	"net/http"
	"strings"

	"github.com/hwetherall/innovera-ama/internal/store"
)

func (s *Server) handleQuestionSubtree(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, "/api/questions/")
	switch {
	case len(parts) == 1:
		s.handleQuestionItem(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "answer":
		s.handleQuestionAnswer(w, r, parts[0])
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleQuestionItem(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		question, err := s.store.GetQuestion(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if question == nil {
			s.writeError(w, http.StatusNotFound, "question not found")
			return
		}
		s.writeJSON(w, http.StatusOK, question)
	case http.MethodDelete:
		if !s.requireAdmin(w, r) {
			return
		}
		deleted, err := s.store.DeleteQuestion(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if !deleted {
			s.writeError(w, http.StatusNotFound, "question not found")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleQuestionAnswer covers the manual answer flows: admins can read,
// write, and remove a single question's answer. The write replaces any
// generated answer; the row and the is_answered flag move together.
func (s *Server) handleQuestionAnswer(w http.ResponseWriter, r *http.Request, questionID string) {
	switch r.Method {
	case http.MethodGet:
		answer, err := s.store.GetAnswerByQuestion(r.Context(), questionID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if answer == nil {
			s.writeError(w, http.StatusNotFound, "answer not found")
			return
		}
		s.writeJSON(w, http.StatusOK, answer)
	case http.MethodPost:
		if !s.requireAdmin(w, r) {
			return
		}
		var req struct {
			AnswerText      string  `json:"answer_text"`
			ConfidenceScore float64 `json:"confidence_score"`
		}
		if !s.decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.AnswerText) == "" {
			s.writeError(w, http.StatusBadRequest, "answer_text required")
			return
		}
		if req.ConfidenceScore < 0 || req.ConfidenceScore > 1 {
			s.writeError(w, http.StatusBadRequest, "confidence_score must be between 0 and 1")
			return
		}
		question, err := s.store.GetQuestion(r.Context(), questionID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if question == nil {
			s.writeError(w, http.StatusNotFound, "question not found")
			return
		}
		answer, err := s.store.CreateAnswer(r.Context(), store.AnswerInsert{
			QuestionID:      questionID,
			AnswerText:      req.AnswerText,
			ConfidenceScore: req.ConfidenceScore,
		})
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, answer)
	case http.MethodDelete:
		if !s.requireAdmin(w, r) {
			return
		}
		deleted, err := s.store.DeleteAnswerByQuestion(r.Context(), questionID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if !deleted {
			s.writeError(w, http.StatusNotFound, "answer not found")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
