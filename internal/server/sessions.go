package server

import (
	"net/http"
	"strings"

	"github.com/hwetherall/innovera-ama/internal/store"
)

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sessions, err := s.store.ListSessions(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
	case http.MethodPost:
		if !s.requireAdmin(w, r) {
			return
		}
		var req struct {
			MonthYear string `json:"month_year"`
			Status    string `json:"status"`
		}
		if !s.decodeBody(w, r, &req) {
			return
		}
		req.MonthYear = strings.TrimSpace(req.MonthYear)
		if req.MonthYear == "" {
			s.writeError(w, http.StatusBadRequest, "month_year required")
			return
		}
		status := store.SessionActive
		if req.Status != "" {
			status = store.SessionStatus(req.Status)
			if !store.ValidSessionStatus(status) {
				s.writeError(w, http.StatusBadRequest, "invalid status "+req.Status)
				return
			}
		}
		if existing, err := s.store.FindSessionByMonthYear(r.Context(), req.MonthYear); err != nil {
			s.writeServiceError(w, r, err)
			return
		} else if existing != nil {
			s.writeError(w, http.StatusConflict, "session already exists for "+req.MonthYear)
			return
		}
		session, err := s.store.CreateSession(r.Context(), req.MonthYear, status)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, session)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleSessionSubtree(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, "/api/sessions/")
	switch {
	case len(parts) == 1:
		s.handleSessionItem(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "questions":
		s.handleSessionQuestions(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "answers":
		s.handleSessionAnswers(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "close":
		s.handleSessionClose(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "export":
		s.handleSessionExport(w, r, parts[0])
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleSessionItem(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		session, err := s.store.GetSession(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if session == nil {
			s.writeError(w, http.StatusNotFound, "session not found")
			return
		}
		s.writeJSON(w, http.StatusOK, session)
	case http.MethodPut:
		if !s.requireAdmin(w, r) {
			return
		}
		var req struct {
			Status string `json:"status"`
		}
		if !s.decodeBody(w, r, &req) {
			return
		}
		status := store.SessionStatus(req.Status)
		if !store.ValidSessionStatus(status) {
			s.writeError(w, http.StatusBadRequest, "invalid status "+req.Status)
			return
		}
		session, err := s.store.GetSession(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if session == nil {
			s.writeError(w, http.StatusNotFound, "session not found")
			return
		}
		if err := s.store.UpdateSessionStatus(r.Context(), id, status); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		session.Status = status
		s.writeJSON(w, http.StatusOK, session)
	case http.MethodDelete:
		if !s.requireAdmin(w, r) {
			return
		}
		deleted, err := s.store.DeleteSession(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if !deleted {
			s.writeError(w, http.StatusNotFound, "session not found")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleSessionQuestions(w http.ResponseWriter, r *http.Request, sessionID string) {
	switch r.Method {
	case http.MethodGet:
		questions, err := s.store.ListQuestions(r.Context(), sessionID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
	case http.MethodPost:
		// Question submission is anonymous; no admin session needed.
		var req struct {
			QuestionText string `json:"question_text"`
			AssignedTo   string `json:"assigned_to"`
		}
		if !s.decodeBody(w, r, &req) {
			return
		}
		if strings.TrimSpace(req.QuestionText) == "" {
			s.writeError(w, http.StatusBadRequest, "question_text required")
			return
		}
		session, err := s.store.GetSession(r.Context(), sessionID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if session == nil {
			s.writeError(w, http.StatusNotFound, "session not found")
			return
		}
		if session.Status != store.SessionActive {
			s.writeError(w, http.StatusConflict, "session is not accepting questions")
			return
		}
		question, err := s.store.CreateQuestion(r.Context(), sessionID, req.QuestionText, req.AssignedTo)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, question)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleSessionAnswers(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	answers, err := s.store.ListSessionAnswers(r.Context(), sessionID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"answers": answers})
}

// handleSessionExport returns the session with every question and its answer
// as one document, the shape the admin download uses.
func (s *Server) handleSessionExport(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	session, err := s.store.GetSession(r.Context(), sessionID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if session == nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	questions, err := s.store.ListQuestions(r.Context(), sessionID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	answers, err := s.store.ListSessionAnswers(r.Context(), sessionID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	byQuestion := make(map[string]*store.Answer, len(answers))
	for _, answer := range answers {
		byQuestion[answer.QuestionID] = answer
	}
	type exportedQuestion struct {
		*store.Question
		Answer *store.Answer `json:"answer,omitempty"`
	}
	exported := make([]exportedQuestion, 0, len(questions))
	for _, question := range questions {
		exported = append(exported, exportedQuestion{Question: question, Answer: byQuestion[question.ID]})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"session":   session,
		"questions": exported,
	})
}

// handleSessionClose moves an active session to waiting_transcript. A session
// with no questions has nothing to answer, so closing it is rejected.
func (s *Server) handleSessionClose(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	session, err := s.store.GetSession(r.Context(), sessionID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if session == nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if session.Status != store.SessionActive {
		s.writeError(w, http.StatusConflict, "session is not active")
		return
	}
	count, err := s.store.CountQuestions(r.Context(), sessionID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if count == 0 {
		s.writeError(w, http.StatusConflict, "session has no questions")
		return
	}
	if err := s.store.UpdateSessionStatus(r.Context(), sessionID, store.SessionWaitingTranscript); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	session.Status = store.SessionWaitingTranscript
	s.writeJSON(w, http.StatusOK, session)
}
