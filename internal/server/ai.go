package server

import "net/http"

func (s *Server) handleAskAnything(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req struct {
		Question string `json:"question"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	result, err := s.answerer.Ask(r.Context(), req.Question)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
