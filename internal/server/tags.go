package server

import (
	"net/http"
	"strings"

	"github.com/hwetherall/innovera-ama/internal/tagging"
)

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		tags, err := s.store.ListTags(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
	case http.MethodPost:
		if !s.requireAdmin(w, r) {
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if !s.decodeBody(w, r, &req) {
			return
		}
		name := tagging.NormalizeName(req.Name)
		if name == "" {
			s.writeError(w, http.StatusBadRequest, "name required")
			return
		}
		if existing, err := s.store.FindTagByName(r.Context(), name); err != nil {
			s.writeServiceError(w, r, err)
			return
		} else if existing != nil {
			s.writeError(w, http.StatusConflict, "tag already exists")
			return
		}
		tag, err := s.store.CreateTag(r.Context(), name)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, tag)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleTagItem(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, "/api/tags/")
	if len(parts) != 1 {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	id := strings.TrimSpace(parts[0])
	if r.Method != http.MethodDelete {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if !s.requireAdmin(w, r) {
		return
	}
	deleted, err := s.store.DeleteTag(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !deleted {
		s.writeError(w, http.StatusNotFound, "tag not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
