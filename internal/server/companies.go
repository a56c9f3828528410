package server

import (
	"net/http"
	"strings"

	"github.com/hwetherall/innovera-ama/internal/conversations"
	"github.com/hwetherall/innovera-ama/internal/store"
)

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		companies, err := s.store.ListCompanies(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"companies": companies})
	case http.MethodPost:
		if !s.requireAdmin(w, r) {
			return
		}
		var req struct {
			CompanyName string `json:"company_name"`
			CompanyType string `json:"company_type"`
		}
		if !s.decodeBody(w, r, &req) {
			return
		}
		req.CompanyName = strings.TrimSpace(req.CompanyName)
		if req.CompanyName == "" {
			s.writeError(w, http.StatusBadRequest, "company_name required")
			return
		}
		companyType := store.CompanyType(req.CompanyType)
		if !store.ValidCompanyType(companyType) {
			s.writeError(w, http.StatusBadRequest, "invalid company_type "+req.CompanyType)
			return
		}
		company, err := s.store.CreateCompany(r.Context(), req.CompanyName, companyType)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, company)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCompanySubtree(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r, "/api/companies/")
	switch {
	case len(parts) == 1:
		s.handleCompanyItem(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "customer-conversations":
		s.handleCompanyConversations(w, r, parts[0])
	default:
		s.writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleCompanyItem(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodGet:
		company, err := s.store.GetCompany(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if company == nil {
			s.writeError(w, http.StatusNotFound, "company not found")
			return
		}
		s.writeJSON(w, http.StatusOK, company)
	case http.MethodDelete:
		if !s.requireAdmin(w, r) {
			return
		}
		deleted, err := s.store.DeleteCompany(r.Context(), id)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if !deleted {
			s.writeError(w, http.StatusNotFound, "company not found")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleCompanyConversations(w http.ResponseWriter, r *http.Request, companyID string) {
	switch r.Method {
	case http.MethodGet:
		listed, err := s.store.ListConversationsForCompany(r.Context(), companyID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"conversations": listed})
	case http.MethodPost:
		if !s.requireAdmin(w, r) {
			return
		}
		var req conversations.Input
		if !s.decodeBody(w, r, &req) {
			return
		}
		req.CompanyID = companyID
		out, err := s.creator.Create(r.Context(), req)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusCreated, out)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
