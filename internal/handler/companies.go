package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/staffhub/staffhub/internal/service"
)

// CompanyHandler manages the organization record.
type CompanyHandler struct {
	companies *service.CompanyService
	logger    *slog.Logger
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(companies *service.CompanyService, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{companies: companies, logger: logger}
}

// Create creates the organization. It runs before the caller belongs to one.
// POST /api/v1/companies
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CompanyInput
	if err := readJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	company, err := h.companies.Create(r.Context(), identity(r), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusCreated, service.MsgCompanyCreated, map[string]interface{}{"company": company})
}

// List returns every company with members expanded.
// GET /api/v1/companies
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companies.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"companies": companies})
}

// Get returns one company.
// GET /api/v1/companies/{id}
func (h *CompanyHandler) Get(w http.ResponseWriter, r *http.Request) {
	company, err := h.companies.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"company": company})
}

// Update merges a partial update into the company.
// PATCH /api/v1/companies/{id}
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.CompanyPatch
	if err := readJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	company, err := h.companies.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, service.MsgCompanyUpdated, company)
}

// Delete removes the company with its users and teams.
// DELETE /api/v1/companies/{id}
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.companies.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, service.MsgCompanyDeleted, nil)
}
