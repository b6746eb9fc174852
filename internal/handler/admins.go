package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/service"
)

// AdminHandler manages super-admin accounts.
type AdminHandler struct {
	admins *service.AdminService
	logger *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admins *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{admins: admins, logger: logger}
}

// Register creates a super-admin.
// POST /api/v1/auth/super-admins/register
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterAdminInput
	if err := readJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	admin, err := h.admins.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusCreated, service.MsgAdminCreated, admin)
}

// List returns every super-admin.
// GET /api/v1/super-admins
func (h *AdminHandler) List(w http.ResponseWriter, r *http.Request) {
	admins, err := h.admins.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"superAdmins": admins})
}

// Get returns one super-admin with its organization.
// GET /api/v1/super-admins/{id}
func (h *AdminHandler) Get(w http.ResponseWriter, r *http.Request) {
	admin, err := h.admins.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"superAdmin": admin})
}

type updateAdminRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Avatar    *string `json:"avatar"`
}

// UpdateMe patches the caller's own profile.
// PATCH /api/v1/super-admins/me
func (h *AdminHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateAdminRequest
	if err := readJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	admin, err := h.admins.UpdateProfile(r.Context(), identity(r), model.AdminPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Avatar:    req.Avatar,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, service.MsgAdminUpdated, map[string]interface{}{"superAdmin": admin})
}

// Delete removes a super-admin and the companies it created.
// DELETE /api/v1/super-admins/{id}
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.admins.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, service.MsgAdminDeleted, nil)
}
