package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/staffhub/staffhub/internal/service"
)

// UserHandler manages the people of the organization.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Create adds a user to the caller's organization.
// POST /api/v1/auth/users/create
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserInput
	if err := readJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	user, err := h.users.Create(r.Context(), identity(r), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusCreated, "", map[string]interface{}{"user": user})
}

// List returns the organization's users.
// GET /api/v1/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context(), identity(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"users": users})
}

// Get returns one user with references expanded.
// GET /api/v1/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), identity(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"user": user})
}

// Update patches a user.
// PATCH /api/v1/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req service.UserUpdate
	if err := readJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	user, err := h.users.Update(r.Context(), identity(r), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, service.MsgUserUpdated, map[string]interface{}{"user": user})
}

type deleteUsersRequest struct {
	IDs []string `json:"ids"`
}

// Delete removes the listed users, or every user when no ids are given.
// DELETE /api/v1/users
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteUsersRequest
	if err := readJSON(r, &req, true); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	all, err := h.users.Delete(r.Context(), identity(r), req.IDs)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	msg := service.MsgUsersDeleted
	if all {
		msg = service.MsgAllUsersDeleted
	}
	writeOK(w, http.StatusOK, msg, nil)
}
