package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/staffhub/staffhub/internal/service"
)

// TeamHandler manages teams.
type TeamHandler struct {
	teams  *service.TeamService
	logger *slog.Logger
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teams *service.TeamService, logger *slog.Logger) *TeamHandler {
	return &TeamHandler{teams: teams, logger: logger}
}

// Create adds a team.
// POST /api/v1/teams
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTeamInput
	if err := readJSON(r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	team, err := h.teams.Create(r.Context(), identity(r), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusCreated, service.MsgTeamCreated, map[string]interface{}{"team": team})
}

// List returns the organization's teams.
// GET /api/v1/teams
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.List(r.Context(), identity(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"teams": teams})
}

// Get returns one team.
// GET /api/v1/teams/{id}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	team, err := h.teams.Get(r.Context(), identity(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeOK(w, http.StatusOK, "", map[string]interface{}{"team": team})
}
