package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/staffhub/staffhub/internal/apperr"
	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

const (
	MsgTeamCreated  = "Team created successfully."
	MsgTeamConflict = "A team with the same name already exists."
	MsgTeamNotFound = "Team not found."
)

// CreateTeamInput is the body of team creation.
type CreateTeamInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	TeamLeaders []string `json:"teamLeaders"`
	Employees   []string `json:"employees"`
}

// TeamService manages teams inside the organization.
type TeamService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTeamService returns a team service.
func NewTeamService(st store.Store, logger *slog.Logger) *TeamService {
	return &TeamService{store: st, logger: logger}
}

// Create adds a team to the caller's organization. Leaders must be managers
// and every member must belong to the organization.
func (s *TeamService) Create(ctx context.Context, id *Identity, in CreateTeamInput) (*model.Team, error) {
	if !id.Role.In(model.RoleAdmin, model.RoleManager) {
		return nil, apperr.Forbidden()
	}
	if !required(in.Name) || len(in.TeamLeaders) == 0 {
		return nil, apperr.Validation("Team name and at least one team leader are required.")
	}
	leaders := dedupe(in.TeamLeaders)
	employees := dedupe(in.Employees)

	members, err := s.members(ctx, append(append([]string{}, leaders...), employees...))
	if err != nil {
		return nil, err
	}
	for _, lid := range leaders {
		u, ok := members[lid]
		if !ok || u.Organization != id.Organization {
			return nil, apperr.Validation("Team leader " + lid + " is not a member of the organization.")
		}
		if u.Role != model.RoleManager {
			return nil, apperr.Validation("Team leader " + lid + " is not a manager.")
		}
	}
	for _, eid := range employees {
		u, ok := members[eid]
		if !ok || u.Organization != id.Organization {
			return nil, apperr.Validation("Employee " + eid + " is not a member of the organization.")
		}
	}

	team := &model.Team{
		Name:         in.Name,
		Description:  model.StringPtr(in.Description),
		Organization: id.Organization,
		TeamLeaders:  leaders,
		Employees:    employees,
	}
	if err := s.store.CreateTeam(ctx, team); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict(MsgTeamConflict)
		}
		return nil, apperr.Internal("create team", err)
	}
	s.logger.Info("team created", "team", team.ID, "by", id.ID)
	return team, nil
}

func (s *TeamService) members(ctx context.Context, ids []string) (map[string]model.User, error) {
	for _, uid := range ids {
		if !store.ValidID(uid) {
			return nil, apperr.Validation("Missing or invalid ID")
		}
	}
	users, err := s.store.ListUsersByID(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("load team members", err)
	}
	byID := make(map[string]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

// List returns the teams of the caller's organization.
func (s *TeamService) List(ctx context.Context, id *Identity) ([]model.Team, error) {
	teams, err := s.store.ListTeams(ctx, id.Organization)
	if err != nil {
		return nil, apperr.Internal("list teams", err)
	}
	return teams, nil
}

// Get returns a team of the caller's organization.
func (s *TeamService) Get(ctx context.Context, id *Identity, teamID string) (*model.Team, error) {
	if !store.ValidID(teamID) {
		return nil, apperr.Validation("Missing or invalid ID")
	}
	team, err := s.store.GetTeam(ctx, teamID)
	if errors.Is(err, store.ErrNotFound) || err == nil && team.Organization != id.Organization {
		return nil, apperr.NotFound(MsgTeamNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("get team", err)
	}
	return team, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
