package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

type teamRow struct {
	ID                   string    `db:"id"`
	Name                 string    `db:"name"`
	Description          *string   `db:"description"`
	Organization         string    `db:"organization"`
	AssignedProjectsJSON string    `db:"assigned_projects_json"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
}

type memberRow struct {
	TeamID     string `db:"team_id"`
	UserID     string `db:"user_id"`
	Membership string `db:"membership"`
}

func (s *Store) hydrateTeams(ctx context.Context, rows []teamRow) ([]model.Team, error) {
	teams := make([]model.Team, len(rows))
	if len(rows) == 0 {
		return teams, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	q, args, err := s.in(`SELECT team_id, user_id, membership FROM team_members
		WHERE team_id IN (?) ORDER BY user_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("build membership query: %w", err)
	}
	var members []memberRow
	if err := s.db.SelectContext(ctx, &members, q, args...); err != nil {
		return nil, fmt.Errorf("load team members: %w", err)
	}

	leaders := make(map[string][]string)
	employees := make(map[string][]string)
	for _, m := range members {
		if m.Membership == membershipLeader {
			leaders[m.TeamID] = append(leaders[m.TeamID], m.UserID)
		} else {
			employees[m.TeamID] = append(employees[m.TeamID], m.UserID)
		}
	}

	for i, r := range rows {
		t := model.Team{
			ID:           r.ID,
			Name:         r.Name,
			Description:  r.Description,
			Organization: r.Organization,
			TeamLeaders:  orEmpty(leaders[r.ID]),
			Employees:    orEmpty(employees[r.ID]),
			CreatedAt:    r.CreatedAt,
			UpdatedAt:    r.UpdatedAt,
		}
		if err := fromJSON(r.AssignedProjectsJSON, &t.AssignedProjects); err != nil {
			return nil, fmt.Errorf("decode assigned projects: %w", err)
		}
		t.AssignedProjects = orEmpty(t.AssignedProjects)
		teams[i] = t
	}
	return teams, nil
}

// CreateTeam inserts a team and its memberships in one transaction. Leaders
// see the team among their managed teams, employees among their teams.
func (s *Store) CreateTeam(ctx context.Context, team *model.Team) error {
	now := time.Now().UTC()
	team.ID = store.NewID()
	team.CreatedAt = now
	team.UpdatedAt = now
	team.TeamLeaders = orEmpty(team.TeamLeaders)
	team.Employees = orEmpty(team.Employees)
	team.AssignedProjects = orEmpty(team.AssignedProjects)

	projects, err := toJSON(team.AssignedProjects)
	if err != nil {
		return err
	}
	row := teamRow{
		ID:                   team.ID,
		Name:                 team.Name,
		Description:          team.Description,
		Organization:         team.Organization,
		AssignedProjectsJSON: projects,
		CreatedAt:            team.CreatedAt,
		UpdatedAt:            team.UpdatedAt,
	}

	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		const teamQ = `INSERT INTO teams
			(id, name, description, organization, assigned_projects_json, created_at, updated_at)
			VALUES
			(:id, :name, :description, :organization, :assigned_projects_json, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, teamQ, row); err != nil {
			return classify(err, "insert team")
		}

		const memberQ = `INSERT INTO team_members (team_id, user_id, membership)
			VALUES (:team_id, :user_id, :membership)`
		insert := func(userIDs []string, membership string) error {
			for _, userID := range userIDs {
				m := memberRow{TeamID: team.ID, UserID: userID, Membership: membership}
				if _, err := tx.NamedExecContext(ctx, memberQ, m); err != nil {
					return classify(err, "insert team member")
				}
			}
			return nil
		}
		if err := insert(team.TeamLeaders, membershipLeader); err != nil {
			return err
		}
		return insert(team.Employees, membershipEmployee)
	})
}

// GetTeam returns a team by ID.
func (s *Store) GetTeam(ctx context.Context, id string) (*model.Team, error) {
	var row teamRow
	if err := s.db.GetContext(ctx, &row, s.db.Rebind("SELECT * FROM teams WHERE id = ?"), id); err != nil {
		return nil, classify(err, "get team")
	}
	teams, err := s.hydrateTeams(ctx, []teamRow{row})
	if err != nil {
		return nil, err
	}
	return &teams[0], nil
}

// ListTeams returns the teams of an organization.
func (s *Store) ListTeams(ctx context.Context, organization string) ([]model.Team, error) {
	var rows []teamRow
	q := s.db.Rebind("SELECT * FROM teams WHERE organization = ? ORDER BY created_at")
	if err := s.db.SelectContext(ctx, &rows, q, organization); err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return s.hydrateTeams(ctx, rows)
}

// ListTeamsByID returns the teams with the given IDs. Unknown IDs are skipped.
func (s *Store) ListTeamsByID(ctx context.Context, ids []string) ([]model.Team, error) {
	if len(ids) == 0 {
		return []model.Team{}, nil
	}
	q, args, err := s.in("SELECT * FROM teams WHERE id IN (?) ORDER BY created_at", ids)
	if err != nil {
		return nil, fmt.Errorf("build team query: %w", err)
	}
	var rows []teamRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list teams by id: %w", err)
	}
	return s.hydrateTeams(ctx, rows)
}
