package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

func fillTeam(t *model.Team) {
	t.TeamLeaders = orEmpty(t.TeamLeaders)
	t.Employees = orEmpty(t.Employees)
	t.AssignedProjects = orEmpty(t.AssignedProjects)
}

// CreateTeam inserts a team and links it from the company, the employees'
// teams, and the leaders' managed teams.
func (s *Store) CreateTeam(ctx context.Context, team *model.Team) error {
	now := time.Now().UTC()
	team.ID = store.NewID()
	team.CreatedAt = now
	team.UpdatedAt = now
	fillTeam(team)

	if _, err := s.coll(collTeams).InsertOne(ctx, team); err != nil {
		return classify(err, "insert team")
	}

	addTo := func(field string) bson.D {
		return bson.D{{Key: "$addToSet", Value: bson.D{{Key: field, Value: team.ID}}}}
	}
	if _, err := s.coll(collCompanies).UpdateOne(ctx, byID(team.Organization), addTo("teams")); err != nil {
		return fmt.Errorf("link team to company: %w", err)
	}
	if len(team.Employees) > 0 {
		if _, err := s.coll(collUsers).UpdateMany(ctx, idIn(team.Employees), addTo("teams")); err != nil {
			return fmt.Errorf("link team to employees: %w", err)
		}
	}
	if len(team.TeamLeaders) > 0 {
		if _, err := s.coll(collUsers).UpdateMany(ctx, idIn(team.TeamLeaders), addTo("managed_teams")); err != nil {
			return fmt.Errorf("link team to leaders: %w", err)
		}
	}
	return nil
}

// GetTeam returns a team by ID.
func (s *Store) GetTeam(ctx context.Context, id string) (*model.Team, error) {
	var t model.Team
	if err := s.coll(collTeams).FindOne(ctx, byID(id)).Decode(&t); err != nil {
		return nil, classify(err, "get team")
	}
	fillTeam(&t)
	return &t, nil
}

// ListTeams returns the teams of an organization.
func (s *Store) ListTeams(ctx context.Context, organization string) ([]model.Team, error) {
	return s.listTeams(ctx, bson.D{{Key: "organization", Value: organization}})
}

// ListTeamsByID returns the teams with the given IDs. Unknown IDs are skipped.
func (s *Store) ListTeamsByID(ctx context.Context, ids []string) ([]model.Team, error) {
	if len(ids) == 0 {
		return []model.Team{}, nil
	}
	return s.listTeams(ctx, idIn(ids))
}

func (s *Store) listTeams(ctx context.Context, filter bson.D) ([]model.Team, error) {
	teams := []model.Team{}
	if err := s.findAll(ctx, collTeams, filter, &teams); err != nil {
		return nil, err
	}
	for i := range teams {
		fillTeam(&teams[i])
	}
	return teams, nil
}
