package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

// fillUser replaces null reference arrays with empty ones. ManagedTeams is
// left to Normalize because its nil-ness carries meaning.
func fillUser(u *model.User) {
	u.WorkReports = orEmpty(u.WorkReports)
	u.Projects = orEmpty(u.Projects)
	u.Tasks = orEmpty(u.Tasks)
	u.Teams = orEmpty(u.Teams)
	u.Attendance = orEmpty(u.Attendance)
	u.Leaves = orEmpty(u.Leaves)
	u.Normalize()
}

// CreateUser inserts a new user and adds it to the company's member list.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = store.NewID()
	user.CreatedAt = now
	user.UpdatedAt = now
	fillUser(user)

	if _, err := s.coll(collUsers).InsertOne(ctx, user); err != nil {
		return classify(err, "insert user")
	}

	update := bson.D{{Key: "$addToSet", Value: bson.D{{Key: "users", Value: user.ID}}}}
	if _, err := s.coll(collCompanies).UpdateOne(ctx, byID(user.Organization), update); err != nil {
		return fmt.Errorf("link user to company: %w", err)
	}
	return nil
}

// GetUser returns a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := s.coll(collUsers).FindOne(ctx, byID(id)).Decode(&user); err != nil {
		return nil, classify(err, "get user")
	}
	fillUser(&user)
	return &user, nil
}

// ListUsers returns the users of an organization, oldest first.
func (s *Store) ListUsers(ctx context.Context, organization string) ([]model.User, error) {
	return s.listUsers(ctx, bson.D{{Key: "organization", Value: organization}})
}

// ListUsersByID returns the users with the given IDs. Unknown IDs are skipped.
func (s *Store) ListUsersByID(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	return s.listUsers(ctx, idIn(ids))
}

func (s *Store) listUsers(ctx context.Context, filter bson.D) ([]model.User, error) {
	users := []model.User{}
	if err := s.findAll(ctx, collUsers, filter, &users); err != nil {
		return nil, err
	}
	for i := range users {
		fillUser(&users[i])
	}
	return users, nil
}

// UpdateUser replaces the mutable fields of a user. Team membership is
// owned by the team writes and is left untouched.
func (s *Store) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()
	user.Normalize()

	set := bson.D{
		{Key: "firstName", Value: user.FirstName},
		{Key: "lastName", Value: user.LastName},
		{Key: "email", Value: user.Email},
		{Key: "phone", Value: user.Phone},
		{Key: "avatar", Value: user.Avatar},
		{Key: "password", Value: user.PasswordHash},
		{Key: "role", Value: user.Role},
		{Key: "manager", Value: user.Manager},
		{Key: "managed_teams", Value: user.ManagedTeams},
		{Key: "previousExperience", Value: user.PreviousExperience},
		{Key: "currentExperience", Value: user.CurrentExperience},
		{Key: "personalDetails", Value: user.PersonalDetails},
		{Key: "documents", Value: user.Documents},
		{Key: "bankDetails", Value: user.BankDetails},
		{Key: "updatedAt", Value: user.UpdatedAt},
	}
	result, err := s.coll(collUsers).UpdateOne(ctx, byID(user.ID), bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return classify(err, "update user")
	}
	return matched(result)
}

// DeleteUsers removes the listed users of organization, or all of its users
// when ids is empty, and pulls them from the company and team documents.
func (s *Store) DeleteUsers(ctx context.Context, organization string, ids []string) (int64, error) {
	filter := bson.D{{Key: "organization", Value: organization}}
	if len(ids) > 0 {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}})
	}

	var victims []struct {
		ID string `bson:"_id"`
	}
	cur, err := s.coll(collUsers).Find(ctx, filter, options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return 0, fmt.Errorf("find users to delete: %w", err)
	}
	if err := cur.All(ctx, &victims); err != nil {
		return 0, fmt.Errorf("decode users to delete: %w", err)
	}
	if len(victims) == 0 {
		return 0, nil
	}
	deleted := make([]string, len(victims))
	for i, v := range victims {
		deleted[i] = v.ID
	}

	result, err := s.coll(collUsers).DeleteMany(ctx, idIn(deleted))
	if err != nil {
		return 0, fmt.Errorf("delete users: %w", err)
	}

	in := bson.D{{Key: "$in", Value: deleted}}
	pullCompany := bson.D{{Key: "$pull", Value: bson.D{{Key: "users", Value: in}}}}
	if _, err := s.coll(collCompanies).UpdateOne(ctx, byID(organization), pullCompany); err != nil {
		return result.DeletedCount, fmt.Errorf("unlink users from company: %w", err)
	}
	pullTeams := bson.D{{Key: "$pull", Value: bson.D{
		{Key: "employees", Value: in},
		{Key: "teamLeaders", Value: in},
	}}}
	orgTeams := bson.D{{Key: "organization", Value: organization}}
	if _, err := s.coll(collTeams).UpdateMany(ctx, orgTeams, pullTeams); err != nil {
		return result.DeletedCount, fmt.Errorf("unlink users from teams: %w", err)
	}
	return result.DeletedCount, nil
}
