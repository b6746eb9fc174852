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

// CreateAdmin inserts a new super-admin.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	now := time.Now().UTC()
	admin.ID = store.NewID()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	if _, err := s.coll(collAdmins).InsertOne(ctx, admin); err != nil {
		return classify(err, "insert admin")
	}
	return nil
}

// CountAdmins returns the number of super-admin accounts.
func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	n, err := s.coll(collAdmins).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return int(n), nil
}

// GetAdmin returns a super-admin by ID.
func (s *Store) GetAdmin(ctx context.Context, id string) (*model.Admin, error) {
	var admin model.Admin
	if err := s.coll(collAdmins).FindOne(ctx, byID(id)).Decode(&admin); err != nil {
		return nil, classify(err, "get admin")
	}
	return &admin, nil
}

// ListAdmins returns all super-admin accounts, oldest first.
func (s *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	admins := []model.Admin{}
	if err := s.findAll(ctx, collAdmins, bson.D{}, &admins); err != nil {
		return nil, err
	}
	return admins, nil
}

// UpdateAdmin applies a profile patch and returns the updated record.
func (s *Store) UpdateAdmin(ctx context.Context, id string, patch model.AdminPatch) (*model.Admin, error) {
	set := bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}
	if patch.FirstName != nil {
		set = append(set, bson.E{Key: "firstName", Value: *patch.FirstName})
	}
	if patch.LastName != nil {
		set = append(set, bson.E{Key: "lastName", Value: *patch.LastName})
	}
	if patch.Email != nil {
		set = append(set, bson.E{Key: "email", Value: *patch.Email})
	}
	if patch.Avatar != nil {
		set = append(set, bson.E{Key: "avatar", Value: *patch.Avatar})
	}

	var admin model.Admin
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.coll(collAdmins).FindOneAndUpdate(ctx, byID(id), bson.D{{Key: "$set", Value: set}}, opts).Decode(&admin)
	if err != nil {
		return nil, classify(err, "update admin")
	}
	return &admin, nil
}

// SetAdminOrganization attaches one admin, or every admin when id is empty,
// to organization.
func (s *Store) SetAdminOrganization(ctx context.Context, id string, organization *string) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "organization", Value: organization},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	if id == "" {
		if _, err := s.coll(collAdmins).UpdateMany(ctx, bson.D{}, update); err != nil {
			return classify(err, "set admins organization")
		}
		return nil
	}
	result, err := s.coll(collAdmins).UpdateOne(ctx, byID(id), update)
	if err != nil {
		return classify(err, "set admin organization")
	}
	return matched(result)
}

// DeleteAdmin removes a super-admin by ID.
func (s *Store) DeleteAdmin(ctx context.Context, id string) error {
	result, err := s.coll(collAdmins).DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
