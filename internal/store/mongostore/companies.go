package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

func fillCompany(c *model.Company) {
	c.Users = orEmpty(c.Users)
	c.Teams = orEmpty(c.Teams)
	c.Projects = orEmpty(c.Projects)
	c.Tasks = orEmpty(c.Tasks)
}

// CreateCompany inserts a new company with empty member lists.
func (s *Store) CreateCompany(ctx context.Context, company *model.Company) error {
	now := time.Now().UTC()
	company.ID = store.NewID()
	company.CreatedAt = now
	company.UpdatedAt = now
	fillCompany(company)

	if _, err := s.coll(collCompanies).InsertOne(ctx, company); err != nil {
		return classify(err, "insert company")
	}
	return nil
}

// CountCompanies returns the number of companies.
func (s *Store) CountCompanies(ctx context.Context) (int, error) {
	n, err := s.coll(collCompanies).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return int(n), nil
}

// GetCompany returns a company by ID.
func (s *Store) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	var c model.Company
	if err := s.coll(collCompanies).FindOne(ctx, byID(id)).Decode(&c); err != nil {
		return nil, classify(err, "get company")
	}
	fillCompany(&c)
	return &c, nil
}

// ListCompanies returns all companies.
func (s *Store) ListCompanies(ctx context.Context) ([]model.Company, error) {
	companies := []model.Company{}
	if err := s.findAll(ctx, collCompanies, bson.D{}, &companies); err != nil {
		return nil, err
	}
	for i := range companies {
		fillCompany(&companies[i])
	}
	return companies, nil
}

// UpdateCompany replaces the mutable fields of a company.
func (s *Store) UpdateCompany(ctx context.Context, company *model.Company) error {
	company.UpdatedAt = time.Now().UTC()
	set := bson.D{
		{Key: "name", Value: company.Name},
		{Key: "industry", Value: company.Industry},
		{Key: "description", Value: company.Description},
		{Key: "logo", Value: company.Logo},
		{Key: "establishedDate", Value: company.EstablishedDate},
		{Key: "address", Value: company.Address},
		{Key: "contact", Value: company.Contact},
		{Key: "updatedAt", Value: company.UpdatedAt},
	}
	result, err := s.coll(collCompanies).UpdateOne(ctx, byID(company.ID), bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return classify(err, "update company")
	}
	return matched(result)
}

// DeleteCompany removes a company, then its users and teams, and detaches
// its admins.
func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	result, err := s.coll(collCompanies).DeleteOne(ctx, byID(id))
	if err != nil {
		return fmt.Errorf("delete company: %w", err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}

	org := bson.D{{Key: "organization", Value: id}}
	if _, err := s.coll(collUsers).DeleteMany(ctx, org); err != nil {
		return fmt.Errorf("delete company users: %w", err)
	}
	if _, err := s.coll(collTeams).DeleteMany(ctx, org); err != nil {
		return fmt.Errorf("delete company teams: %w", err)
	}
	detach := bson.D{{Key: "$set", Value: bson.D{
		{Key: "organization", Value: nil},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	if _, err := s.coll(collAdmins).UpdateMany(ctx, org, detach); err != nil {
		return fmt.Errorf("detach admins: %w", err)
	}
	return nil
}
