package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

// quotaSlotField numbers the documents written by the limited inserts. A
// partial unique index on it lets at most one insert claim each slot, so a
// collection never holds more than limit slotted documents.
const quotaSlotField = "quotaSlot"

// insertSlotted inserts doc into the first free slot below limit. Documents
// written before slots existed occupy the lowest slots.
func (s *Store) insertSlotted(ctx context.Context, coll string, doc any, limit int) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", coll, err)
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return fmt.Errorf("encode %s: %w", coll, err)
	}

	unslotted, err := s.coll(coll).CountDocuments(ctx, bson.D{
		{Key: quotaSlotField, Value: bson.D{{Key: "$exists", Value: false}}},
	})
	if err != nil {
		return fmt.Errorf("count %s: %w", coll, err)
	}
	for slot := int(unslotted); slot < limit; slot++ {
		slotted := append(fields[:len(fields):len(fields)], bson.E{Key: quotaSlotField, Value: slot})
		_, err := s.coll(coll).InsertOne(ctx, slotted)
		if err == nil {
			return nil
		}
		if !slotTaken(err) {
			return classify(err, "insert "+coll)
		}
	}
	return store.ErrQuota
}

func slotTaken(err error) bool {
	return mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), quotaSlotField)
}

// CreateAdminLimited inserts admin unless limit admins already exist. The
// organization lookup runs after the insert so an admin racing the company
// creation is attached by one side or the other.
func (s *Store) CreateAdminLimited(ctx context.Context, admin *model.Admin, limit int) error {
	now := time.Now().UTC()
	admin.ID = store.NewID()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	if err := s.insertSlotted(ctx, collAdmins, admin, limit); err != nil {
		return err
	}

	var company model.Company
	err := s.coll(collCompanies).FindOne(ctx, bson.D{},
		options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})).Decode(&company)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find organization: %w", err)
	}
	admin.Organization = &company.ID
	return s.SetAdminOrganization(ctx, admin.ID, admin.Organization)
}

// CreateCompanyLimited inserts company unless limit companies already exist
// and attaches every admin to it.
func (s *Store) CreateCompanyLimited(ctx context.Context, company *model.Company, limit int) error {
	now := time.Now().UTC()
	company.ID = store.NewID()
	company.CreatedAt = now
	company.UpdatedAt = now
	fillCompany(company)

	if err := s.insertSlotted(ctx, collCompanies, company, limit); err != nil {
		return err
	}
	return s.SetAdminOrganization(ctx, "", &company.ID)
}
