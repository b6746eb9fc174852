// Package mongostore implements store.Store on MongoDB. Documents keep their
// reference arrays inline, so every write that changes membership also
// updates the documents on the other side of the reference.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/staffhub/staffhub/internal/database"
	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

// Collection names.
const (
	collAdmins    = "superadmins"
	collUsers     = "users"
	collCompanies = "companies"
	collTeams     = "teams"
)

// Store persists staffhub records in a MongoDB database.
type Store struct {
	pool *database.Pool
	db   *mongo.Database
}

var _ store.Store = (*Store)(nil)

// New resolves the database from pool, connecting if needed, and ensures
// the unique indexes exist.
func New(ctx context.Context, pool *database.Pool) (*Store, error) {
	db, err := pool.Database(ctx)
	if err != nil {
		return nil, err
	}
	s := &Store{pool: pool, db: db}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	unique := func(keys ...string) []mongo.IndexModel {
		models := make([]mongo.IndexModel, len(keys))
		for i, k := range keys {
			models[i] = mongo.IndexModel{
				Keys:    bson.D{{Key: k, Value: 1}},
				Options: options.Index().SetUnique(true),
			}
		}
		return models
	}
	slot := mongo.IndexModel{
		Keys: bson.D{{Key: quotaSlotField, Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.D{{Key: quotaSlotField, Value: bson.D{{Key: "$exists", Value: true}}}}),
	}
	indexes := map[string][]mongo.IndexModel{
		collAdmins:    append(unique("email"), slot),
		collUsers:     append(unique("email", "phone"), mongo.IndexModel{Keys: bson.D{{Key: "organization", Value: 1}}}),
		collCompanies: append(unique("name", "contact.email"), slot),
		collTeams:     append(unique("name"), mongo.IndexModel{Keys: bson.D{{Key: "organization", Value: 1}}}),
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%s: %w", coll, err)
		}
	}
	return nil
}

// Ping verifies the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close disconnects the pool's client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.pool.Close(ctx)
}

// Database exposes the underlying database for tests.
func (s *Store) Database() *mongo.Database {
	return s.db
}

func (s *Store) coll(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func collectionFor(kind model.Kind) (string, error) {
	switch kind {
	case model.KindAdmin:
		return collAdmins, nil
	case model.KindUser:
		return collUsers, nil
	default:
		return "", fmt.Errorf("unknown principal kind %q", kind)
	}
}

// classify translates driver errors into store sentinels.
func classify(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, store.ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func matched(result *mongo.UpdateResult) error {
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func byID(id string) bson.D {
	return bson.D{{Key: "_id", Value: id}}
}

func idIn(ids []string) bson.D {
	return bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}}
}

func oldestFirst() *options.FindOptionsBuilder {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

// findAll decodes every document matching filter into out.
func (s *Store) findAll(ctx context.Context, coll string, filter any, out any) error {
	cur, err := s.coll(coll).Find(ctx, filter, oldestFirst())
	if err != nil {
		return fmt.Errorf("find %s: %w", coll, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s: %w", coll, err)
	}
	return nil
}
