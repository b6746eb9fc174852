package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/staffhub/staffhub/internal/model"
)

// FindPrincipal returns the admin or user with the given id.
func (s *Store) FindPrincipal(ctx context.Context, kind model.Kind, id string) (model.Principal, error) {
	return s.findPrincipal(ctx, kind, byID(id))
}

// FindPrincipalByEmail returns the admin or user registered under email.
func (s *Store) FindPrincipalByEmail(ctx context.Context, kind model.Kind, email string) (model.Principal, error) {
	return s.findPrincipal(ctx, kind, bson.D{{Key: "email", Value: email}})
}

func (s *Store) findPrincipal(ctx context.Context, kind model.Kind, filter bson.D) (model.Principal, error) {
	switch kind {
	case model.KindAdmin:
		var admin model.Admin
		if err := s.coll(collAdmins).FindOne(ctx, filter).Decode(&admin); err != nil {
			return nil, classify(err, "find admin")
		}
		return &admin, nil
	case model.KindUser:
		var user model.User
		if err := s.coll(collUsers).FindOne(ctx, filter).Decode(&user); err != nil {
			return nil, classify(err, "find user")
		}
		fillUser(&user)
		return &user, nil
	default:
		return nil, fmt.Errorf("unknown principal kind %q", kind)
	}
}

// SetOTP stores a hashed one-time code, replacing any pending one.
func (s *Store) SetOTP(ctx context.Context, kind model.Kind, id, hash string, issuedAt time.Time) error {
	return s.updatePrincipal(ctx, kind, id, "set otp", bson.D{
		{Key: "otp", Value: hash},
		{Key: "otpIssuedAt", Value: issuedAt.UTC()},
	})
}

// ConsumeOTP clears the pending code. Admins are marked verified.
func (s *Store) ConsumeOTP(ctx context.Context, kind model.Kind, id string) error {
	set := bson.D{
		{Key: "otp", Value: nil},
		{Key: "otpIssuedAt", Value: nil},
	}
	if kind == model.KindAdmin {
		set = append(set, bson.E{Key: "isVerified", Value: true})
	}
	return s.updatePrincipal(ctx, kind, id, "consume otp", set)
}

// SetRefreshToken stores the refresh token verbatim. A nil token clears it.
func (s *Store) SetRefreshToken(ctx context.Context, kind model.Kind, id string, token *string) error {
	return s.updatePrincipal(ctx, kind, id, "set refresh token", bson.D{{Key: "refreshToken", Value: token}})
}

// SetPassword replaces the password hash.
func (s *Store) SetPassword(ctx context.Context, kind model.Kind, id, hash string) error {
	return s.updatePrincipal(ctx, kind, id, "set password", bson.D{{Key: "password", Value: hash}})
}

func (s *Store) updatePrincipal(ctx context.Context, kind model.Kind, id, op string, set bson.D) error {
	coll, err := collectionFor(kind)
	if err != nil {
		return err
	}
	set = append(set, bson.E{Key: "updatedAt", Value: time.Now().UTC()})
	result, err := s.coll(coll).UpdateOne(ctx, byID(id), bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return classify(err, op)
	}
	return matched(result)
}
