package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/staffhub/staffhub/internal/model"
)

func tableFor(kind model.Kind) (string, error) {
	switch kind {
	case model.KindAdmin:
		return "admins", nil
	case model.KindUser:
		return "users", nil
	default:
		return "", fmt.Errorf("unknown principal kind %q", kind)
	}
}

// FindPrincipal returns the admin or user with the given id.
func (s *Store) FindPrincipal(ctx context.Context, kind model.Kind, id string) (model.Principal, error) {
	return s.findPrincipal(ctx, kind, "id", id)
}

// FindPrincipalByEmail returns the admin or user registered under email.
func (s *Store) FindPrincipalByEmail(ctx context.Context, kind model.Kind, email string) (model.Principal, error) {
	return s.findPrincipal(ctx, kind, "email", email)
}

func (s *Store) findPrincipal(ctx context.Context, kind model.Kind, column, value string) (model.Principal, error) {
	switch kind {
	case model.KindAdmin:
		admin, err := s.getAdmin(ctx, column, value)
		if err != nil {
			return nil, err
		}
		return admin, nil
	case model.KindUser:
		user, err := s.getUser(ctx, column, value)
		if err != nil {
			return nil, err
		}
		return user, nil
	default:
		return nil, fmt.Errorf("unknown principal kind %q", kind)
	}
}

// SetOTP stores a hashed one-time code, replacing any pending one.
func (s *Store) SetOTP(ctx context.Context, kind model.Kind, id, hash string, issuedAt time.Time) error {
	return s.updatePrincipal(ctx, kind, id, "set otp",
		"otp_hash = ?, otp_issued_at = ?", hash, issuedAt.UTC())
}

// ConsumeOTP clears the pending code. Admins are marked verified in the
// same statement.
func (s *Store) ConsumeOTP(ctx context.Context, kind model.Kind, id string) error {
	if kind == model.KindAdmin {
		return s.updatePrincipal(ctx, kind, id, "consume otp",
			"otp_hash = NULL, otp_issued_at = NULL, is_verified = ?", true)
	}
	return s.updatePrincipal(ctx, kind, id, "consume otp",
		"otp_hash = NULL, otp_issued_at = NULL")
}

// SetRefreshToken stores the refresh token verbatim. A nil token clears it.
func (s *Store) SetRefreshToken(ctx context.Context, kind model.Kind, id string, token *string) error {
	return s.updatePrincipal(ctx, kind, id, "set refresh token", "refresh_token = ?", token)
}

// SetPassword replaces the password hash.
func (s *Store) SetPassword(ctx context.Context, kind model.Kind, id, hash string) error {
	return s.updatePrincipal(ctx, kind, id, "set password", "password_hash = ?", hash)
}

// updatePrincipal runs a single-row UPDATE against the table for kind. The
// assignments are trusted SQL fragments; values are always bound.
func (s *Store) updatePrincipal(ctx context.Context, kind model.Kind, id, op, assignments string, args ...interface{}) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	q := s.db.Rebind("UPDATE " + table + " SET " + assignments + ", updated_at = ? WHERE id = ?")
	args = append(args, time.Now().UTC(), id)

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return classify(err, op)
	}
	return checkAffected(result, op)
}
