package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

// CreateAdmin inserts a new super-admin. The ID, CreatedAt, and UpdatedAt
// fields are populated before the insert.
func (s *Store) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	return insertAdmin(ctx, s.db, admin)
}

func insertAdmin(ctx context.Context, ext sqlx.ExtContext, admin *model.Admin) error {
	now := time.Now().UTC()
	admin.ID = store.NewID()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	const q = `INSERT INTO admins
		(id, first_name, last_name, email, avatar, password_hash, organization,
		 otp_hash, otp_issued_at, refresh_token, is_verified, created_at, updated_at)
		VALUES
		(:id, :first_name, :last_name, :email, :avatar, :password_hash, :organization,
		 :otp_hash, :otp_issued_at, :refresh_token, :is_verified, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, ext, q, admin); err != nil {
		return classify(err, "insert admin")
	}
	return nil
}

// CountAdmins returns the number of super-admin accounts.
func (s *Store) CountAdmins(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM admins"); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return count, nil
}

// GetAdmin returns a super-admin by ID.
func (s *Store) GetAdmin(ctx context.Context, id string) (*model.Admin, error) {
	return s.getAdmin(ctx, "id", id)
}

func (s *Store) getAdmin(ctx context.Context, column, value string) (*model.Admin, error) {
	var admin model.Admin
	q := s.db.Rebind("SELECT * FROM admins WHERE " + column + " = ?")
	if err := s.db.GetContext(ctx, &admin, q, value); err != nil {
		return nil, classify(err, "get admin")
	}
	return &admin, nil
}

// ListAdmins returns all super-admin accounts, oldest first.
func (s *Store) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	admins := []model.Admin{}
	if err := s.db.SelectContext(ctx, &admins, "SELECT * FROM admins ORDER BY created_at"); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// UpdateAdmin applies a profile patch and returns the updated record.
func (s *Store) UpdateAdmin(ctx context.Context, id string, patch model.AdminPatch) (*model.Admin, error) {
	admin, err := s.GetAdmin(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(admin)
	admin.UpdatedAt = time.Now().UTC()

	const q = `UPDATE admins SET
		first_name = :first_name, last_name = :last_name, email = :email, avatar = :avatar,
		updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, admin)
	if err != nil {
		return nil, classify(err, "update admin")
	}
	if err := checkAffected(result, "update admin"); err != nil {
		return nil, err
	}
	return admin, nil
}

// SetAdminOrganization attaches one admin, or every admin when id is empty,
// to organization.
func (s *Store) SetAdminOrganization(ctx context.Context, id string, organization *string) error {
	now := time.Now().UTC()
	if id == "" {
		q := s.db.Rebind("UPDATE admins SET organization = ?, updated_at = ?")
		if _, err := s.db.ExecContext(ctx, q, organization, now); err != nil {
			return classify(err, "set admins organization")
		}
		return nil
	}
	q := s.db.Rebind("UPDATE admins SET organization = ?, updated_at = ? WHERE id = ?")
	result, err := s.db.ExecContext(ctx, q, organization, now, id)
	if err != nil {
		return classify(err, "set admin organization")
	}
	return checkAffected(result, "set admin organization")
}

// DeleteAdmin removes a super-admin by ID.
func (s *Store) DeleteAdmin(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM admins WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	return checkAffected(result, "delete admin")
}
