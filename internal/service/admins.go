package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/staffhub/staffhub/internal/apperr"
	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

// MaxAdmins is the number of super-admin accounts the system allows.
const MaxAdmins = 2

const (
	MsgAdminCreated     = "Super admin is created."
	MsgAdminQuota       = "Only 2 super admin are allowed."
	MsgUserAlreadyExist = "User already exist."
	MsgAdminNotFound    = "Super admin not found."
	MsgAdminUpdated     = "SuperAdmin updated successfully"
	MsgAdminDeleted     = "Super admin and related companies deleted successfully."
)

// RegisterAdminInput is the body of the super-admin registration.
type RegisterAdminInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// AdminService manages super-admin accounts.
type AdminService struct {
	store  store.Store
	hasher *Hasher
	logger *slog.Logger
}

// NewAdminService returns an admin service.
func NewAdminService(st store.Store, hasher *Hasher, logger *slog.Logger) *AdminService {
	return &AdminService{store: st, hasher: hasher, logger: logger}
}

// Register creates a super-admin while fewer than MaxAdmins exist. A new
// admin joins the organization if one was already created.
func (s *AdminService) Register(ctx context.Context, in RegisterAdminInput) (*model.Admin, error) {
	if !required(in.FirstName, in.LastName, in.Email, in.Password) {
		return nil, apperr.Validation("All fields are required")
	}
	email := normalizeEmail(in.Email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	// Fail fast before hashing. CreateAdminLimited enforces the limit.
	count, err := s.store.CountAdmins(ctx)
	if err != nil {
		return nil, apperr.Internal("count admins", err)
	}
	if count >= MaxAdmins {
		return nil, apperr.QuotaExceeded(MsgAdminQuota)
	}

	_, err = s.store.FindPrincipalByEmail(ctx, model.KindAdmin, email)
	if err == nil {
		return nil, apperr.Conflict(MsgUserAlreadyExist)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal("find admin by email", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	admin := model.NewAdmin(in.FirstName, in.LastName, email, hash)

	switch err := s.store.CreateAdminLimited(ctx, admin, MaxAdmins); {
	case errors.Is(err, store.ErrQuota):
		return nil, apperr.QuotaExceeded(MsgAdminQuota)
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperr.Conflict(MsgUserAlreadyExist)
	case err != nil:
		return nil, apperr.Internal("create admin", err)
	}
	s.logger.Info("super admin registered", "admin", admin.ID)
	return admin, nil
}

// List returns every super-admin.
func (s *AdminService) List(ctx context.Context) ([]model.Admin, error) {
	admins, err := s.store.ListAdmins(ctx)
	if err != nil {
		return nil, apperr.Internal("list admins", err)
	}
	return admins, nil
}

// Get returns a super-admin with its organization expanded.
func (s *AdminService) Get(ctx context.Context, id string) (*model.AdminDetail, error) {
	if !store.ValidID(id) {
		return nil, apperr.Validation("Missing or invalid ID")
	}
	admin, err := s.store.GetAdmin(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(MsgAdminNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("get admin", err)
	}
	detail, err := expandAdmin(ctx, s.store, admin)
	if err != nil {
		return nil, apperr.Internal("expand admin", err)
	}
	return detail, nil
}

// UpdateProfile applies a self-service patch to the caller's own account.
func (s *AdminService) UpdateProfile(ctx context.Context, id *Identity, patch model.AdminPatch) (*model.Admin, error) {
	if patch.Empty() {
		return nil, apperr.Validation("Nothing to update.")
	}
	if patch.FirstName != nil && !required(*patch.FirstName) ||
		patch.LastName != nil && !required(*patch.LastName) {
		return nil, apperr.Validation("Name cannot be empty.")
	}
	if patch.Email != nil {
		email := normalizeEmail(*patch.Email)
		if err := ValidateEmail(email); err != nil {
			return nil, err
		}
		patch.Email = &email
	}

	admin, err := s.store.UpdateAdmin(ctx, id.ID, patch)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, apperr.NotFound(MsgAdminNotFound)
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperr.Conflict(MsgUserAlreadyExist)
	case err != nil:
		return nil, apperr.Internal("update admin", err)
	}
	return admin, nil
}

// Delete removes a super-admin together with the companies it created.
func (s *AdminService) Delete(ctx context.Context, id string) error {
	if !store.ValidID(id) {
		return apperr.Validation("Missing or invalid ID")
	}
	if _, err := s.store.GetAdmin(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(MsgAdminNotFound)
		}
		return apperr.Internal("get admin", err)
	}

	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return apperr.Internal("list companies", err)
	}
	for _, c := range companies {
		if c.CreatedBy == nil || *c.CreatedBy != id {
			continue
		}
		if err := s.store.DeleteCompany(ctx, c.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return apperr.Internal("delete company", err)
		}
	}

	if err := s.store.DeleteAdmin(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound(MsgAdminNotFound)
		}
		return apperr.Internal("delete admin", err)
	}
	s.logger.Info("super admin deleted", "admin", id)
	return nil
}
