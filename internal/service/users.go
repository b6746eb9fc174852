package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/staffhub/staffhub/internal/apperr"
	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

const (
	MsgUserNotFound       = "User not found."
	MsgUserUpdated        = "User updated successfully."
	MsgUsersDeleted       = "Users deleted successfully."
	MsgAllUsersDeleted    = "All users deleted successfully."
	msgManagerRoleInvalid = "Role must be manager or employee."
)

// CreateUserInput is the body of user creation.
type CreateUserInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

// UserUpdate is a partial user update with the HR profile flattened into
// top-level fields. Nil fields are left untouched.
type UserUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Avatar    *string `json:"avatar"`
	Password  *string `json:"password"`
	Role      *string `json:"role"`
	Manager   *string `json:"manager"`

	PrevEmployer          *string  `json:"prevEmployer"`
	PrevDesignation       *string  `json:"prevDesignation"`
	PrevStartDate         *string  `json:"prevStartDate"`
	PrevEndDate           *string  `json:"prevEndDate"`
	PrevExperienceLetter  *string  `json:"prevExperienceLetter"`
	PrevRelievingLetter   *string  `json:"prevRelivingLetter"`
	PrevPayslips          []string `json:"prevPayslips"`
	CurrentEmployer       *string  `json:"currentEmployer"`
	CurrentDesignation    *string  `json:"currentDesignation"`
	CurrentStartDate      *string  `json:"currentStartDate"`
	CurrentOfferLetter    *string  `json:"currentOfferLetter"`
	CurrentConfirmation   *string  `json:"currentConfirmationLetter"`
	CurrentPayslips       []string `json:"currentPayslips"`
	DateOfBirth           *string  `json:"dateOfBirth"`
	Gender                *string  `json:"gender"`
	MaritalStatus         *string  `json:"maritalStatus"`
	GuardianName          *string  `json:"guardianName"`
	GuardianPhone         *string  `json:"guardianPhone"`
	GuardianRelation      *string  `json:"guardianRelation"`
	GuardianEmail         *string  `json:"guardianEmail"`
	GuardianStreetAddress *string  `json:"guardianStreetAddress"`
	GuardianCity          *string  `json:"guardianCity"`
	GuardianState         *string  `json:"guardianState"`
	GuardianCountry       *string  `json:"guardianCountry"`
	GuardianPostalCode    *string  `json:"guardianPostalCode"`
	AadhaarCard           *string  `json:"aadhaarCard"`
	PanCard               *string  `json:"panCard"`
	Passport              *string  `json:"passport"`
	AccountHolderName     *string  `json:"accountHolderName"`
	AccountNumber         *string  `json:"accountNumber"`
	BankName              *string  `json:"bankName"`
	IFSCCode              *string  `json:"ifscCode"`
}

// UserService manages the people of the organization.
type UserService struct {
	store  store.Store
	hasher *Hasher
	logger *slog.Logger
}

// NewUserService returns a user service.
func NewUserService(st store.Store, hasher *Hasher, logger *slog.Logger) *UserService {
	return &UserService{store: st, hasher: hasher, logger: logger}
}

// Create adds a user to the caller's organization. Managers may only create
// employees.
func (s *UserService) Create(ctx context.Context, id *Identity, in CreateUserInput) (*model.User, error) {
	if !id.Role.In(model.RoleAdmin, model.RoleManager) {
		return nil, apperr.Forbidden()
	}
	if !required(in.FirstName, in.LastName, in.Email, in.Phone, in.Password, in.Role) {
		return nil, apperr.Validation(MsgAllFieldsRequired)
	}
	role, err := model.ParseRole(in.Role)
	if err != nil || !role.IsUserRole() {
		return nil, apperr.Validation(msgManagerRoleInvalid)
	}
	if id.Role == model.RoleManager && role == model.RoleManager {
		return nil, apperr.Forbidden()
	}

	email := normalizeEmail(in.Email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePhone(in.Phone); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	_, err = s.store.FindPrincipalByEmail(ctx, model.KindUser, email)
	if err == nil {
		return nil, apperr.Conflict(MsgUserAlreadyExist)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Internal("find user by email", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	user := model.NewUser(in.FirstName, in.LastName, email, in.Phone, hash, role, id.Organization)
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Conflict(MsgUserAlreadyExist)
		}
		return nil, apperr.Internal("create user", err)
	}
	s.logger.Info("user created", "user", user.ID, "role", role, "by", id.ID)
	return user, nil
}

// List returns the users of the caller's organization.
func (s *UserService) List(ctx context.Context, id *Identity) ([]model.User, error) {
	users, err := s.store.ListUsers(ctx, id.Organization)
	if err != nil {
		return nil, apperr.Internal("list users", err)
	}
	return users, nil
}

// Get returns a user of the caller's organization with references expanded.
func (s *UserService) Get(ctx context.Context, id *Identity, userID string) (*model.UserDetail, error) {
	user, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	d, err := expandUser(ctx, s.store, user)
	if err != nil {
		return nil, apperr.Internal("expand user", err)
	}
	return d, nil
}

func (s *UserService) load(ctx context.Context, id *Identity, userID string) (*model.User, error) {
	if !store.ValidID(userID) {
		return nil, apperr.Validation("Missing or invalid ID")
	}
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) || err == nil && user.Organization != id.Organization {
		return nil, apperr.NotFound(MsgUserNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("get user", err)
	}
	return user, nil
}

// Update applies upd to a user. Admins and managers may update anyone in
// the organization, other users only themselves. Only admins change roles.
func (s *UserService) Update(ctx context.Context, id *Identity, userID string, upd UserUpdate) (*model.User, error) {
	self := id.Kind == model.KindUser && id.ID == userID
	if !self && !id.Role.In(model.RoleAdmin, model.RoleManager) {
		return nil, apperr.Forbidden()
	}
	if upd.Role != nil && id.Role != model.RoleAdmin {
		return nil, apperr.Forbidden()
	}

	user, err := s.load(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, user, upd); err != nil {
		return nil, err
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, apperr.NotFound(MsgUserNotFound)
		case errors.Is(err, store.ErrDuplicate):
			return nil, apperr.Conflict(MsgUserAlreadyExist)
		}
		return nil, apperr.Internal("update user", err)
	}
	s.logger.Info("user updated", "user", user.ID, "by", id.ID)
	return user, nil
}

func (s *UserService) apply(ctx context.Context, u *model.User, upd UserUpdate) error {
	if upd.FirstName != nil {
		if !required(*upd.FirstName) {
			return apperr.Validation("First name cannot be empty.")
		}
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		if !required(*upd.LastName) {
			return apperr.Validation("Last name cannot be empty.")
		}
		u.LastName = *upd.LastName
	}
	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		if err := ValidateEmail(email); err != nil {
			return err
		}
		u.Email = email
	}
	if upd.Phone != nil {
		if err := ValidatePhone(*upd.Phone); err != nil {
			return err
		}
		u.Phone = *upd.Phone
	}
	if upd.Avatar != nil {
		u.Avatar = model.StringPtr(*upd.Avatar)
	}
	if upd.Password != nil {
		if err := ValidatePassword(*upd.Password); err != nil {
			return err
		}
		hash, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return apperr.Internal("hash password", err)
		}
		u.PasswordHash = hash
	}
	if upd.Role != nil {
		role, err := model.ParseRole(*upd.Role)
		if err != nil || !role.IsUserRole() {
			return apperr.Validation(msgManagerRoleInvalid)
		}
		u.Role = role
	}
	if upd.Manager != nil {
		if err := s.setManager(ctx, u, *upd.Manager); err != nil {
			return err
		}
	}

	prev := &u.PreviousExperience
	setOptional(&prev.Employer, upd.PrevEmployer)
	setOptional(&prev.Designation, upd.PrevDesignation)
	setOptional(&prev.Documents.ExperienceLetter, upd.PrevExperienceLetter)
	setOptional(&prev.Documents.RelievingLetter, upd.PrevRelievingLetter)
	if upd.PrevPayslips != nil {
		prev.Documents.Payslips = upd.PrevPayslips
	}

	cur := &u.CurrentExperience
	setOptional(&cur.Employer, upd.CurrentEmployer)
	setOptional(&cur.Designation, upd.CurrentDesignation)
	setOptional(&cur.Documents.OfferLetter, upd.CurrentOfferLetter)
	setOptional(&cur.Documents.ConfirmationLetter, upd.CurrentConfirmation)
	if upd.CurrentPayslips != nil {
		cur.Documents.Payslips = upd.CurrentPayslips
	}

	dates := []struct {
		dst   **time.Time
		src   *string
		field string
	}{
		{&prev.StartDate, upd.PrevStartDate, "prevStartDate"},
		{&prev.EndDate, upd.PrevEndDate, "prevEndDate"},
		{&cur.StartDate, upd.CurrentStartDate, "currentStartDate"},
		{&u.PersonalDetails.DateOfBirth, upd.DateOfBirth, "dateOfBirth"},
	}
	for _, d := range dates {
		if d.src == nil {
			continue
		}
		t, err := parseDate(*d.src, d.field)
		if err != nil {
			return err
		}
		*d.dst = t
	}

	pd := &u.PersonalDetails
	setOptional(&pd.Gender, upd.Gender)
	if upd.MaritalStatus != nil {
		ms := model.MaritalStatus(*upd.MaritalStatus)
		if !ms.Valid() {
			return apperr.Validation("Invalid marital status.")
		}
		pd.MaritalStatus = ms
	}
	ec := &pd.EmergencyContact
	setOptional(&ec.Name, upd.GuardianName)
	setOptional(&ec.Phone, upd.GuardianPhone)
	setOptional(&ec.Relationship, upd.GuardianRelation)
	setOptional(&ec.Email, upd.GuardianEmail)
	setString(&ec.Address.Street, upd.GuardianStreetAddress)
	setString(&ec.Address.City, upd.GuardianCity)
	setString(&ec.Address.State, upd.GuardianState)
	setString(&ec.Address.Country, upd.GuardianCountry)
	setString(&ec.Address.Zip, upd.GuardianPostalCode)

	setOptional(&u.Documents.AadhaarCard, upd.AadhaarCard)
	setOptional(&u.Documents.PanCard, upd.PanCard)
	setOptional(&u.Documents.Passport, upd.Passport)

	bd := &u.BankDetails
	setOptional(&bd.AccountHolderName, upd.AccountHolderName)
	setOptional(&bd.AccountNumber, upd.AccountNumber)
	setOptional(&bd.BankName, upd.BankName)
	setOptional(&bd.IFSCCode, upd.IFSCCode)
	return nil
}

// setManager assigns a manager of the same organization. An empty id
// clears it.
func (s *UserService) setManager(ctx context.Context, u *model.User, managerID string) error {
	if managerID == "" {
		u.Manager = nil
		return nil
	}
	if !store.ValidID(managerID) || managerID == u.ID {
		return apperr.Validation("Invalid manager.")
	}
	m, err := s.store.GetUser(ctx, managerID)
	if errors.Is(err, store.ErrNotFound) || err == nil && (m.Organization != u.Organization || m.Role != model.RoleManager) {
		return apperr.Validation("Invalid manager.")
	}
	if err != nil {
		return apperr.Internal("get manager", err)
	}
	u.Manager = &managerID
	return nil
}

// Delete removes the listed users of the caller's organization, or all of
// them when ids is empty. It reports whether everyone was targeted.
func (s *UserService) Delete(ctx context.Context, id *Identity, ids []string) (all bool, err error) {
	for _, userID := range ids {
		if !store.ValidID(userID) {
			return false, apperr.Validation("Missing or invalid ID")
		}
	}
	n, err := s.store.DeleteUsers(ctx, id.Organization, ids)
	if err != nil {
		return false, apperr.Internal("delete users", err)
	}
	s.logger.Info("users deleted", "count", n, "by", id.ID)
	return len(ids) == 0, nil
}

// setOptional sets an optional field; an empty string clears it.
func setOptional(dst **string, v *string) {
	if v != nil {
		*dst = model.StringPtr(*v)
	}
}
