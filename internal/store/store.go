// Package store defines the persistence surface of staffhub. Backends live in
// the sqlstore and mongostore subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/staffhub/staffhub/internal/model"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate")
	// ErrQuota is returned by the limited inserts when the limit is reached.
	ErrQuota = errors.New("quota reached")
)

// Store is implemented by every backend.
type Store interface {
	Principals
	Admins
	Users
	Companies
	Teams

	Ping(ctx context.Context) error
	Close() error
}

// Principals is the kind-dispatched access used by the auth flows. Every
// method returns ErrNotFound when no principal of that kind has the id or
// email.
type Principals interface {
	FindPrincipal(ctx context.Context, kind model.Kind, id string) (model.Principal, error)
	FindPrincipalByEmail(ctx context.Context, kind model.Kind, email string) (model.Principal, error)
	// SetOTP overwrites any pending code.
	SetOTP(ctx context.Context, kind model.Kind, id, hash string, issuedAt time.Time) error
	// ConsumeOTP clears the pending code. Admins are marked verified.
	ConsumeOTP(ctx context.Context, kind model.Kind, id string) error
	// SetRefreshToken stores token verbatim; nil clears it.
	SetRefreshToken(ctx context.Context, kind model.Kind, id string, token *string) error
	SetPassword(ctx context.Context, kind model.Kind, id, hash string) error
}

type Admins interface {
	CreateAdmin(ctx context.Context, admin *model.Admin) error
	// CreateAdminLimited inserts admin unless limit admins already exist,
	// in which case it returns ErrQuota. The check and the insert are one
	// atomic step. The admin joins the organization when one exists.
	CreateAdminLimited(ctx context.Context, admin *model.Admin, limit int) error
	CountAdmins(ctx context.Context) (int, error)
	GetAdmin(ctx context.Context, id string) (*model.Admin, error)
	ListAdmins(ctx context.Context) ([]model.Admin, error)
	UpdateAdmin(ctx context.Context, id string, patch model.AdminPatch) (*model.Admin, error)
	// SetAdminOrganization attaches one admin, or every admin when id is
	// empty, to the organization. A nil organization detaches.
	SetAdminOrganization(ctx context.Context, id string, organization *string) error
	DeleteAdmin(ctx context.Context, id string) error
}

type Users interface {
	// CreateUser inserts the user and records it as a member of its
	// organization.
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context, organization string) ([]model.User, error)
	ListUsersByID(ctx context.Context, ids []string) ([]model.User, error)
	// UpdateUser replaces every mutable field of the stored user.
	UpdateUser(ctx context.Context, user *model.User) error
	// DeleteUsers removes the listed users of the organization, or all of
	// them when ids is empty, and returns how many were removed.
	DeleteUsers(ctx context.Context, organization string, ids []string) (int64, error)
}

type Companies interface {
	CreateCompany(ctx context.Context, company *model.Company) error
	// CreateCompanyLimited inserts company unless limit companies already
	// exist, in which case it returns ErrQuota, and attaches every admin to
	// it. The check and the insert are one atomic step.
	CreateCompanyLimited(ctx context.Context, company *model.Company, limit int) error
	CountCompanies(ctx context.Context) (int, error)
	GetCompany(ctx context.Context, id string) (*model.Company, error)
	ListCompanies(ctx context.Context) ([]model.Company, error)
	UpdateCompany(ctx context.Context, company *model.Company) error
	// DeleteCompany removes the company with its users and teams and
	// detaches its admins.
	DeleteCompany(ctx context.Context, id string) error
}

type Teams interface {
	// CreateTeam inserts the team and links it from the company, the
	// employees' team lists, and the leaders' managed-team lists.
	CreateTeam(ctx context.Context, team *model.Team) error
	GetTeam(ctx context.Context, id string) (*model.Team, error)
	ListTeams(ctx context.Context, organization string) ([]model.Team, error)
	ListTeamsByID(ctx context.Context, ids []string) ([]model.Team, error)
}

// NewID returns a fresh identifier. Every backend uses object-id hex strings
// so identifiers stay portable between them.
func NewID() string {
	return bson.NewObjectID().Hex()
}

// ValidID reports whether id is a well-formed identifier.
func ValidID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}
