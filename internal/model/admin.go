package model

import "time"

// Admin is a super-admin account. At most two exist; the organization is
// null until one of them creates the company.
type Admin struct {
	ID           string     `json:"_id" bson:"_id" db:"id"`
	FirstName    string     `json:"firstName" bson:"firstName" db:"first_name"`
	LastName     string     `json:"lastName" bson:"lastName" db:"last_name"`
	Email        string     `json:"email" bson:"email" db:"email"`
	Avatar       *string    `json:"avatar" bson:"avatar" db:"avatar"`
	PasswordHash string     `json:"-" bson:"password" db:"password_hash"` // bcrypt hash, never expose
	Organization *string    `json:"organization" bson:"organization" db:"organization"`
	OTPHash      *string    `json:"-" bson:"otp" db:"otp_hash"`
	OTPIssuedAt  *time.Time `json:"-" bson:"otpIssuedAt" db:"otp_issued_at"`
	RefreshToken *string    `json:"-" bson:"refreshToken" db:"refresh_token"`
	IsVerified   bool       `json:"isVerified" bson:"isVerified" db:"is_verified"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updatedAt" db:"updated_at"`
}

// AdminPatch carries the self-service profile fields an admin may change.
// Nil fields are left untouched.
type AdminPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Avatar    *string
}

// Empty reports whether the patch changes nothing.
func (p AdminPatch) Empty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Email == nil && p.Avatar == nil
}

// Apply merges the patch into a.
func (p AdminPatch) Apply(a *Admin) {
	if p.FirstName != nil {
		a.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		a.LastName = *p.LastName
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.Avatar != nil {
		a.Avatar = p.Avatar
	}
}

func (a *Admin) PrincipalID() string    { return a.ID }
func (a *Admin) PrincipalKind() Kind    { return KindAdmin }
func (a *Admin) PrincipalRole() Role    { return RoleAdmin }
func (a *Admin) PrincipalEmail() string { return a.Email }

func (a *Admin) PrincipalName() (string, string) { return a.FirstName, a.LastName }

func (a *Admin) PrincipalOrganization() string { return deref(a.Organization) }

func (a *Admin) PrincipalSecrets() Secrets {
	return secretsOf(a.PasswordHash, a.OTPHash, a.OTPIssuedAt, a.RefreshToken)
}

// NewAdmin returns an unverified, unattached admin. passwordHash must already
// be hashed.
func NewAdmin(firstName, lastName, email, passwordHash string) *Admin {
	return &Admin{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: passwordHash,
	}
}
