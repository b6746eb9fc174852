package model

import "time"

// Principal is an authenticatable identity. It is implemented by *Admin and
// *User so the token, OTP, and login flows can run against either kind.
type Principal interface {
	PrincipalID() string
	PrincipalKind() Kind
	PrincipalRole() Role
	PrincipalEmail() string
	PrincipalName() (first, last string)
	// PrincipalOrganization returns "" when the principal is not attached
	// to a company.
	PrincipalOrganization() string
	PrincipalSecrets() Secrets
}

// Secrets is the credential material stored on a principal. Empty strings
// stand for null columns.
type Secrets struct {
	PasswordHash string
	OTPHash      string
	OTPIssuedAt  time.Time
	RefreshToken string
}

func secretsOf(password string, otp *string, otpIssuedAt *time.Time, refresh *string) Secrets {
	s := Secrets{PasswordHash: password}
	if otp != nil {
		s.OTPHash = *otp
	}
	if otpIssuedAt != nil {
		s.OTPIssuedAt = *otpIssuedAt
	}
	if refresh != nil {
		s.RefreshToken = *refresh
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
