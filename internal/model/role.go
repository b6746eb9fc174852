package model

import "fmt"

// Role is the authorization tag carried by every principal and embedded in
// its access token.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Kind identifies which store a principal lives in. Admins are super-admins
// that own the organization; users are the people working in it.
type Kind string

const (
	KindAdmin Kind = "admin"
	KindUser  Kind = "user"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Kind returns the principal kind implied by the role.
func (r Role) Kind() Kind {
	if r == RoleAdmin {
		return KindAdmin
	}
	return KindUser
}

// IsUserRole reports whether r can be assigned to a user account.
func (r Role) IsUserRole() bool {
	return r == RoleManager || r == RoleEmployee
}

// In reports whether r is one of roles.
func (r Role) In(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

func (k Kind) String() string { return string(k) }
