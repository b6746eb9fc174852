package model

// The detail types below are read-side projections with references replaced
// by the records they point to. Outer fields shadow the embedded ones of the
// same JSON name.

// UserDetail is a user with organization, manager, and teams expanded.
type UserDetail struct {
	*User
	Organization *Company `json:"organization"`
	Manager      *User    `json:"manager"`
	Teams        []Team   `json:"teams"`
	ManagedTeams []Team   `json:"managed_teams"`
}

// CompanyDetail is a company with its members, teams, and creator expanded.
type CompanyDetail struct {
	*Company
	Users     []User `json:"users"`
	Teams     []Team `json:"teams"`
	CreatedBy *Admin `json:"createdBy"`
}

// AdminDetail is a super-admin with its organization expanded.
type AdminDetail struct {
	*Admin
	Organization *CompanyDetail `json:"organization"`
}
