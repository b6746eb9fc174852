package model

import "time"

// MaritalStatus values accepted in a user's personal details.
type MaritalStatus string

const (
	MaritalMarried   MaritalStatus = "married"
	MaritalSingle    MaritalStatus = "single"
	MaritalDivorced  MaritalStatus = "divorced"
	MaritalWidowed   MaritalStatus = "widowed"
	MaritalSeparated MaritalStatus = "separated"
	MaritalOther     MaritalStatus = "other"
)

// Valid reports whether m is a known marital status.
func (m MaritalStatus) Valid() bool {
	switch m {
	case MaritalMarried, MaritalSingle, MaritalDivorced, MaritalWidowed, MaritalSeparated, MaritalOther:
		return true
	}
	return false
}

// User is an employee or manager belonging to the organization.
type User struct {
	ID           string  `json:"_id" bson:"_id"`
	FirstName    string  `json:"firstName" bson:"firstName"`
	LastName     string  `json:"lastName" bson:"lastName"`
	Email        string  `json:"email" bson:"email"`
	Phone        string  `json:"phone" bson:"phone"`
	Avatar       *string `json:"avatar" bson:"avatar"`
	PasswordHash string  `json:"-" bson:"password"` // bcrypt hash, never expose
	Role         Role    `json:"role" bson:"role"`
	Organization string  `json:"organization" bson:"organization"`
	Manager      *string `json:"manager" bson:"manager"`

	Profile `bson:",inline"`
	Links   `bson:",inline"`

	OTPHash      *string    `json:"-" bson:"otp"`
	OTPIssuedAt  *time.Time `json:"-" bson:"otpIssuedAt"`
	RefreshToken *string    `json:"-" bson:"refreshToken"`
	CreatedAt    time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Links holds the references a user document keeps to other records.
// ManagedTeams is nil for employees and non-nil for managers.
type Links struct {
	WorkReports  []string `json:"workReports" bson:"workReports"`
	Projects     []string `json:"projects" bson:"projects"`
	Tasks        []string `json:"tasks" bson:"tasks"`
	Teams        []string `json:"teams" bson:"teams"`
	Attendance   []string `json:"attendance" bson:"attendance"`
	Leaves       []string `json:"leaves" bson:"leaves"`
	ManagedTeams []string `json:"managed_teams" bson:"managed_teams"`
}

// Profile is the HR record attached to a user.
type Profile struct {
	PreviousExperience PreviousExperience `json:"previousExperience" bson:"previousExperience"`
	CurrentExperience  CurrentExperience  `json:"currentExperience" bson:"currentExperience"`
	PersonalDetails    PersonalDetails    `json:"personalDetails" bson:"personalDetails"`
	Documents          IdentityDocuments  `json:"documents" bson:"documents"`
	BankDetails        BankDetails        `json:"bankDetails" bson:"bankDetails"`
}

type PreviousExperience struct {
	Employer    *string    `json:"employer" bson:"employer"`
	Designation *string    `json:"designation" bson:"designation"`
	StartDate   *time.Time `json:"startDate" bson:"startDate"`
	EndDate     *time.Time `json:"endDate" bson:"endDate"`
	Documents   struct {
		ExperienceLetter *string  `json:"experienceLetter" bson:"experienceLetter"`
		RelievingLetter  *string  `json:"relivingLetter" bson:"relivingLetter"`
		Payslips         []string `json:"payslips" bson:"payslips"`
	} `json:"documents" bson:"documents"`
}

type CurrentExperience struct {
	Employer    *string    `json:"employer" bson:"employer"`
	Designation *string    `json:"designation" bson:"designation"`
	StartDate   *time.Time `json:"startDate" bson:"startDate"`
	Documents   struct {
		OfferLetter        *string  `json:"offerLetter" bson:"offerLetter"`
		ConfirmationLetter *string  `json:"confirmationLetter" bson:"confirmationLetter"`
		Payslips           []string `json:"payslips" bson:"payslips"`
	} `json:"documents" bson:"documents"`
}

type PersonalDetails struct {
	DateOfBirth      *time.Time       `json:"dateOfBirth" bson:"dateOfBirth"`
	Gender           *string          `json:"gender" bson:"gender"`
	MaritalStatus    MaritalStatus    `json:"maritalStatus" bson:"maritalStatus"`
	EmergencyContact EmergencyContact `json:"emergencyContact" bson:"emergencyContact"`
}

type EmergencyContact struct {
	Name         *string `json:"name" bson:"name"`
	Relationship *string `json:"relationship" bson:"relationship"`
	Phone        *string `json:"phone" bson:"phone"`
	Email        *string `json:"email" bson:"email"`
	Address      Address `json:"address" bson:"address"`
}

type IdentityDocuments struct {
	AadhaarCard *string `json:"aadhaarCard" bson:"aadhaarCard"`
	PanCard     *string `json:"panCard" bson:"panCard"`
	Passport    *string `json:"passport" bson:"passport"`
}

type BankDetails struct {
	AccountHolderName *string `json:"accountHolderName" bson:"accountHolderName"`
	AccountNumber     *string `json:"accountNumber" bson:"accountNumber"`
	BankName          *string `json:"bankName" bson:"bankName"`
	IFSCCode          *string `json:"ifscCode" bson:"ifscCode"`
}

// Normalize applies the role-dependent shape rules: managers report to
// nobody and always carry a managed-teams list, employees never do.
// It must run before every write.
func (u *User) Normalize() {
	switch u.Role {
	case RoleManager:
		u.Manager = nil
		if u.ManagedTeams == nil {
			u.ManagedTeams = []string{}
		}
	case RoleEmployee:
		u.ManagedTeams = nil
	}
	if u.PersonalDetails.MaritalStatus == "" {
		u.PersonalDetails.MaritalStatus = MaritalSingle
	}
}

func (u *User) PrincipalID() string    { return u.ID }
func (u *User) PrincipalKind() Kind    { return KindUser }
func (u *User) PrincipalRole() Role    { return u.Role }
func (u *User) PrincipalEmail() string { return u.Email }

func (u *User) PrincipalName() (string, string) { return u.FirstName, u.LastName }

func (u *User) PrincipalOrganization() string { return u.Organization }

func (u *User) PrincipalSecrets() Secrets {
	return secretsOf(u.PasswordHash, u.OTPHash, u.OTPIssuedAt, u.RefreshToken)
}

// NewUser returns a normalized user of organization. passwordHash must
// already be hashed.
func NewUser(firstName, lastName, email, phone, passwordHash string, role Role, organization string) *User {
	u := &User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Role:         role,
		Organization: organization,
	}
	u.Normalize()
	return u
}
