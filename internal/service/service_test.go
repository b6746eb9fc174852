package service

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/staffhub/staffhub/internal/apperr"
	"github.com/staffhub/staffhub/internal/config"
	"github.com/staffhub/staffhub/internal/mail"
	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store/sqlstore"
)

const testPassword = "Str0ng!pass"

var otpPattern = regexp.MustCompile(`<b>(\d{4})</b>`)

type testEnv struct {
	store     *sqlstore.Store
	outbox    *mail.Outbox
	hasher    *Hasher
	tokens    *TokenService
	otp       *OTPIssuer
	gate      *Gate
	auth      *AuthService
	admins    *AdminService
	companies *CompanyService
	users     *UserService
	teams     *TeamService
}

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessTokenSecret:      "access-secret",
		RefreshTokenSecret:     "refresh-secret",
		AdminAccessTokenExpiry: "15m",
		UserAccessTokenExpiry:  "1d",
		RefreshTokenExpiry:     "7d",
		OTPTTL:                 time.Hour,
		Issuer:                 "staffhub-test",
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st, err := sqlstore.NewSQLite("")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testAuthConfig()
	hasher := NewHasher(bcrypt.MinCost)
	outbox := mail.NewOutbox(logger)
	tokens := NewTokenService(st, cfg)
	otp := NewOTPIssuer(st, outbox, hasher, cfg.OTPTTL, logger)

	return &testEnv{
		store:     st,
		outbox:    outbox,
		hasher:    hasher,
		tokens:    tokens,
		otp:       otp,
		gate:      NewGate(tokens, st),
		auth:      NewAuthService(st, tokens, otp, hasher, logger),
		admins:    NewAdminService(st, hasher, logger),
		companies: NewCompanyService(st, logger),
		users:     NewUserService(st, hasher, logger),
		teams:     NewTeamService(st, logger),
	}
}

// lastOTP returns the code of the most recent mail sent to addr.
func (e *testEnv) lastOTP(t *testing.T, addr string) string {
	t.Helper()
	msg, ok := e.outbox.Last(addr)
	require.True(t, ok, "no mail sent to %s", addr)
	m := otpPattern.FindStringSubmatch(msg.HTMLBody)
	require.Len(t, m, 2, "no code in mail body")
	return m[1]
}

func (e *testEnv) registerAdmin(t *testing.T, email string) *model.Admin {
	t.Helper()
	a, err := e.admins.Register(context.Background(), RegisterAdminInput{
		FirstName: "Ada", LastName: "Lovelace", Email: email, Password: testPassword,
	})
	require.NoError(t, err)
	return a
}

func adminIdentity(a *model.Admin) *Identity {
	id := &Identity{ID: a.ID, Kind: model.KindAdmin, Role: model.RoleAdmin, Email: a.Email}
	if a.Organization != nil {
		id.Organization = *a.Organization
	}
	return id
}

func userIdentity(u *model.User) *Identity {
	return &Identity{ID: u.ID, Kind: model.KindUser, Role: u.Role, Email: u.Email, Organization: u.Organization}
}

func testCompanyInput() CompanyInput {
	return CompanyInput{
		Name:     "Acme",
		Industry: "Technology",
		Logo:     "https://cdn.acme.test/logo.png",
		Street:   "1 Main St",
		City:     "Pune",
		State:    "MH",
		Country:  "India",
		Zip:      "411001",
		Phone:    "+912000000000",
		Email:    "hr@acme.test",
		Website:  "https://acme.test",
	}
}

// seedOrg registers an admin, creates the company, and returns the admin's
// identity attached to it.
func (e *testEnv) seedOrg(t *testing.T) (*Identity, *model.Company) {
	t.Helper()
	a := e.registerAdmin(t, "ada@acme.test")
	c, err := e.companies.Create(context.Background(), adminIdentity(a), testCompanyInput())
	require.NoError(t, err)
	id := adminIdentity(a)
	id.Organization = c.ID
	return id, c
}

func (e *testEnv) createUser(t *testing.T, by *Identity, email, phone string, role model.Role) *model.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), by, CreateUserInput{
		FirstName: "Grace", LastName: "Hopper", Email: email, Phone: phone, Password: testPassword, Role: string(role),
	})
	require.NoError(t, err)
	return u
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, apperr.Code(err), "unexpected error: %v", err)
}
