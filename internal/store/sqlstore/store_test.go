package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewSQLite("") // in-memory
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedCompany(t *testing.T, s *Store, name string) *model.Company {
	t.Helper()
	c := &model.Company{
		Name:     name,
		Industry: model.Industry("Technology"),
		Logo:     "https://cdn.example.com/" + name + ".png",
		Address: model.Address{
			Street: "1 Main St", City: "Pune", State: "MH", Country: "India", Zip: "411001",
		},
		Contact: model.Contact{
			Phone: "+91-20-0000", Email: name + "@example.com", Website: "https://" + name + ".example.com",
		},
	}
	require.NoError(t, s.CreateCompany(context.Background(), c))
	return c
}

func seedUser(t *testing.T, s *Store, org, email, phone string, role model.Role) *model.User {
	t.Helper()
	u := &model.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		Phone:        phone,
		PasswordHash: "$2a$12$hash",
		Role:         role,
		Organization: org,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestAdminCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin := &model.Admin{
		FirstName:    "Ada",
		LastName:     "Admin",
		Email:        "ada@example.com",
		PasswordHash: "$2a$12$hash",
	}
	require.NoError(t, s.CreateAdmin(ctx, admin))
	assert.True(t, store.ValidID(admin.ID))

	count, err := s.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := s.GetAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Nil(t, got.Organization)
	assert.False(t, got.IsVerified)

	name := "Augusta"
	updated, err := s.UpdateAdmin(ctx, admin.ID, model.AdminPatch{FirstName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", updated.FirstName)
	assert.Equal(t, "Admin", updated.LastName)

	dup := &model.Admin{FirstName: "B", LastName: "B", Email: "ada@example.com", PasswordHash: "x"}
	err = s.CreateAdmin(ctx, dup)
	assert.True(t, errors.Is(err, store.ErrDuplicate), "got %v", err)

	admins, err := s.ListAdmins(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 1)

	require.NoError(t, s.DeleteAdmin(ctx, admin.ID))
	_, err = s.GetAdmin(ctx, admin.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteAdmin(ctx, admin.ID), store.ErrNotFound)
}

func TestPrincipalCredentials(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin := &model.Admin{FirstName: "A", LastName: "B", Email: "a@example.com", PasswordHash: "old"}
	require.NoError(t, s.CreateAdmin(ctx, admin))

	issued := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	require.NoError(t, s.SetOTP(ctx, model.KindAdmin, admin.ID, "otp-hash", issued))

	p, err := s.FindPrincipalByEmail(ctx, model.KindAdmin, "a@example.com")
	require.NoError(t, err)
	secrets := p.PrincipalSecrets()
	assert.Equal(t, "otp-hash", secrets.OTPHash)
	assert.True(t, secrets.OTPIssuedAt.Equal(issued), "issued at %v, want %v", secrets.OTPIssuedAt, issued)

	require.NoError(t, s.ConsumeOTP(ctx, model.KindAdmin, admin.ID))
	got, err := s.GetAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.Nil(t, got.OTPHash)
	assert.True(t, got.IsVerified)

	token := "refresh-token"
	require.NoError(t, s.SetRefreshToken(ctx, model.KindAdmin, admin.ID, &token))
	p, err = s.FindPrincipal(ctx, model.KindAdmin, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, token, p.PrincipalSecrets().RefreshToken)

	require.NoError(t, s.SetRefreshToken(ctx, model.KindAdmin, admin.ID, nil))
	p, err = s.FindPrincipal(ctx, model.KindAdmin, admin.ID)
	require.NoError(t, err)
	assert.Empty(t, p.PrincipalSecrets().RefreshToken)

	require.NoError(t, s.SetPassword(ctx, model.KindAdmin, admin.ID, "new"))
	p, err = s.FindPrincipal(ctx, model.KindAdmin, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", p.PrincipalSecrets().PasswordHash)

	_, err = s.FindPrincipal(ctx, model.KindUser, admin.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.SetOTP(ctx, model.KindUser, admin.ID, "x", issued), store.ErrNotFound)
}

func TestUserCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	company := seedCompany(t, s, "acme")

	manager := seedUser(t, s, company.ID, "m@example.com", "100", model.RoleManager)
	assert.NotNil(t, manager.ManagedTeams)
	assert.Nil(t, manager.Manager)

	employee := seedUser(t, s, company.ID, "e@example.com", "200", model.RoleEmployee)
	assert.Nil(t, employee.ManagedTeams)
	assert.Equal(t, model.MaritalSingle, employee.PersonalDetails.MaritalStatus)

	got, err := s.GetUser(ctx, employee.ID)
	require.NoError(t, err)
	assert.Equal(t, "e@example.com", got.Email)
	assert.Equal(t, company.ID, got.Organization)
	assert.Empty(t, got.Teams)

	bank := "State Bank"
	got.BankDetails.BankName = &bank
	got.Manager = &manager.ID
	require.NoError(t, s.UpdateUser(ctx, got))

	reloaded, err := s.GetUser(ctx, employee.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.BankDetails.BankName)
	assert.Equal(t, bank, *reloaded.BankDetails.BankName)
	require.NotNil(t, reloaded.Manager)
	assert.Equal(t, manager.ID, *reloaded.Manager)

	dupPhone := &model.User{
		FirstName: "X", LastName: "Y", Email: "x@example.com", Phone: "200",
		PasswordHash: "h", Role: model.RoleEmployee, Organization: company.ID,
	}
	assert.ErrorIs(t, s.CreateUser(ctx, dupPhone), store.ErrDuplicate)

	users, err := s.ListUsers(ctx, company.ID)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	byID, err := s.ListUsersByID(ctx, []string{employee.ID, store.NewID()})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, employee.ID, byID[0].ID)

	fetched, err := s.GetCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{manager.ID, employee.ID}, fetched.Users)
}

func TestDeleteUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	acme := seedCompany(t, s, "acme")
	other := seedCompany(t, s, "other")

	a := seedUser(t, s, acme.ID, "a@example.com", "1", model.RoleEmployee)
	b := seedUser(t, s, acme.ID, "b@example.com", "2", model.RoleEmployee)
	c := seedUser(t, s, acme.ID, "c@example.com", "3", model.RoleEmployee)
	outsider := seedUser(t, s, other.ID, "o@example.com", "4", model.RoleEmployee)

	n, err := s.DeleteUsers(ctx, acme.ID, []string{a.ID, outsider.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = s.GetUser(ctx, outsider.ID)
	assert.NoError(t, err, "users of another organization must survive")

	n, err = s.DeleteUsers(ctx, acme.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	for _, id := range []string{b.ID, c.ID} {
		_, err := s.GetUser(ctx, id)
		assert.ErrorIs(t, err, store.ErrNotFound)
	}
}

func TestTeamMembership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	company := seedCompany(t, s, "acme")

	lead := seedUser(t, s, company.ID, "lead@example.com", "1", model.RoleManager)
	dev := seedUser(t, s, company.ID, "dev@example.com", "2", model.RoleEmployee)

	team := &model.Team{
		Name:         "Platform",
		Organization: company.ID,
		TeamLeaders:  []string{lead.ID},
		Employees:    []string{dev.ID},
	}
	require.NoError(t, s.CreateTeam(ctx, team))

	got, err := s.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{lead.ID}, got.TeamLeaders)
	assert.Equal(t, []string{dev.ID}, got.Employees)
	assert.Empty(t, got.AssignedProjects)

	gotLead, err := s.GetUser(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{team.ID}, gotLead.ManagedTeams)
	assert.Empty(t, gotLead.Teams)

	gotDev, err := s.GetUser(ctx, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{team.ID}, gotDev.Teams)
	assert.Nil(t, gotDev.ManagedTeams)

	fetched, err := s.GetCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{team.ID}, fetched.Teams)

	teams, err := s.ListTeams(ctx, company.ID)
	require.NoError(t, err)
	assert.Len(t, teams, 1)

	byID, err := s.ListTeamsByID(ctx, []string{team.ID})
	require.NoError(t, err)
	assert.Len(t, byID, 1)

	dup := &model.Team{Name: "Platform", Organization: company.ID}
	assert.ErrorIs(t, s.CreateTeam(ctx, dup), store.ErrDuplicate)
}

func TestCompanyLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin := &model.Admin{FirstName: "A", LastName: "B", Email: "a@example.com", PasswordHash: "h"}
	require.NoError(t, s.CreateAdmin(ctx, admin))

	company := seedCompany(t, s, "acme")
	count, err := s.CountCompanies(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.SetAdminOrganization(ctx, "", &company.ID))
	got, err := s.GetAdmin(ctx, admin.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Organization)
	assert.Equal(t, company.ID, *got.Organization)

	company.Address.City = "Mumbai"
	require.NoError(t, s.UpdateCompany(ctx, company))
	fetched, err := s.GetCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", fetched.Address.City)
	assert.Equal(t, "411001", fetched.Address.Zip)

	dup := &model.Company{
		Name: "acme", Industry: "Technology", Logo: "l",
		Contact: model.Contact{Email: "new@example.com"},
	}
	assert.ErrorIs(t, s.CreateCompany(ctx, dup), store.ErrDuplicate)

	user := seedUser(t, s, company.ID, "u@example.com", "1", model.RoleEmployee)
	team := &model.Team{Name: "Ops", Organization: company.ID, Employees: []string{user.ID}}
	require.NoError(t, s.CreateTeam(ctx, team))

	require.NoError(t, s.DeleteCompany(ctx, company.ID))

	_, err = s.GetCompany(ctx, company.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetTeam(ctx, team.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err = s.GetAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Organization)

	assert.ErrorIs(t, s.DeleteCompany(ctx, company.ID), store.ErrNotFound)
}

func TestLimitedInserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &model.Admin{FirstName: "A", LastName: "One", Email: "one@example.com", PasswordHash: "h"}
	require.NoError(t, s.CreateAdminLimited(ctx, first, 2))
	assert.Nil(t, first.Organization)

	company := &model.Company{
		Name: "acme", Industry: "Technology", Logo: "l",
		Contact: model.Contact{Email: "acme@example.com"},
	}
	require.NoError(t, s.CreateCompanyLimited(ctx, company, 1))
	got, err := s.GetAdmin(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Organization)
	assert.Equal(t, company.ID, *got.Organization)

	other := &model.Company{
		Name: "globex", Industry: "Technology", Logo: "l",
		Contact: model.Contact{Email: "globex@example.com"},
	}
	assert.ErrorIs(t, s.CreateCompanyLimited(ctx, other, 1), store.ErrQuota)

	second := &model.Admin{FirstName: "A", LastName: "Two", Email: "two@example.com", PasswordHash: "h"}
	require.NoError(t, s.CreateAdminLimited(ctx, second, 2))
	require.NotNil(t, second.Organization)
	assert.Equal(t, company.ID, *second.Organization)

	dup := &model.Admin{FirstName: "A", LastName: "Dup", Email: "one@example.com", PasswordHash: "h"}
	assert.ErrorIs(t, s.CreateAdminLimited(ctx, dup, 3), store.ErrDuplicate)

	third := &model.Admin{FirstName: "A", LastName: "Three", Email: "three@example.com", PasswordHash: "h"}
	assert.ErrorIs(t, s.CreateAdminLimited(ctx, third, 2), store.ErrQuota)
}

func TestCreateAdminLimited_ConcurrentFileStore(t *testing.T) {
	s, err := NewSQLite(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			errs <- s.CreateAdminLimited(ctx, &model.Admin{
				FirstName: "A", LastName: "B", Email: fmt.Sprintf("a%d@example.com", i), PasswordHash: "h",
			}, 2)
		}(i)
	}
	created := 0
	for i := 0; i < n; i++ {
		if err := <-errs; err == nil {
			created++
		} else {
			assert.ErrorIs(t, err, store.ErrQuota)
		}
	}
	assert.Equal(t, 2, created)

	count, err := s.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
