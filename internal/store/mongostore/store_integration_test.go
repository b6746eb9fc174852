//go:build integration

package mongostore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"

	"github.com/staffhub/staffhub/internal/database"
	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	s, err := New(ctx, database.NewPool(uri, "staffhub_test", 10*time.Second))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMongoStore(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	admin := &model.Admin{FirstName: "A", LastName: "B", Email: "a@example.com", PasswordHash: "h"}
	require.NoError(t, s.CreateAdmin(ctx, admin))
	assert.ErrorIs(t, s.CreateAdmin(ctx, &model.Admin{Email: "a@example.com"}), store.ErrDuplicate)

	require.NoError(t, s.SetOTP(ctx, model.KindAdmin, admin.ID, "hash", time.Now()))
	require.NoError(t, s.ConsumeOTP(ctx, model.KindAdmin, admin.ID))
	got, err := s.GetAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Nil(t, got.OTPHash)

	company := &model.Company{
		Name: "acme", Industry: model.IndustryTechnology, Logo: "logo",
		Contact: model.Contact{Email: "acme@example.com"},
	}
	require.NoError(t, s.CreateCompany(ctx, company))
	require.NoError(t, s.SetAdminOrganization(ctx, "", &company.ID))

	lead := &model.User{
		FirstName: "L", LastName: "L", Email: "lead@example.com", Phone: "1",
		PasswordHash: "h", Role: model.RoleManager, Organization: company.ID,
	}
	require.NoError(t, s.CreateUser(ctx, lead))
	dev := &model.User{
		FirstName: "D", LastName: "D", Email: "dev@example.com", Phone: "2",
		PasswordHash: "h", Role: model.RoleEmployee, Organization: company.ID,
	}
	require.NoError(t, s.CreateUser(ctx, dev))

	team := &model.Team{
		Name: "Platform", Organization: company.ID,
		TeamLeaders: []string{lead.ID}, Employees: []string{dev.ID},
	}
	require.NoError(t, s.CreateTeam(ctx, team))

	gotCompany, err := s.GetCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{lead.ID, dev.ID}, gotCompany.Users)
	assert.Equal(t, []string{team.ID}, gotCompany.Teams)

	gotLead, err := s.GetUser(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{team.ID}, gotLead.ManagedTeams)
	gotDev, err := s.GetUser(ctx, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{team.ID}, gotDev.Teams)

	n, err := s.DeleteUsers(ctx, company.ID, []string{dev.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	gotTeam, err := s.GetTeam(ctx, team.ID)
	require.NoError(t, err)
	assert.Empty(t, gotTeam.Employees)

	require.NoError(t, s.DeleteCompany(ctx, company.ID))
	_, err = s.GetUser(ctx, lead.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	got, err = s.GetAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Organization)
}

func TestMongoStore_LimitedInserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Written before slots existed; occupies the first slot.
	legacy := &model.Admin{FirstName: "L", LastName: "L", Email: "legacy@example.com", PasswordHash: "h"}
	require.NoError(t, s.CreateAdmin(ctx, legacy))

	const n = 6
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
	assert.Equal(t, 1, created)
	count, err := s.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	company := &model.Company{
		Name: "acme", Industry: model.IndustryTechnology, Logo: "logo",
		Contact: model.Contact{Email: "acme@example.com"},
	}
	require.NoError(t, s.CreateCompanyLimited(ctx, company, 1))
	other := &model.Company{
		Name: "globex", Industry: model.IndustryTechnology, Logo: "logo",
		Contact: model.Contact{Email: "globex@example.com"},
	}
	assert.ErrorIs(t, s.CreateCompanyLimited(ctx, other, 1), store.ErrQuota)

	admins, err := s.ListAdmins(ctx)
	require.NoError(t, err)
	for _, a := range admins {
		require.NotNil(t, a.Organization)
		assert.Equal(t, company.ID, *a.Organization)
	}
}
