//go:build integration

package sqlstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

func newPostgresStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("staffhub_test"),
		postgres.WithUsername("staffhub"),
		postgres.WithPassword("staffhub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewPostgres(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPostgresStore(t *testing.T) {
	s := newPostgresStore(t)
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	admin := &model.Admin{FirstName: "A", LastName: "B", Email: "a@example.com", PasswordHash: "h"}
	require.NoError(t, s.CreateAdmin(ctx, admin))
	assert.ErrorIs(t, s.CreateAdmin(ctx, &model.Admin{Email: "a@example.com"}), store.ErrDuplicate)

	company := seedCompany(t, s, "acme")
	require.NoError(t, s.SetAdminOrganization(ctx, admin.ID, &company.ID))

	lead := seedUser(t, s, company.ID, "lead@example.com", "1", model.RoleManager)
	dev := seedUser(t, s, company.ID, "dev@example.com", "2", model.RoleEmployee)
	team := &model.Team{
		Name:         "Platform",
		Organization: company.ID,
		TeamLeaders:  []string{lead.ID},
		Employees:    []string{dev.ID},
	}
	require.NoError(t, s.CreateTeam(ctx, team))

	gotLead, err := s.GetUser(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{team.ID}, gotLead.ManagedTeams)

	require.NoError(t, s.SetOTP(ctx, model.KindUser, dev.ID, "hash", time.Now()))
	require.NoError(t, s.ConsumeOTP(ctx, model.KindUser, dev.ID))

	n, err := s.DeleteUsers(ctx, company.ID, []string{dev.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.DeleteCompany(ctx, company.ID))
	got, err := s.GetAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Organization)
	_, err = s.GetTeam(ctx, team.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresStore_ConcurrentLimitedInserts(t *testing.T) {
	s := newPostgresStore(t)
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
