package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffhub/staffhub/internal/apperr"
	"github.com/staffhub/staffhub/internal/model"
)

func TestAdminRegister_Quota(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.registerAdmin(t, "ada@acme.test")

	_, err := e.admins.Register(ctx, RegisterAdminInput{
		FirstName: "Ada", LastName: "Again", Email: "ADA@acme.test", Password: testPassword,
	})
	requireCode(t, err, apperr.CodeConflict)

	e.registerAdmin(t, "alan@acme.test")
	_, err = e.admins.Register(ctx, RegisterAdminInput{
		FirstName: "Third", LastName: "Admin", Email: "third@acme.test", Password: testPassword,
	})
	requireCode(t, err, apperr.CodeQuotaExceeded)
	assert.Equal(t, MsgAdminQuota, apperr.Message(err))
}

func TestAdminRegister_Validation(t *testing.T) {
	e := newTestEnv(t)
	tests := []struct {
		name string
		in   RegisterAdminInput
	}{
		{"missing field", RegisterAdminInput{FirstName: "Ada", Email: "ada@acme.test", Password: testPassword}},
		{"bad email", RegisterAdminInput{FirstName: "Ada", LastName: "L", Email: "ada-at-acme", Password: testPassword}},
		{"weak password", RegisterAdminInput{FirstName: "Ada", LastName: "L", Email: "ada@acme.test", Password: "password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.admins.Register(context.Background(), tt.in)
			requireCode(t, err, apperr.CodeValidation)
		})
	}
}

func TestAdminRegister_JoinsExistingCompany(t *testing.T) {
	e := newTestEnv(t)
	_, c := e.seedOrg(t)

	second := e.registerAdmin(t, "alan@acme.test")
	require.NotNil(t, second.Organization)
	assert.Equal(t, c.ID, *second.Organization)
}

func TestAdminRegister_ConcurrentQuota(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	const n = 6
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.admins.Register(ctx, RegisterAdminInput{
				FirstName: "Admin", LastName: fmt.Sprint(i),
				Email: fmt.Sprintf("admin%d@acme.test", i), Password: testPassword,
			})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		requireCode(t, err, apperr.CodeQuotaExceeded)
	}
	assert.Equal(t, MaxAdmins, created)

	count, err := e.store.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, MaxAdmins, count)
}

func TestAdminUpdateProfileAndGet(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin, c := e.seedOrg(t)

	first := "Augusta"
	updated, err := e.admins.UpdateProfile(ctx, admin, model.AdminPatch{FirstName: &first})
	require.NoError(t, err)
	assert.Equal(t, "Augusta", updated.FirstName)

	_, err = e.admins.UpdateProfile(ctx, admin, model.AdminPatch{})
	requireCode(t, err, apperr.CodeValidation)

	detail, err := e.admins.Get(ctx, admin.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Organization)
	assert.Equal(t, c.ID, detail.Organization.ID)
	require.NotNil(t, detail.Organization.CreatedBy)
	assert.Equal(t, admin.ID, detail.Organization.CreatedBy.ID)

	_, err = e.admins.Get(ctx, "bogus")
	requireCode(t, err, apperr.CodeValidation)
	_, err = e.admins.Get(ctx, "65a000000000000000000001")
	requireCode(t, err, apperr.CodeNotFound)
}

func TestAdminDelete_CascadesCompany(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin, c := e.seedOrg(t)
	other := e.registerAdmin(t, "alan@acme.test")
	u := e.createUser(t, admin, "grace@acme.test", "+14155550100", model.RoleEmployee)

	require.NoError(t, e.admins.Delete(ctx, admin.ID))

	_, err := e.companies.Get(ctx, c.ID)
	requireCode(t, err, apperr.CodeNotFound)
	_, err = e.store.GetUser(ctx, u.ID)
	assert.Error(t, err)

	remaining, err := e.admins.List(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].ID)
	assert.Nil(t, remaining[0].Organization)

	err = e.admins.Delete(ctx, admin.ID)
	requireCode(t, err, apperr.CodeNotFound)
}

func TestCompanyCreate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	a := e.registerAdmin(t, "ada@acme.test")
	b := e.registerAdmin(t, "alan@acme.test")

	bad := testCompanyInput()
	bad.Industry = "Mining"
	_, err := e.companies.Create(ctx, adminIdentity(a), bad)
	requireCode(t, err, apperr.CodeValidation)

	bad = testCompanyInput()
	bad.Website = "ftp://acme.test"
	_, err = e.companies.Create(ctx, adminIdentity(a), bad)
	requireCode(t, err, apperr.CodeValidation)

	in := testCompanyInput()
	in.EstablishedDate = "2001-04-01"
	c, err := e.companies.Create(ctx, adminIdentity(a), in)
	require.NoError(t, err)
	require.NotNil(t, c.EstablishedDate)
	assert.Equal(t, 2001, c.EstablishedDate.Year())

	// Every admin joins the organization.
	for _, id := range []string{a.ID, b.ID} {
		stored, err := e.store.GetAdmin(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, stored.Organization)
		assert.Equal(t, c.ID, *stored.Organization)
	}

	in.Name = "Second"
	in.Email = "hr@second.test"
	_, err = e.companies.Create(ctx, adminIdentity(a), in)
	requireCode(t, err, apperr.CodeQuotaExceeded)
}

func TestCompanyCreate_ConcurrentQuota(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	first := adminIdentity(e.registerAdmin(t, "ada@acme.test"))
	second := adminIdentity(e.registerAdmin(t, "alan@acme.test"))

	const n = 4
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			in := testCompanyInput()
			in.Name = fmt.Sprintf("Acme %d", i)
			in.Email = fmt.Sprintf("hr%d@acme.test", i)
			by := first
			if i%2 == 1 {
				by = second
			}
			_, errs[i] = e.companies.Create(ctx, by, in)
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		requireCode(t, err, apperr.CodeQuotaExceeded)
	}
	assert.Equal(t, MaxCompanies, created)

	companies, err := e.store.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, companies, 1)

	admins, err := e.store.ListAdmins(ctx)
	require.NoError(t, err)
	for _, a := range admins {
		require.NotNil(t, a.Organization, "admin %s left detached", a.Email)
		assert.Equal(t, companies[0].ID, *a.Organization)
	}
}

func TestCompanyUpdateAndList(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin, c := e.seedOrg(t)
	e.createUser(t, admin, "grace@acme.test", "+14155550100", model.RoleEmployee)

	city := "Mumbai"
	patch := CompanyPatch{Address: &AddressPatch{City: &city}}
	updated, err := e.companies.Update(ctx, c.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", updated.Address.City)
	assert.Equal(t, "1 Main St", updated.Address.Street)

	industry := "Mining"
	_, err = e.companies.Update(ctx, c.ID, CompanyPatch{Industry: &industry})
	requireCode(t, err, apperr.CodeValidation)

	list, err := e.companies.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Users, 1)
	require.NotNil(t, list[0].CreatedBy)
	assert.Equal(t, admin.ID, list[0].CreatedBy.ID)
}

func TestCompanyDelete(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin, c := e.seedOrg(t)

	require.NoError(t, e.companies.Delete(ctx, c.ID))
	stored, err := e.store.GetAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Organization)

	requireCode(t, e.companies.Delete(ctx, c.ID), apperr.CodeNotFound)
	requireCode(t, e.companies.Delete(ctx, "nope"), apperr.CodeValidation)
}

func TestUserCreate_Rules(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin, c := e.seedOrg(t)

	manager := e.createUser(t, admin, "mgr@acme.test", "+14155550101", model.RoleManager)
	employee := e.createUser(t, userIdentity(manager), "emp@acme.test", "+14155550102", model.RoleEmployee)
	assert.Equal(t, c.ID, employee.Organization)
	assert.Nil(t, employee.ManagedTeams)
	assert.NotNil(t, manager.ManagedTeams)

	in := CreateUserInput{
		FirstName: "New", LastName: "Hire", Email: "new@acme.test", Phone: "+14155550103",
		Password: testPassword, Role: string(model.RoleManager),
	}
	_, err := e.users.Create(ctx, userIdentity(manager), in)
	requireCode(t, err, apperr.CodeForbidden)

	in.Role = string(model.RoleEmployee)
	_, err = e.users.Create(ctx, userIdentity(employee), in)
	requireCode(t, err, apperr.CodeForbidden)

	in.Role = string(model.RoleAdmin)
	_, err = e.users.Create(ctx, admin, in)
	requireCode(t, err, apperr.CodeValidation)

	in.Role = string(model.RoleEmployee)
	in.Phone = "020-1234"
	_, err = e.users.Create(ctx, admin, in)
	requireCode(t, err, apperr.CodeValidation)

	in.Phone = "+14155550103"
	in.Email = "EMP@acme.test"
	_, err = e.users.Create(ctx, admin, in)
	requireCode(t, err, apperr.CodeConflict)
}

func TestUserUpdate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin, _ := e.seedOrg(t)
	manager := e.createUser(t, admin, "mgr@acme.test", "+14155550101", model.RoleManager)
	employee := e.createUser(t, admin, "emp@acme.test", "+14155550102", model.RoleEmployee)
	other := e.createUser(t, admin, "other@acme.test", "+14155550103", model.RoleEmployee)

	designation := "Engineer"
	dob := "1990-12-10"
	status := "married"
	updated, err := e.users.Update(ctx, userIdentity(employee), employee.ID, UserUpdate{
		CurrentDesignation: &designation,
		DateOfBirth:        &dob,
		MaritalStatus:      &status,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.CurrentExperience.Designation)
	assert.Equal(t, "Engineer", *updated.CurrentExperience.Designation)
	require.NotNil(t, updated.PersonalDetails.DateOfBirth)
	assert.Equal(t, model.MaritalMarried, updated.PersonalDetails.MaritalStatus)

	// Employees may only edit themselves and never their role.
	_, err = e.users.Update(ctx, userIdentity(employee), other.ID, UserUpdate{CurrentDesignation: &designation})
	requireCode(t, err, apperr.CodeForbidden)
	role := string(model.RoleManager)
	_, err = e.users.Update(ctx, userIdentity(employee), employee.ID, UserUpdate{Role: &role})
	requireCode(t, err, apperr.CodeForbidden)
	_, err = e.users.Update(ctx, userIdentity(manager), employee.ID, UserUpdate{Role: &role})
	requireCode(t, err, apperr.CodeForbidden)

	bad := "someday"
	_, err = e.users.Update(ctx, admin, employee.ID, UserUpdate{DateOfBirth: &bad})
	requireCode(t, err, apperr.CodeValidation)

	_, err = e.users.Update(ctx, admin, employee.ID, UserUpdate{Manager: &other.ID})
	requireCode(t, err, apperr.CodeValidation)
	updated, err = e.users.Update(ctx, userIdentity(manager), employee.ID, UserUpdate{Manager: &manager.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.Manager)
	assert.Equal(t, manager.ID, *updated.Manager)

	detail, err := e.users.Get(ctx, admin, employee.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Manager)
	assert.Equal(t, manager.ID, detail.Manager.ID)

	// Promoting drops the manager link.
	updated, err = e.users.Update(ctx, admin, employee.ID, UserUpdate{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, model.RoleManager, updated.Role)
	assert.Nil(t, updated.Manager)
	assert.NotNil(t, updated.ManagedTeams)
}

func TestUserDelete(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin, _ := e.seedOrg(t)
	a := e.createUser(t, admin, "a@acme.test", "+14155550101", model.RoleEmployee)
	e.createUser(t, admin, "b@acme.test", "+14155550102", model.RoleEmployee)
	e.createUser(t, admin, "c@acme.test", "+14155550103", model.RoleEmployee)

	all, err := e.users.Delete(ctx, admin, []string{a.ID})
	require.NoError(t, err)
	assert.False(t, all)
	users, err := e.users.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = e.users.Get(ctx, admin, a.ID)
	requireCode(t, err, apperr.CodeNotFound)

	all, err = e.users.Delete(ctx, admin, nil)
	require.NoError(t, err)
	assert.True(t, all)
	users, err = e.users.List(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserGet_OtherOrganization(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin, _ := e.seedOrg(t)
	u := e.createUser(t, admin, "grace@acme.test", "+14155550100", model.RoleEmployee)

	outsider := &Identity{ID: "65a000000000000000000009", Kind: model.KindAdmin, Role: model.RoleAdmin,
		Organization: "65a000000000000000000010"}
	_, err := e.users.Get(ctx, outsider, u.ID)
	requireCode(t, err, apperr.CodeNotFound)
}

func TestTeamCreate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin, c := e.seedOrg(t)
	manager := e.createUser(t, admin, "mgr@acme.test", "+14155550101", model.RoleManager)
	employee := e.createUser(t, admin, "emp@acme.test", "+14155550102", model.RoleEmployee)

	_, err := e.teams.Create(ctx, admin, CreateTeamInput{Name: "Core", TeamLeaders: []string{employee.ID}})
	requireCode(t, err, apperr.CodeValidation)
	_, err = e.teams.Create(ctx, admin, CreateTeamInput{Name: "Core"})
	requireCode(t, err, apperr.CodeValidation)
	_, err = e.teams.Create(ctx, admin, CreateTeamInput{
		Name: "Core", TeamLeaders: []string{manager.ID}, Employees: []string{"65a000000000000000000001"},
	})
	requireCode(t, err, apperr.CodeValidation)

	team, err := e.teams.Create(ctx, admin, CreateTeamInput{
		Name:        "Core",
		Description: "Platform team",
		TeamLeaders: []string{manager.ID, manager.ID},
		Employees:   []string{employee.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, c.ID, team.Organization)
	assert.Equal(t, []string{manager.ID}, team.TeamLeaders)

	_, err = e.teams.Create(ctx, admin, CreateTeamInput{Name: "Core", TeamLeaders: []string{manager.ID}})
	requireCode(t, err, apperr.CodeConflict)

	// Membership is visible from both sides.
	detail, err := e.users.Get(ctx, admin, employee.ID)
	require.NoError(t, err)
	require.Len(t, detail.Teams, 1)
	assert.Equal(t, team.ID, detail.Teams[0].ID)
	detail, err = e.users.Get(ctx, admin, manager.ID)
	require.NoError(t, err)
	require.Len(t, detail.ManagedTeams, 1)

	teams, err := e.teams.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, teams, 1)

	got, err := e.teams.Get(ctx, userIdentity(employee), team.ID)
	require.NoError(t, err)
	assert.Equal(t, "Core", got.Name)

	outsider := &Identity{ID: admin.ID, Kind: model.KindAdmin, Role: model.RoleAdmin, Organization: "65a000000000000000000010"}
	_, err = e.teams.Get(ctx, outsider, team.ID)
	requireCode(t, err, apperr.CodeNotFound)
}
