package service

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

// Expanders resolve the references of a record into the records themselves.
// Dangling references expand to nil instead of failing the read.

func expandUser(ctx context.Context, st store.Store, u *model.User) (*model.UserDetail, error) {
	d := &model.UserDetail{User: u, Teams: []model.Team{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := st.GetCompany(gctx, u.Organization)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		d.Organization = c
		return err
	})
	if u.Manager != nil {
		g.Go(func() error {
			m, err := st.GetUser(gctx, *u.Manager)
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			d.Manager = m
			return err
		})
	}
	g.Go(func() error {
		teams, err := st.ListTeamsByID(gctx, u.Teams)
		d.Teams = teams
		return err
	})
	if u.ManagedTeams != nil {
		g.Go(func() error {
			teams, err := st.ListTeamsByID(gctx, u.ManagedTeams)
			d.ManagedTeams = teams
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

func expandCompany(ctx context.Context, st store.Store, c *model.Company) (*model.CompanyDetail, error) {
	d := &model.CompanyDetail{Company: c}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := st.ListUsers(gctx, c.ID)
		d.Users = users
		return err
	})
	g.Go(func() error {
		teams, err := st.ListTeams(gctx, c.ID)
		d.Teams = teams
		return err
	})
	if c.CreatedBy != nil {
		g.Go(func() error {
			a, err := st.GetAdmin(gctx, *c.CreatedBy)
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			d.CreatedBy = a
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

func expandAdmin(ctx context.Context, st store.Store, a *model.Admin) (*model.AdminDetail, error) {
	d := &model.AdminDetail{Admin: a}
	if a.Organization == nil {
		return d, nil
	}
	c, err := st.GetCompany(ctx, *a.Organization)
	if errors.Is(err, store.ErrNotFound) {
		return d, nil
	}
	if err != nil {
		return nil, err
	}
	d.Organization, err = expandCompany(ctx, st, c)
	if err != nil {
		return nil, err
	}
	return d, nil
}
