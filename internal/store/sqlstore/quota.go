package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

// orgLockKey is the postgres advisory lock held by the limited inserts.
// Admin registration and company creation share it so an admin registered
// while the company is being created still ends up attached.
const orgLockKey int64 = 0x5354_4146_4648_5542

// lockOrg serializes the limited inserts for the rest of tx. On SQLite the
// write transaction already holds the database lock.
func (s *Store) lockOrg(ctx context.Context, tx *sqlx.Tx) error {
	if s.dialect != DialectPostgres {
		return nil
	}
	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", orgLockKey); err != nil {
		return fmt.Errorf("lock organization: %w", err)
	}
	return nil
}

// CreateAdminLimited inserts admin unless limit admins already exist.
func (s *Store) CreateAdminLimited(ctx context.Context, admin *model.Admin, limit int) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.lockOrg(ctx, tx); err != nil {
			return err
		}
		var count int
		if err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM admins"); err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if count >= limit {
			return store.ErrQuota
		}

		var orgs []string
		if err := tx.SelectContext(ctx, &orgs, "SELECT id FROM companies ORDER BY created_at LIMIT 1"); err != nil {
			return fmt.Errorf("find organization: %w", err)
		}
		if len(orgs) > 0 {
			admin.Organization = &orgs[0]
		}
		return insertAdmin(ctx, tx, admin)
	})
}

// CreateCompanyLimited inserts company unless limit companies already exist
// and attaches every admin to it.
func (s *Store) CreateCompanyLimited(ctx context.Context, company *model.Company, limit int) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.lockOrg(ctx, tx); err != nil {
			return err
		}
		var count int
		if err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM companies"); err != nil {
			return fmt.Errorf("count companies: %w", err)
		}
		if count >= limit {
			return store.ErrQuota
		}
		if err := insertCompany(ctx, tx, company); err != nil {
			return err
		}

		q := tx.Rebind("UPDATE admins SET organization = ?, updated_at = ?")
		if _, err := tx.ExecContext(ctx, q, company.ID, time.Now().UTC()); err != nil {
			return classify(err, "attach admins")
		}
		return nil
	})
}
