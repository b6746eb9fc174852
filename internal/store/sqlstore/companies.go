package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

// companyRow is a flat struct that maps 1:1 to the companies table columns.
// model.Company nests address and contact, and derives its member lists.
type companyRow struct {
	ID              string     `db:"id"`
	Name            string     `db:"name"`
	Industry        string     `db:"industry"`
	Description     *string    `db:"description"`
	Logo            string     `db:"logo"`
	EstablishedDate *time.Time `db:"established_date"`
	Street          string     `db:"street"`
	City            string     `db:"city"`
	State           string     `db:"state"`
	Country         string     `db:"country"`
	Zip             string     `db:"zip"`
	Phone           string     `db:"phone"`
	Email           string     `db:"email"`
	Website         string     `db:"website"`
	ProjectsJSON    string     `db:"projects_json"`
	TasksJSON       string     `db:"tasks_json"`
	CreatedBy       *string    `db:"created_by"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func companyRowFromModel(c *model.Company) (companyRow, error) {
	projects, err := toJSON(orEmpty(c.Projects))
	if err != nil {
		return companyRow{}, err
	}
	tasks, err := toJSON(orEmpty(c.Tasks))
	if err != nil {
		return companyRow{}, err
	}
	return companyRow{
		ID:              c.ID,
		Name:            c.Name,
		Industry:        string(c.Industry),
		Description:     c.Description,
		Logo:            c.Logo,
		EstablishedDate: c.EstablishedDate,
		Street:          c.Address.Street,
		City:            c.Address.City,
		State:           c.Address.State,
		Country:         c.Address.Country,
		Zip:             c.Address.Zip,
		Phone:           c.Contact.Phone,
		Email:           c.Contact.Email,
		Website:         c.Contact.Website,
		ProjectsJSON:    projects,
		TasksJSON:       tasks,
		CreatedBy:       c.CreatedBy,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}, nil
}

func (r companyRow) toModel() (model.Company, error) {
	c := model.Company{
		ID:              r.ID,
		Name:            r.Name,
		Industry:        model.Industry(r.Industry),
		Description:     r.Description,
		Logo:            r.Logo,
		EstablishedDate: r.EstablishedDate,
		Address: model.Address{
			Street:  r.Street,
			City:    r.City,
			State:   r.State,
			Country: r.Country,
			Zip:     r.Zip,
		},
		Contact: model.Contact{
			Phone:   r.Phone,
			Email:   r.Email,
			Website: r.Website,
		},
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if err := fromJSON(r.ProjectsJSON, &c.Projects); err != nil {
		return model.Company{}, fmt.Errorf("decode projects: %w", err)
	}
	if err := fromJSON(r.TasksJSON, &c.Tasks); err != nil {
		return model.Company{}, fmt.Errorf("decode tasks: %w", err)
	}
	c.Projects = orEmpty(c.Projects)
	c.Tasks = orEmpty(c.Tasks)
	return c, nil
}

func (s *Store) hydrateCompany(ctx context.Context, r companyRow) (model.Company, error) {
	c, err := r.toModel()
	if err != nil {
		return model.Company{}, err
	}
	c.Users = []string{}
	q := s.db.Rebind("SELECT id FROM users WHERE organization = ? ORDER BY created_at")
	if err := s.db.SelectContext(ctx, &c.Users, q, c.ID); err != nil {
		return model.Company{}, fmt.Errorf("load company users: %w", err)
	}
	c.Teams = []string{}
	q = s.db.Rebind("SELECT id FROM teams WHERE organization = ? ORDER BY created_at")
	if err := s.db.SelectContext(ctx, &c.Teams, q, c.ID); err != nil {
		return model.Company{}, fmt.Errorf("load company teams: %w", err)
	}
	return c, nil
}

// CreateCompany inserts a new company. The ID, CreatedAt, and UpdatedAt fields
// are populated before the insert.
func (s *Store) CreateCompany(ctx context.Context, company *model.Company) error {
	return insertCompany(ctx, s.db, company)
}

func insertCompany(ctx context.Context, ext sqlx.ExtContext, company *model.Company) error {
	now := time.Now().UTC()
	company.ID = store.NewID()
	company.CreatedAt = now
	company.UpdatedAt = now

	row, err := companyRowFromModel(company)
	if err != nil {
		return err
	}

	const q = `INSERT INTO companies
		(id, name, industry, description, logo, established_date, street, city, state, country, zip,
		 phone, email, website, projects_json, tasks_json, created_by, created_at, updated_at)
		VALUES
		(:id, :name, :industry, :description, :logo, :established_date, :street, :city, :state, :country, :zip,
		 :phone, :email, :website, :projects_json, :tasks_json, :created_by, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, ext, q, row); err != nil {
		return classify(err, "insert company")
	}
	company.Users = []string{}
	company.Teams = []string{}
	company.Projects = orEmpty(company.Projects)
	company.Tasks = orEmpty(company.Tasks)
	return nil
}

// CountCompanies returns the number of companies.
func (s *Store) CountCompanies(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM companies"); err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return count, nil
}

// GetCompany returns a company by ID.
func (s *Store) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	var row companyRow
	if err := s.db.GetContext(ctx, &row, s.db.Rebind("SELECT * FROM companies WHERE id = ?"), id); err != nil {
		return nil, classify(err, "get company")
	}
	c, err := s.hydrateCompany(ctx, row)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListCompanies returns all companies.
func (s *Store) ListCompanies(ctx context.Context) ([]model.Company, error) {
	var rows []companyRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM companies ORDER BY created_at"); err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	companies := make([]model.Company, len(rows))
	for i, r := range rows {
		c, err := s.hydrateCompany(ctx, r)
		if err != nil {
			return nil, err
		}
		companies[i] = c
	}
	return companies, nil
}

// UpdateCompany replaces the mutable fields of a company. UpdatedAt is
// refreshed automatically.
func (s *Store) UpdateCompany(ctx context.Context, company *model.Company) error {
	company.UpdatedAt = time.Now().UTC()
	row, err := companyRowFromModel(company)
	if err != nil {
		return err
	}

	const q = `UPDATE companies SET
		name = :name, industry = :industry, description = :description, logo = :logo,
		established_date = :established_date, street = :street, city = :city, state = :state,
		country = :country, zip = :zip, phone = :phone, email = :email, website = :website,
		updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return classify(err, "update company")
	}
	return checkAffected(result, "update company")
}

// DeleteCompany removes a company together with its teams and users, and
// detaches its admins, within a transaction.
func (s *Store) DeleteCompany(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		steps := []struct {
			op string
			q  string
		}{
			{"delete team memberships", `DELETE FROM team_members
				WHERE team_id IN (SELECT id FROM teams WHERE organization = ?)`},
			{"delete user memberships", `DELETE FROM team_members
				WHERE user_id IN (SELECT id FROM users WHERE organization = ?)`},
			{"delete teams", "DELETE FROM teams WHERE organization = ?"},
			{"delete users", "DELETE FROM users WHERE organization = ?"},
			{"detach admins", "UPDATE admins SET organization = NULL WHERE organization = ?"},
		}
		for _, step := range steps {
			if _, err := tx.ExecContext(ctx, s.db.Rebind(step.q), id); err != nil {
				return fmt.Errorf("%s: %w", step.op, err)
			}
		}

		result, err := tx.ExecContext(ctx, s.db.Rebind("DELETE FROM companies WHERE id = ?"), id)
		if err != nil {
			return fmt.Errorf("delete company: %w", err)
		}
		return checkAffected(result, "delete company")
	})
}
