package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/staffhub/staffhub/internal/apperr"
	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

// MaxCompanies is the number of organizations the system allows.
const MaxCompanies = 1

const (
	MsgCompanyCreated  = "Company created successfully."
	MsgCompanyQuota    = "You can create only 1 company."
	MsgCompanyConflict = "A company with the same email or name already exists."
	MsgCompanyNotFound = "Company not found"
	MsgCompanyUpdated  = "Company updated successfully"
	MsgCompanyDeleted  = "Company deleted successfully"
)

// CompanyInput is the body of company creation. Address and contact are
// flat, matching the form clients submit.
type CompanyInput struct {
	Name            string `json:"name"`
	Industry        string `json:"industry"`
	Description     string `json:"description"`
	Logo            string `json:"logo"`
	EstablishedDate string `json:"establishedDate"`
	Street          string `json:"street"`
	City            string `json:"city"`
	State           string `json:"state"`
	Country         string `json:"country"`
	Zip             string `json:"zip"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Website         string `json:"website"`
}

// CompanyPatch is a partial company update. Address and contact subfields
// are merged into the stored ones.
type CompanyPatch struct {
	Name            *string       `json:"name"`
	Industry        *string       `json:"industry"`
	Description     *string       `json:"description"`
	Logo            *string       `json:"logo"`
	EstablishedDate *string       `json:"establishedDate"`
	Address         *AddressPatch `json:"address"`
	Contact         *ContactPatch `json:"contact"`
}

type AddressPatch struct {
	Street  *string `json:"street"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Country *string `json:"country"`
	Zip     *string `json:"zip"`
}

type ContactPatch struct {
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Website *string `json:"website"`
}

// CompanyService manages the organization.
type CompanyService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCompanyService returns a company service.
func NewCompanyService(st store.Store, logger *slog.Logger) *CompanyService {
	return &CompanyService{store: st, logger: logger}
}

// Create creates the organization on behalf of an admin and attaches every
// super-admin to it.
func (s *CompanyService) Create(ctx context.Context, id *Identity, in CompanyInput) (*model.Company, error) {
	if !required(in.Name, in.Industry, in.Logo, in.Street, in.City, in.State, in.Country, in.Zip,
		in.Phone, in.Email, in.Website) {
		return nil, apperr.Validation(MsgAllFieldsRequired)
	}

	c := &model.Company{
		Name:        in.Name,
		Industry:    model.Industry(in.Industry),
		Description: model.StringPtr(in.Description),
		Logo:        in.Logo,
		Address: model.Address{
			Street: in.Street, City: in.City, State: in.State, Country: in.Country, Zip: in.Zip,
		},
		Contact: model.Contact{
			Phone: in.Phone, Email: normalizeEmail(in.Email), Website: in.Website,
		},
		CreatedBy: &id.ID,
	}
	if in.EstablishedDate != "" {
		t, err := parseDate(in.EstablishedDate, "establishedDate")
		if err != nil {
			return nil, err
		}
		c.EstablishedDate = t
	}
	if err := validateCompany(c); err != nil {
		return nil, err
	}

	switch err := s.store.CreateCompanyLimited(ctx, c, MaxCompanies); {
	case errors.Is(err, store.ErrQuota):
		return nil, apperr.QuotaExceeded(MsgCompanyQuota)
	case errors.Is(err, store.ErrDuplicate):
		return nil, apperr.Conflict(MsgCompanyConflict)
	case err != nil:
		return nil, apperr.Internal("create company", err)
	}
	s.logger.Info("company created", "company", c.ID, "admin", id.ID)
	return c, nil
}

func validateCompany(c *model.Company) error {
	if !c.Industry.Valid() {
		return apperr.Validation("Industry must be one of Technology, Finance, Healthcare, Education, Other.")
	}
	if err := ValidateEmail(c.Contact.Email); err != nil {
		return err
	}
	if err := ValidatePhone(c.Contact.Phone); err != nil {
		return err
	}
	if err := ValidateURL(c.Contact.Website, "website"); err != nil {
		return err
	}
	return nil
}

// List returns all companies with their members expanded.
func (s *CompanyService) List(ctx context.Context) ([]model.CompanyDetail, error) {
	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return nil, apperr.Internal("list companies", err)
	}
	out := make([]model.CompanyDetail, 0, len(companies))
	for i := range companies {
		d, err := expandCompany(ctx, s.store, &companies[i])
		if err != nil {
			return nil, apperr.Internal("expand company", err)
		}
		out = append(out, *d)
	}
	return out, nil
}

// Get returns one company with its members expanded.
func (s *CompanyService) Get(ctx context.Context, id string) (*model.CompanyDetail, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := expandCompany(ctx, s.store, c)
	if err != nil {
		return nil, apperr.Internal("expand company", err)
	}
	return d, nil
}

func (s *CompanyService) load(ctx context.Context, id string) (*model.Company, error) {
	if !store.ValidID(id) {
		return nil, apperr.Validation("Missing or invalid ID")
	}
	c, err := s.store.GetCompany(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(MsgCompanyNotFound)
	}
	if err != nil {
		return nil, apperr.Internal("get company", err)
	}
	return c, nil
}

// Update merges patch into the company.
func (s *CompanyService) Update(ctx context.Context, id string, patch CompanyPatch) (*model.Company, error) {
	c, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	setString(&c.Name, patch.Name)
	if patch.Industry != nil {
		c.Industry = model.Industry(*patch.Industry)
	}
	if patch.Description != nil {
		c.Description = model.StringPtr(*patch.Description)
	}
	setString(&c.Logo, patch.Logo)
	if patch.EstablishedDate != nil {
		if c.EstablishedDate, err = parseDate(*patch.EstablishedDate, "establishedDate"); err != nil {
			return nil, err
		}
	}
	if a := patch.Address; a != nil {
		setString(&c.Address.Street, a.Street)
		setString(&c.Address.City, a.City)
		setString(&c.Address.State, a.State)
		setString(&c.Address.Country, a.Country)
		setString(&c.Address.Zip, a.Zip)
	}
	if ct := patch.Contact; ct != nil {
		setString(&c.Contact.Phone, ct.Phone)
		if ct.Email != nil {
			c.Contact.Email = normalizeEmail(*ct.Email)
		}
		setString(&c.Contact.Website, ct.Website)
	}
	if !required(c.Name, c.Logo) {
		return nil, apperr.Validation(MsgAllFieldsRequired)
	}
	if err := validateCompany(c); err != nil {
		return nil, err
	}

	if err := s.store.UpdateCompany(ctx, c); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, apperr.NotFound(MsgCompanyNotFound)
		case errors.Is(err, store.ErrDuplicate):
			return nil, apperr.Conflict(MsgCompanyConflict)
		}
		return nil, apperr.Internal("update company", err)
	}
	return c, nil
}

// Delete removes the company with its users and teams.
func (s *CompanyService) Delete(ctx context.Context, id string) error {
	if !store.ValidID(id) {
		return apperr.Validation("Missing or invalid ID")
	}
	err := s.store.DeleteCompany(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(MsgCompanyNotFound)
	}
	if err != nil {
		return apperr.Internal("delete company", err)
	}
	s.logger.Info("company deleted", "company", id)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// parseDate accepts calendar dates and RFC 3339 timestamps. An empty string
// clears the date.
func parseDate(s, field string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperr.Validation("Invalid " + field + ".")
}
