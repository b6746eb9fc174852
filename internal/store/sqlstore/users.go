package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/staffhub/staffhub/internal/model"
	"github.com/staffhub/staffhub/internal/store"
)

const (
	membershipLeader   = "leader"
	membershipEmployee = "employee"
)

// userRow maps 1:1 to the users table. The HR profile and the reference
// lists without a table of their own are kept as JSON documents.
type userRow struct {
	ID           string     `db:"id"`
	FirstName    string     `db:"first_name"`
	LastName     string     `db:"last_name"`
	Email        string     `db:"email"`
	Phone        string     `db:"phone"`
	Avatar       *string    `db:"avatar"`
	PasswordHash string     `db:"password_hash"`
	Role         string     `db:"role"`
	Organization string     `db:"organization"`
	Manager      *string    `db:"manager"`
	ProfileJSON  string     `db:"profile_json"`
	LinksJSON    string     `db:"links_json"`
	OTPHash      *string    `db:"otp_hash"`
	OTPIssuedAt  *time.Time `db:"otp_issued_at"`
	RefreshToken *string    `db:"refresh_token"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// storedLinks are the user references with no backing table yet.
type storedLinks struct {
	WorkReports []string `json:"workReports"`
	Projects    []string `json:"projects"`
	Tasks       []string `json:"tasks"`
	Attendance  []string `json:"attendance"`
	Leaves      []string `json:"leaves"`
}

func userRowFromModel(u *model.User) (userRow, error) {
	profile, err := toJSON(u.Profile)
	if err != nil {
		return userRow{}, fmt.Errorf("encode profile: %w", err)
	}
	links, err := toJSON(storedLinks{
		WorkReports: orEmpty(u.WorkReports),
		Projects:    orEmpty(u.Projects),
		Tasks:       orEmpty(u.Tasks),
		Attendance:  orEmpty(u.Attendance),
		Leaves:      orEmpty(u.Leaves),
	})
	if err != nil {
		return userRow{}, fmt.Errorf("encode links: %w", err)
	}
	return userRow{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		Phone:        u.Phone,
		Avatar:       u.Avatar,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Organization: u.Organization,
		Manager:      u.Manager,
		ProfileJSON:  profile,
		LinksJSON:    links,
		OTPHash:      u.OTPHash,
		OTPIssuedAt:  u.OTPIssuedAt,
		RefreshToken: u.RefreshToken,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}, nil
}

func (r userRow) toModel() (model.User, error) {
	u := model.User{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Phone:        r.Phone,
		Avatar:       r.Avatar,
		PasswordHash: r.PasswordHash,
		Role:         model.Role(r.Role),
		Organization: r.Organization,
		Manager:      r.Manager,
		OTPHash:      r.OTPHash,
		OTPIssuedAt:  r.OTPIssuedAt,
		RefreshToken: r.RefreshToken,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if err := fromJSON(r.ProfileJSON, &u.Profile); err != nil {
		return model.User{}, fmt.Errorf("decode profile: %w", err)
	}
	var links storedLinks
	if err := fromJSON(r.LinksJSON, &links); err != nil {
		return model.User{}, fmt.Errorf("decode links: %w", err)
	}
	u.WorkReports = orEmpty(links.WorkReports)
	u.Projects = orEmpty(links.Projects)
	u.Tasks = orEmpty(links.Tasks)
	u.Attendance = orEmpty(links.Attendance)
	u.Leaves = orEmpty(links.Leaves)
	return u, nil
}

// hydrateUsers fills the team lists of each user from team_members.
func (s *Store) hydrateUsers(ctx context.Context, q sqlx.QueryerContext, rows []userRow) ([]model.User, error) {
	users := make([]model.User, len(rows))
	if len(rows) == 0 {
		return users, nil
	}

	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	query, args, err := s.in(`SELECT team_id, user_id, membership FROM team_members
		WHERE user_id IN (?) ORDER BY team_id`, ids)
	if err != nil {
		return nil, fmt.Errorf("build membership query: %w", err)
	}
	var members []memberRow
	if err := sqlx.SelectContext(ctx, q, &members, query, args...); err != nil {
		return nil, fmt.Errorf("load user teams: %w", err)
	}

	teams := make(map[string][]string)
	managed := make(map[string][]string)
	for _, m := range members {
		if m.Membership == membershipLeader {
			managed[m.UserID] = append(managed[m.UserID], m.TeamID)
		} else {
			teams[m.UserID] = append(teams[m.UserID], m.TeamID)
		}
	}

	for i, r := range rows {
		u, err := r.toModel()
		if err != nil {
			return nil, err
		}
		u.Teams = orEmpty(teams[u.ID])
		if u.Role == model.RoleManager {
			u.ManagedTeams = orEmpty(managed[u.ID])
		}
		users[i] = u
	}
	return users, nil
}

// CreateUser inserts a new user. Company membership follows from the
// organization column.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = store.NewID()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Normalize()

	row, err := userRowFromModel(user)
	if err != nil {
		return err
	}

	const q = `INSERT INTO users
		(id, first_name, last_name, email, phone, avatar, password_hash, role, organization, manager,
		 profile_json, links_json, otp_hash, otp_issued_at, refresh_token, created_at, updated_at)
		VALUES
		(:id, :first_name, :last_name, :email, :phone, :avatar, :password_hash, :role, :organization, :manager,
		 :profile_json, :links_json, :otp_hash, :otp_issued_at, :refresh_token, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, q, row); err != nil {
		return classify(err, "insert user")
	}
	user.Teams = []string{}
	return nil
}

// GetUser returns a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	return s.getUser(ctx, "id", id)
}

func (s *Store) getUser(ctx context.Context, column, value string) (*model.User, error) {
	var row userRow
	q := s.db.Rebind("SELECT * FROM users WHERE " + column + " = ?")
	if err := s.db.GetContext(ctx, &row, q, value); err != nil {
		return nil, classify(err, "get user")
	}
	users, err := s.hydrateUsers(ctx, s.db, []userRow{row})
	if err != nil {
		return nil, err
	}
	return &users[0], nil
}

// ListUsers returns the users of an organization, oldest first.
func (s *Store) ListUsers(ctx context.Context, organization string) ([]model.User, error) {
	var rows []userRow
	q := s.db.Rebind("SELECT * FROM users WHERE organization = ? ORDER BY created_at")
	if err := s.db.SelectContext(ctx, &rows, q, organization); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return s.hydrateUsers(ctx, s.db, rows)
}

// ListUsersByID returns the users with the given IDs. Unknown IDs are skipped.
func (s *Store) ListUsersByID(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return []model.User{}, nil
	}
	q, args, err := s.in("SELECT * FROM users WHERE id IN (?) ORDER BY created_at", ids)
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}
	var rows []userRow
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, fmt.Errorf("list users by id: %w", err)
	}
	return s.hydrateUsers(ctx, s.db, rows)
}

// UpdateUser replaces the mutable fields of a user. UpdatedAt is refreshed
// automatically.
func (s *Store) UpdateUser(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()
	user.Normalize()

	row, err := userRowFromModel(user)
	if err != nil {
		return err
	}

	const q = `UPDATE users SET
		first_name = :first_name, last_name = :last_name, email = :email, phone = :phone,
		avatar = :avatar, password_hash = :password_hash, role = :role, manager = :manager,
		profile_json = :profile_json, links_json = :links_json, updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return classify(err, "update user")
	}
	return checkAffected(result, "update user")
}

// DeleteUsers removes the listed users of organization, or all of its users
// when ids is empty.
func (s *Store) DeleteUsers(ctx context.Context, organization string, ids []string) (int64, error) {
	var deleted int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var (
			memberQ, userQ string
			args           []interface{}
			err            error
		)
		if len(ids) == 0 {
			memberQ = s.db.Rebind(`DELETE FROM team_members
				WHERE user_id IN (SELECT id FROM users WHERE organization = ?)`)
			userQ = s.db.Rebind("DELETE FROM users WHERE organization = ?")
			args = []interface{}{organization}
		} else {
			memberQ, args, err = s.in(`DELETE FROM team_members
				WHERE user_id IN (SELECT id FROM users WHERE organization = ? AND id IN (?))`, organization, ids)
			if err != nil {
				return fmt.Errorf("build delete query: %w", err)
			}
			userQ, _, err = s.in("DELETE FROM users WHERE organization = ? AND id IN (?)", organization, ids)
			if err != nil {
				return fmt.Errorf("build delete query: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, memberQ, args...); err != nil {
			return fmt.Errorf("delete team memberships: %w", err)
		}
		result, err := tx.ExecContext(ctx, userQ, args...)
		if err != nil {
			return fmt.Errorf("delete users: %w", err)
		}
		deleted, err = result.RowsAffected()
		return err
	})
	return deleted, err
}
