package sqlstore

import (
	"fmt"
	"strings"
)

// Column types that differ between dialects are written as placeholders.
var dialectTypes = map[string]*strings.Replacer{
	DialectSQLite:   strings.NewReplacer("{{timestamp}}", "DATETIME"),
	DialectPostgres: strings.NewReplacer("{{timestamp}}", "TIMESTAMPTZ"),
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			id TEXT PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			industry TEXT NOT NULL,
			description TEXT,
			logo TEXT NOT NULL,
			established_date {{timestamp}},
			street TEXT NOT NULL,
			city TEXT NOT NULL,
			state TEXT NOT NULL,
			country TEXT NOT NULL,
			zip TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			website TEXT NOT NULL,
			projects_json TEXT NOT NULL DEFAULT '[]',
			tasks_json TEXT NOT NULL DEFAULT '[]',
			created_by TEXT,
			created_at {{timestamp}} NOT NULL,
			updated_at {{timestamp}} NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS admins (
			id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			avatar TEXT,
			password_hash TEXT NOT NULL,
			organization TEXT REFERENCES companies(id) ON DELETE SET NULL,
			otp_hash TEXT,
			otp_issued_at {{timestamp}},
			refresh_token TEXT,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at {{timestamp}} NOT NULL,
			updated_at {{timestamp}} NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			phone TEXT UNIQUE NOT NULL,
			avatar TEXT,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'employee',
			organization TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
			manager TEXT,
			profile_json TEXT NOT NULL DEFAULT '{}',
			links_json TEXT NOT NULL DEFAULT '{}',
			otp_hash TEXT,
			otp_issued_at {{timestamp}},
			refresh_token TEXT,
			created_at {{timestamp}} NOT NULL,
			updated_at {{timestamp}} NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS teams (
			id TEXT PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			description TEXT,
			organization TEXT NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
			assigned_projects_json TEXT NOT NULL DEFAULT '[]',
			created_at {{timestamp}} NOT NULL,
			updated_at {{timestamp}} NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS team_members (
			team_id TEXT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			membership TEXT NOT NULL,
			PRIMARY KEY (team_id, user_id, membership)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_users_organization ON users(organization)`,
		`CREATE INDEX IF NOT EXISTS idx_teams_organization ON teams(organization)`,
		`CREATE INDEX IF NOT EXISTS idx_team_members_user ON team_members(user_id)`,
	}

	replacer := dialectTypes[s.dialect]
	for _, m := range migrations {
		m = replacer.Replace(m)
		if _, err := s.db.Exec(m); err != nil {
			// ALTER TABLE ADD COLUMN fails if the column already exists;
			// treat it as a no-op so migrations stay idempotent.
			if strings.Contains(err.Error(), "duplicate column") || strings.Contains(err.Error(), "already exists") {
				continue
			}
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}
