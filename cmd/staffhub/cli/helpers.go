package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/staffhub/staffhub/internal/config"
	"github.com/staffhub/staffhub/internal/database"
	"github.com/staffhub/staffhub/internal/mail"
	"github.com/staffhub/staffhub/internal/server"
	"github.com/staffhub/staffhub/internal/service"
	"github.com/staffhub/staffhub/internal/store"
	"github.com/staffhub/staffhub/internal/store/mongostore"
	"github.com/staffhub/staffhub/internal/store/sqlstore"
)

// newLogger builds the process logger from the log settings. dev forces
// debug level.
func newLogger(cfg config.LogConfig, dev bool) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	if dev {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// resolveDataDir returns the SQLite directory, defaulting to ~/.staffhub.
func resolveDataDir(cfg config.DatabaseConfig) string {
	if cfg.DataDir != "" {
		return cfg.DataDir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".staffhub")
}

// openStore connects the configured backend.
func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (store.Store, error) {
	switch cfg.Driver {
	case "postgres":
		st, err := sqlstore.NewPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		logger.Info("store initialized", "driver", "postgres")
		return st, nil
	case "mongodb":
		pool := database.NewPool(cfg.MongoURI, cfg.MongoDatabase, cfg.ConnectTimeout)
		st, err := mongostore.New(ctx, pool)
		if err != nil {
			return nil, err
		}
		logger.Info("store initialized", "driver", "mongodb", "database", cfg.MongoDatabase)
		return st, nil
	default:
		dir := resolveDataDir(cfg)
		st, err := sqlstore.NewSQLite(dir)
		if err != nil {
			return nil, err
		}
		logger.Info("store initialized", "driver", "sqlite", "path", dir)
		return st, nil
	}
}

// newServices wires every service on top of st.
func newServices(cfg *config.Config, st store.Store, logger *slog.Logger) (server.Services, error) {
	mailer, err := mail.New(cfg.Mail, logger)
	if err != nil {
		return server.Services{}, fmt.Errorf("init mailer: %w", err)
	}
	hasher := service.NewHasher(bcrypt.DefaultCost)
	tokens := service.NewTokenService(st, cfg.Auth)
	otp := service.NewOTPIssuer(st, mailer, hasher, cfg.Auth.OTPTTL, logger)

	return server.Services{
		Store:     st,
		Gate:      service.NewGate(tokens, st),
		Auth:      service.NewAuthService(st, tokens, otp, hasher, logger),
		Admins:    service.NewAdminService(st, hasher, logger),
		Users:     service.NewUserService(st, hasher, logger),
		Companies: service.NewCompanyService(st, logger),
		Teams:     service.NewTeamService(st, logger),
	}, nil
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}
