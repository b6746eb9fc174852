package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full application configuration, decoded from staffhub.yaml,
// STAFFHUB_* environment variables, and the legacy variable names listed in
// legacyEnv.
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Database  DatabaseConfig  `yaml:"database" mapstructure:"database"`
	Auth      AuthConfig      `yaml:"auth" mapstructure:"auth"`
	Mail      MailConfig      `yaml:"mail" mapstructure:"mail"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ServerConfig controls the HTTP server behavior.
type ServerConfig struct {
	Host            string        `yaml:"host" mapstructure:"host"`
	Port            int           `yaml:"port" mapstructure:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
	MaxBodySize     int64         `yaml:"max_body_size" mapstructure:"max_body_size"`
	CORSOrigins     []string      `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// DatabaseConfig selects and locates the credential store backend.
type DatabaseConfig struct {
	Driver         string        `yaml:"driver" mapstructure:"driver"` // sqlite, postgres, or mongodb
	DSN            string        `yaml:"dsn" mapstructure:"dsn"`
	DataDir        string        `yaml:"data_dir" mapstructure:"data_dir"`
	MongoURI       string        `yaml:"mongo_uri" mapstructure:"mongo_uri"`
	MongoDatabase  string        `yaml:"mongo_database" mapstructure:"mongo_database"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" mapstructure:"connect_timeout"`
}

// AuthConfig holds token secrets and lifetimes. Expiry values accept Go
// durations plus a "d" suffix for whole days ("7d").
type AuthConfig struct {
	AccessTokenSecret      string        `yaml:"access_token_secret" mapstructure:"access_token_secret"`
	RefreshTokenSecret     string        `yaml:"refresh_token_secret" mapstructure:"refresh_token_secret"`
	AdminAccessTokenExpiry string        `yaml:"admin_access_token_expiry" mapstructure:"admin_access_token_expiry"`
	UserAccessTokenExpiry  string        `yaml:"user_access_token_expiry" mapstructure:"user_access_token_expiry"`
	RefreshTokenExpiry     string        `yaml:"refresh_token_expiry" mapstructure:"refresh_token_expiry"`
	OTPTTL                 time.Duration `yaml:"otp_ttl" mapstructure:"otp_ttl"`
	CookieSecure           bool          `yaml:"cookie_secure" mapstructure:"cookie_secure"`
	Issuer                 string        `yaml:"issuer" mapstructure:"issuer"`
}

// MailConfig controls OTP delivery.
type MailConfig struct {
	Driver   string        `yaml:"driver" mapstructure:"driver"` // smtp or outbox
	Host     string        `yaml:"host" mapstructure:"host"`
	Port     int           `yaml:"port" mapstructure:"port"`
	Username string        `yaml:"username" mapstructure:"username"`
	Password string        `yaml:"password" mapstructure:"password"`
	From     string        `yaml:"from" mapstructure:"from"`
	TLS      string        `yaml:"tls" mapstructure:"tls"` // mandatory, opportunistic, or none
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// RateLimitConfig bounds unauthenticated auth attempts per client IP.
type RateLimitConfig struct {
	AuthPerMinute int `yaml:"auth_per_minute" mapstructure:"auth_per_minute"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// legacyEnv maps config keys to the bare environment names deployments
// already export.
var legacyEnv = map[string]string{
	"auth.access_token_secret":       "ACCESS_TOKEN_SECRET",
	"auth.refresh_token_secret":      "REFRESH_TOKEN_SECRET",
	"auth.admin_access_token_expiry": "ACCESS_TOKEN_EXPIRY",
	"auth.user_access_token_expiry":  "USER_ACCESS_TOKEN_EXPIRY",
	"auth.refresh_token_expiry":      "REFRESH_TOKEN_EXPIRY",
	"database.mongo_uri":             "MONGODB_URI",
	"mail.username":                  "USER_EMAIL",
	"mail.password":                  "USER_PASS",
}

// SetDefaults registers every default on v. Keys without a default are
// invisible to Unmarshal unless bound, so empty strings are registered too.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.max_body_size", 1<<20)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.data_dir", "")
	v.SetDefault("database.mongo_database", "staffhub")
	v.SetDefault("database.connect_timeout", 10*time.Second)

	v.SetDefault("auth.admin_access_token_expiry", "15m")
	v.SetDefault("auth.user_access_token_expiry", "1d")
	v.SetDefault("auth.refresh_token_expiry", "7d")
	v.SetDefault("auth.otp_ttl", time.Hour)
	v.SetDefault("auth.cookie_secure", true)
	v.SetDefault("auth.issuer", "staffhub")

	v.SetDefault("mail.driver", "smtp")
	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.tls", "mandatory")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.timeout", 15*time.Second)

	v.SetDefault("rate_limit.auth_per_minute", 20)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// BindEnv wires the STAFFHUB_ prefix and the legacy variable names into v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix("STAFFHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := "STAFFHUB_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		v.BindEnv(key, prefixed, legacy)
	}
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Auth.AccessTokenSecret == "" {
		return errors.New("auth.access_token_secret is required (ACCESS_TOKEN_SECRET)")
	}
	if c.Auth.RefreshTokenSecret == "" {
		return errors.New("auth.refresh_token_secret is required (REFRESH_TOKEN_SECRET)")
	}
	if c.Auth.AccessTokenSecret == c.Auth.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}
	for key, val := range map[string]string{
		"auth.admin_access_token_expiry": c.Auth.AdminAccessTokenExpiry,
		"auth.user_access_token_expiry":  c.Auth.UserAccessTokenExpiry,
		"auth.refresh_token_expiry":      c.Auth.RefreshTokenExpiry,
	} {
		if _, err := ParseExpiry(val); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}
	if c.Auth.OTPTTL <= 0 {
		return errors.New("auth.otp_ttl must be positive")
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
		if c.Database.Driver == "postgres" && c.Database.DSN == "" {
			return errors.New("database.dsn is required for the postgres driver")
		}
	case "mongodb":
		if c.Database.MongoURI == "" {
			return errors.New("database.mongo_uri is required for the mongodb driver (MONGODB_URI)")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	switch c.Mail.Driver {
	case "outbox":
	case "smtp":
		if c.Mail.Host == "" {
			return errors.New("mail.host is required for the smtp driver")
		}
	default:
		return fmt.Errorf("unsupported mail driver %q", c.Mail.Driver)
	}
	return nil
}

// AdminAccessTTL is the lifetime of access tokens issued to super-admins.
func (a AuthConfig) AdminAccessTTL() time.Duration {
	d, _ := ParseExpiry(a.AdminAccessTokenExpiry)
	return d
}

// UserAccessTTL is the lifetime of access tokens issued to users.
func (a AuthConfig) UserAccessTTL() time.Duration {
	d, _ := ParseExpiry(a.UserAccessTokenExpiry)
	return d
}

// RefreshTTL is the lifetime of refresh tokens.
func (a AuthConfig) RefreshTTL() time.Duration {
	d, _ := ParseExpiry(a.RefreshTokenExpiry)
	return d
}

// ParseExpiry parses a token lifetime. It accepts everything
// time.ParseDuration does plus a whole-day form such as "7d".
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty duration")
	}
	var d time.Duration
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		d = time.Duration(n) * 24 * time.Hour
	} else {
		var err error
		if d, err = time.ParseDuration(s); err != nil {
			return 0, err
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}
