package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/staffhub/staffhub/internal/config"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd("1.2.3", "abc", "today")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v: %v; output = %s", args, err, out.String())
	}
	return out.String()
}

func TestVersionJSON(t *testing.T) {
	var info versionInfo
	if err := json.Unmarshal([]byte(run(t, "version", "--json")), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != "1.2.3" || info.Commit != "abc" {
		t.Errorf("info = %+v", info)
	}
	if info.Store != "sqlite" {
		t.Errorf("store = %q, want the default driver", info.Store)
	}
	if info.APIBase != "/api/v1" || len(info.Drivers) != 3 {
		t.Errorf("info = %+v", info)
	}
}

func TestVersionText(t *testing.T) {
	out := run(t, "version")
	for _, want := range []string{"staffhub 1.2.3 (abc, built today)", "store:   sqlite", "mongodb"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestOpenAPICommand(t *testing.T) {
	out := run(t, "openapi", "--base-url", "https://hr.acme.test")

	var doc struct {
		Servers []struct {
			URL string `json:"url"`
		} `json:"servers"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "https://hr.acme.test/api/v1" {
		t.Errorf("servers = %+v", doc.Servers)
	}
	if _, ok := doc.Paths["/teams"]; !ok {
		t.Error("/teams missing")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "staffhub.yaml")
	out := run(t, "config", "init", "-o", path)
	if !strings.Contains(out, "Created") {
		t.Errorf("output = %q", out)
	}

	cfg, err := config.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Database.Driver != "sqlite" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		dev   bool
		want  slog.Level
	}{
		{"info", false, slog.LevelInfo},
		{"warn", false, slog.LevelWarn},
		{"bogus", false, slog.LevelInfo},
		{"error", true, slog.LevelDebug},
	}
	for _, tt := range tests {
		logger := newLogger(config.LogConfig{Level: tt.level, Format: "json"}, tt.dev)
		if !logger.Enabled(context.Background(), tt.want) {
			t.Errorf("level %q dev=%v: %v not enabled", tt.level, tt.dev, tt.want)
		}
		if tt.want > slog.LevelDebug && logger.Enabled(context.Background(), tt.want-1) {
			t.Errorf("level %q dev=%v: below %v enabled", tt.level, tt.dev, tt.want)
		}
	}
}

func TestResolveDataDir(t *testing.T) {
	if got := resolveDataDir(config.DatabaseConfig{DataDir: "/srv/staffhub"}); got != "/srv/staffhub" {
		t.Errorf("explicit dir = %q", got)
	}
	home, _ := os.UserHomeDir()
	if got := resolveDataDir(config.DatabaseConfig{}); got != filepath.Join(home, ".staffhub") {
		t.Errorf("default dir = %q", got)
	}
}
