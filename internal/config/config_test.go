package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if errWrite := os.WriteFile(path, []byte(content), 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen: ":9090"
database-dsn: "shop.db"
jwt:
  secret: "super-secret"
  access-expiry: 1h
worker:
  enabled: true
  url: "https://dl.example.com"
  secret: "worker-secret"
  expires-hours: 6
log:
  level: debug
`)

	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Listen != ":9090" || cfg.DatabaseDSN != "shop.db" {
		t.Fatalf("unexpected top-level config: %+v", cfg)
	}
	if cfg.JWT.Secret != "super-secret" || cfg.JWT.AccessExpiry != time.Hour {
		t.Fatalf("unexpected jwt config: %+v", cfg.JWT)
	}
	if cfg.JWT.RefreshExpiry != 7*24*time.Hour {
		t.Fatalf("refresh expiry default lost: %v", cfg.JWT.RefreshExpiry)
	}
	if !cfg.Worker.Enabled || cfg.Worker.URL != "https://dl.example.com" || cfg.Worker.ExpiresHours != 6 {
		t.Fatalf("unexpected worker config: %+v", cfg.Worker)
	}
	if cfg.Worker.Timeout != 5*time.Second {
		t.Fatalf("worker timeout default lost: %v", cfg.Worker.Timeout)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("unexpected log config: %+v", cfg.Log)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
database-dsn: "shop.db"
jwt:
  secret: "super-secret"
`)

	cfg, errLoad := Load(path)
	if errLoad != nil {
		t.Fatalf("load: %v", errLoad)
	}
	if cfg.Listen != ":8080" {
		t.Fatalf("expected default listen address, got %q", cfg.Listen)
	}
	if cfg.JWT.AccessExpiry != 2*time.Hour {
		t.Fatalf("expected default access expiry, got %v", cfg.JWT.AccessExpiry)
	}
	if cfg.Worker.Enabled {
		t.Fatal("worker must default to disabled")
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.Log.Level)
	}
}

func TestLoadRejectsIncomplete(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing dsn", "jwt:\n  secret: \"s\"\n"},
		{"missing jwt secret", "database-dsn: \"shop.db\"\n"},
		{"bad duration", "database-dsn: \"shop.db\"\njwt:\n  secret: \"s\"\n  access-expiry: soon\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, errLoad := Load(writeConfig(t, tc.content)); errLoad == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, errLoad := Load(filepath.Join(t.TempDir(), "absent.yaml")); errLoad == nil {
		t.Fatal("expected error for missing file")
	}
}
