package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret        string        `yaml:"secret"`         // HMAC signing secret.
	AccessExpiry  time.Duration `yaml:"access-expiry"`  // Access token lifetime.
	RefreshExpiry time.Duration `yaml:"refresh-expiry"` // Refresh token lifetime.
}

// UnmarshalYAML decodes duration fields from strings like "2h30m". Fields
// absent from the document keep their current values.
func (j *JWTConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Secret        string `yaml:"secret"`
		AccessExpiry  string `yaml:"access-expiry"`
		RefreshExpiry string `yaml:"refresh-expiry"`
	}
	if errDecode := value.Decode(&raw); errDecode != nil {
		return errDecode
	}
	if raw.Secret != "" {
		j.Secret = raw.Secret
	}
	if raw.AccessExpiry != "" {
		parsed, errParse := time.ParseDuration(raw.AccessExpiry)
		if errParse != nil {
			return fmt.Errorf("jwt.access-expiry: %w", errParse)
		}
		j.AccessExpiry = parsed
	}
	if raw.RefreshExpiry != "" {
		parsed, errParse := time.ParseDuration(raw.RefreshExpiry)
		if errParse != nil {
			return fmt.Errorf("jwt.refresh-expiry: %w", errParse)
		}
		j.RefreshExpiry = parsed
	}
	return nil
}

// WorkerConfig holds protected-link provider settings.
type WorkerConfig struct {
	Enabled      bool          `yaml:"enabled"`       // Whether link creation is available.
	URL          string        `yaml:"url"`           // Worker base URL.
	Secret       string        `yaml:"secret"`        // Shared API secret.
	ExpiresHours int           `yaml:"expires-hours"` // Link validity window in hours.
	Timeout      time.Duration `yaml:"timeout"`       // Request timeout.
}

// UnmarshalYAML decodes the timeout from a string like "5s". Fields absent
// from the document keep their current values.
func (w *WorkerConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Enabled      *bool  `yaml:"enabled"`
		URL          string `yaml:"url"`
		Secret       string `yaml:"secret"`
		ExpiresHours *int   `yaml:"expires-hours"`
		Timeout      string `yaml:"timeout"`
	}
	if errDecode := value.Decode(&raw); errDecode != nil {
		return errDecode
	}
	if raw.Enabled != nil {
		w.Enabled = *raw.Enabled
	}
	if raw.URL != "" {
		w.URL = raw.URL
	}
	if raw.Secret != "" {
		w.Secret = raw.Secret
	}
	if raw.ExpiresHours != nil {
		w.ExpiresHours = *raw.ExpiresHours
	}
	if raw.Timeout != "" {
		parsed, errParse := time.ParseDuration(raw.Timeout)
		if errParse != nil {
			return fmt.Errorf("worker.timeout: %w", errParse)
		}
		w.Timeout = parsed
	}
	return nil
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // Logrus level name.
	File  string `yaml:"file"`  // Optional rotated log file path.
}

// Config is the root application configuration.
type Config struct {
	Listen      string       `yaml:"listen"`       // HTTP listen address.
	DatabaseDSN string       `yaml:"database-dsn"` // Postgres DSN or SQLite path.
	JWT         JWTConfig    `yaml:"jwt"`
	Worker      WorkerConfig `yaml:"worker"`
	Log         LogConfig    `yaml:"log"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, errRead := os.ReadFile(path)
	if errRead != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, errRead)
	}

	cfg := defaults()
	if errUnmarshal := yaml.Unmarshal(data, cfg); errUnmarshal != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
	}

	if strings.TrimSpace(cfg.DatabaseDSN) == "" {
		return nil, fmt.Errorf("config: database-dsn is required")
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, fmt.Errorf("config: jwt.secret is required")
	}
	return cfg, nil
}

// defaults returns a config populated with safe defaults.
func defaults() *Config {
	return &Config{
		Listen: ":8080",
		JWT: JWTConfig{
			AccessExpiry:  2 * time.Hour,
			RefreshExpiry: 7 * 24 * time.Hour,
		},
		Worker: WorkerConfig{
			ExpiresHours: 2,
			Timeout:      5 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
