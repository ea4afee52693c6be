// Package config loads server configuration from an optional YAML file with
// environment overrides. A .env file in the working directory is honored.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full server configuration.
type Config struct {
	// MockAddr is the listen address for dispatched mock traffic.
	MockAddr string `yaml:"mockAddr"`
	// AdminAddr is the listen address for the admin JSON API.
	AdminAddr string `yaml:"adminAddr"`

	// DBPath locates the SQLite database. Ignored when InMemory is set.
	DBPath   string `yaml:"dbPath"`
	InMemory bool   `yaml:"inMemory"`

	// SigningKey signs every issued JWT. Required, at least 32 bytes.
	SigningKey string `yaml:"signingKey"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	// Seed installs the demo data set on first start.
	Seed bool `yaml:"seed"`

	// JanitorSchedule is the cron expression for the expired-endpoint purge;
	// RetentionHours is how long expired endpoints are kept around so they
	// still answer Gone instead of NotFound.
	JanitorSchedule string `yaml:"janitorSchedule"`
	RetentionHours  int    `yaml:"retentionHours"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		MockAddr:        ":8080",
		AdminAddr:       ":9090",
		DBPath:          "mockbay.db",
		LogLevel:        "info",
		LogFormat:       "text",
		Seed:            true,
		JanitorSchedule: "@hourly",
		RetentionHours:  24,
	}
}

// Load builds the configuration: defaults, then the YAML file at path (when
// non-empty), then environment variables. A missing file at the default path
// is not an error.
func Load(path string) (Config, error) {
	// Best effort; absence of a .env file is normal.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the invariants the server relies on.
func (c *Config) Validate() error {
	if len(c.SigningKey) < 32 {
		return fmt.Errorf("signing key must be at least 32 bytes, got %d", len(c.SigningKey))
	}
	if !c.InMemory && c.DBPath == "" {
		return fmt.Errorf("database path is required unless running in memory")
	}
	if c.RetentionHours < 0 {
		return fmt.Errorf("retention hours must be >= 0")
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setBool := func(key string, dst *bool) {
		if v, ok := os.LookupEnv(key); ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	setString("MOCKBAY_MOCK_ADDR", &cfg.MockAddr)
	setString("MOCKBAY_ADMIN_ADDR", &cfg.AdminAddr)
	setString("MOCKBAY_DB_PATH", &cfg.DBPath)
	setBool("MOCKBAY_IN_MEMORY", &cfg.InMemory)
	setString("MOCKBAY_SIGNING_KEY", &cfg.SigningKey)
	setString("MOCKBAY_LOG_LEVEL", &cfg.LogLevel)
	setString("MOCKBAY_LOG_FORMAT", &cfg.LogFormat)
	setBool("MOCKBAY_SEED", &cfg.Seed)
	setString("MOCKBAY_JANITOR_SCHEDULE", &cfg.JanitorSchedule)
	setInt("MOCKBAY_RETENTION_HOURS", &cfg.RetentionHours)
}
