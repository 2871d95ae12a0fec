// Package config loads seeding configuration and population plans.
//
// Configuration comes from an optional YAML file with environment variable
// overrides. Environment variables always win over YAML values.
package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"fakeseed/internal/core/apperror"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for a seeding run.
type Config struct {
	// Driver selects the store: postgres or sqlite.
	Driver string `yaml:"driver" env:"SEED_DB_DRIVER" env-default:"sqlite"`

	// DatabaseURL is the postgres DSN or the sqlite file path.
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL" env-default:"fakeseed.db"`

	// RandomSeed seeds value generation and reference picking. Zero picks a random seed.
	RandomSeed uint64 `yaml:"random_seed" env:"SEED_RANDOM_SEED" env-default:"0"`

	// PlanPath points at a YAML population plan. Empty uses the built-in plan.
	PlanPath string `yaml:"plan" env:"SEED_PLAN" env-default:""`

	// CreateTables issues CREATE TABLE IF NOT EXISTS for every planned entity.
	// Defaults to true; set by Load before reading so an explicit false is kept.
	CreateTables bool `yaml:"create_tables" env:"SEED_CREATE_TABLES" env-description:"create missing tables (default true)"`

	// MetricsFile, when set, receives Prometheus metrics in textfile format after the run.
	MetricsFile string `yaml:"metrics_file" env:"SEED_METRICS_FILE" env-default:""`

	Log LogConfig `yaml:"log"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Development bool   `yaml:"development" env:"LOG_DEVELOPMENT" env-default:"false"`
}

// Load reads path (when not empty) with environment overrides, or the
// environment alone.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaults holds the values cleanenv cannot default: env-default also replaces an
// explicit zero value read from YAML.
func defaults() *Config {
	return &Config{CreateTables: true}
}

// Validate checks driver settings.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return apperror.NewConfiguration(fmt.Sprintf("unknown database driver %q", c.Driver)).
			WithDetail("driver", c.Driver)
	}

	if c.Driver == DriverPostgres && c.DatabaseURL == "" {
		return apperror.NewConfiguration("DATABASE_URL is required for the postgres driver")
	}
	return nil
}

// Usage describes the environment variables understood by Load.
func Usage() string {
	text, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return ""
	}
	return text
}
