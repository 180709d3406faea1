// Package config loads snaphist settings from an optional .env file and the
// process environment. Command-line flags take precedence over both.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/roach88/snaphist/internal/history"
	"github.com/roach88/snaphist/internal/pgsource"
)

// DefaultEnvFile is read when present; a missing file is not an error.
const DefaultEnvFile = ".env"

// Config holds every environment-driven setting.
type Config struct {
	ObjectsPath    string `env:"SNAPHIST_OBJECTS"`
	AttributesPath string `env:"SNAPHIST_ATTRIBUTES"`
	OutputPath     string `env:"SNAPHIST_OUTPUT"                envDefault:"history_summary.csv"`
	DBPath         string `env:"SNAPHIST_DB"`

	PostgresDSN     string `env:"SNAPHIST_PG_DSN"`
	ObjectsTable    string `env:"SNAPHIST_PG_OBJECTS_TABLE"    envDefault:"obj"`
	AttributesTable string `env:"SNAPHIST_PG_ATTRIBUTES_TABLE" envDefault:"attr"`

	OpenEndedLabel  string `env:"SNAPHIST_OPEN_ENDED_LABEL" envDefault:"infinity"`
	Workers         int    `env:"SNAPHIST_WORKERS"          envDefault:"1"`
	ClampToLifetime bool   `env:"SNAPHIST_CLAMP_TO_LIFETIME" envDefault:"false"`
}

// Load reads envFile (if it exists) into the environment without overriding
// variables already set, then parses the environment into a Config.
// An empty envFile skips the file step.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Workers < 1 {
		return Config{}, fmt.Errorf("SNAPHIST_WORKERS must be at least 1, got %d", cfg.Workers)
	}
	return cfg, nil
}

// HistoryOptions returns the reconstruction options the config selects.
func (c Config) HistoryOptions() history.Options {
	return history.Options{
		Workers:         c.Workers,
		ClampToLifetime: c.ClampToLifetime,
	}
}

// Tables returns the PostgreSQL source tables.
func (c Config) Tables() pgsource.Tables {
	return pgsource.Tables{Objects: c.ObjectsTable, Attributes: c.AttributesTable}
}
