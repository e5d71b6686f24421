// Package config loads the configuration of the sbk tool from the
// environment, after an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Backends accepted for Config.Store.
const (
	BackendMemory = "memory"
	BackendDir    = "dir"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// Config holds the settings of a book session.
type Config struct {
	Store     string `env:"SITEBOOK_STORE" envDefault:"dir"`
	Path      string `env:"SITEBOOK_PATH" envDefault:".sitebook"`
	MySQLDSN  string `env:"SITEBOOK_MYSQL_DSN"`
	Currency  string `env:"SITEBOOK_CURRENCY" envDefault:"USD"`
	LogLevel  string `env:"SITEBOOK_LOG_LEVEL" envDefault:"info"`
	Rebalance bool   `env:"SITEBOOK_REBALANCE" envDefault:"false"`
}

// Load parses the configuration and validates it.
func Load(dotenv ...string) (Config, error) {
	cfg, err := Parse(dotenv...)
	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Parse reads the .env files (missing files are ignored) then parses the
// environment. The result is not validated, so that callers can override
// settings first.
func Parse(dotenv ...string) (Config, error) {
	if err := godotenv.Load(dotenv...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings that depend on each other.
func (c Config) Validate() error {
	switch c.Store {
	case BackendMemory:
	case BackendDir, BackendSQLite:
		if c.Path == "" {
			return fmt.Errorf("store %q requires SITEBOOK_PATH", c.Store)
		}
	case BackendMySQL:
		if c.MySQLDSN == "" {
			return errors.New("store \"mysql\" requires SITEBOOK_MYSQL_DSN")
		}
	default:
		return fmt.Errorf("unknown store %q, want memory, dir, sqlite or mysql", c.Store)
	}
	if c.Currency == "" {
		return errors.New("currency is required")
	}
	return nil
}
