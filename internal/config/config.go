// Package config loads regdesk configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full server configuration.
type Config struct {
	// Addr is the listen address.
	Addr string `env:"ADDR" envDefault:":8080"`

	// UpstreamBaseURL is the root of the registration API, e.g.
	// "http://localhost:5000/api".
	UpstreamBaseURL string `env:"UPSTREAM_BASE_URL" envDefault:"http://localhost:5000/api"`

	// UpstreamTimeout bounds every upstream call.
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"60s"`

	// DBPath is the SQLite file holding session draft snapshots.
	DBPath string `env:"DB_PATH" envDefault:"./data/sessions.db"`

	// JWTSecret signs admin dashboard tokens.
	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`

	// TokenTTL is how long admin tokens stay valid.
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	// AdminEmail and AdminPasswordHash (bcrypt) gate the dashboard.
	// Dashboard routes reject all logins until both are set.
	AdminEmail        string `env:"ADMIN_EMAIL"`
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
