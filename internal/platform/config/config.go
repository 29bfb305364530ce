// Copyright (c) 2026 Snipstash. All rights reserved.
// Author: dev@snipstash.io

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// PlaceholderSessionSecret is the known development fallback value.
// A production process must refuse to start with it — a signing key that
// appears in documentation provides zero tamper resistance.
const PlaceholderSessionSecret = "your-secret-key"

// minSessionSecretLength is the minimum byte length of the HMAC signing secret.
const minSessionSecretLength = 32

// # Configuration Schema

// Config holds all runtime configuration for the Snipstash API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Store (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// SessionStoreBackend selects the session persistence adapter.
	// Valid values: "postgres" (default) or "redis".
	SessionStoreBackend string `env:"SESSION_STORE" envDefault:"postgres"`

	// SessionSecret is the symmetric signing key for bearer tokens and the
	// root key for credential sealing. Loaded once at process start.
	SessionSecret string `env:"SESSION_SECRET,required"`

	// GitHub OAuth application credentials
	GithubClientID     string `env:"GITHUB_CLIENT_ID,required"`
	GithubClientSecret string `env:"GITHUB_CLIENT_SECRET,required"`
	GithubRedirectURL  string `env:"GITHUB_REDIRECT_URI" envDefault:"http://localhost:8080/api/v1/auth/callback"`

	// FrontendURL is where the OAuth callback redirects the browser.
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates
// the security-sensitive fields.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate enforces startup invariants that 'required' tags cannot express.
//
// # Rules
//
//  1. The session secret must be at least 32 bytes of key material.
//  2. A production deployment must never run with the placeholder secret.
//  3. The session store backend must be a known adapter.
func (c *Config) Validate() error {
	if c.IsProduction() && c.SessionSecret == PlaceholderSessionSecret {
		return fmt.Errorf("config: SESSION_SECRET is set to the placeholder default; refusing to start in production")
	}

	// The placeholder is tolerated outside production so that local setups
	// work out of the box; everything else must carry real key material.
	if c.SessionSecret != PlaceholderSessionSecret && len(c.SessionSecret) < minSessionSecretLength {
		return fmt.Errorf("config: SESSION_SECRET must be at least %d bytes", minSessionSecretLength)
	}

	switch c.SessionStoreBackend {
	case "postgres", "redis":
	default:
		return fmt.Errorf("config: unknown SESSION_STORE backend %q (want postgres or redis)", c.SessionStoreBackend)
	}

	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
