package config

import "time"

// holds all runtime configuration loaded from the environment
type Config struct {
	DatabaseURL string
	Environment string
	BaseURL     string

	// signing secrets for access and refresh tokens
	JWTSecret          string
	RefreshTokenSecret string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// identity provider audiences for mobile token verification
	GoogleClientID string
	AppleClientID  string

	// optional web OAuth credentials (redirect flow)
	GoogleClientSecret string
	AppleClientSecret  string
	SessionSecret      string
}

// reports whether the service runs with production hardening
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
