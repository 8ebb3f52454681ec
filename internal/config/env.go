package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	databaseURL := os.Getenv("DATABASE_URL")
	jwtSecret := os.Getenv("JWT_SECRET")
	refreshSecret := os.Getenv("REFRESH_TOKEN_SECRET")
	googleClientID := os.Getenv("GOOGLE_CLIENT_ID")
	appleClientID := os.Getenv("APPLE_CLIENT_ID")
	environment := os.Getenv("ENVIRONMENT")
	baseURL := os.Getenv("BASE_URL")

	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	if refreshSecret == "" {
		return nil, fmt.Errorf("REFRESH_TOKEN_SECRET environment variable is required")
	}

	if googleClientID == "" {
		return nil, fmt.Errorf("GOOGLE_CLIENT_ID environment variable is required")
	}

	if appleClientID == "" {
		return nil, fmt.Errorf("APPLE_CLIENT_ID environment variable is required")
	}

	if environment == "" {
		environment = "development"
	}

	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	accessTTL, err := durationFromEnv("ACCESS_TOKEN_TTL", defaultAccessTokenTTL)
	if err != nil {
		return nil, err
	}

	refreshTTL, err := durationFromEnv("REFRESH_TOKEN_TTL", defaultRefreshTokenTTL)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabaseURL:        databaseURL,
		Environment:        environment,
		BaseURL:            baseURL,
		JWTSecret:          jwtSecret,
		RefreshTokenSecret: refreshSecret,
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
		GoogleClientID:     googleClientID,
		AppleClientID:      appleClientID,
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		AppleClientSecret:  os.Getenv("APPLE_CLIENT_SECRET"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
	}, nil
}

// parses a duration env var, falling back to the default when unset
func durationFromEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", name, err)
	}

	return d, nil
}
