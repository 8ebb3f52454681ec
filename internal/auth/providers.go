package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/caloxi/server/internal/config"
	"github.com/caloxi/server/internal/logger"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/apple"
	"github.com/markbates/goth/providers/google"
)

// sets up the browser OAuth redirect flow using goth. The mobile app
// posts provider tokens directly and never touches this flow; web
// clients land on /oauth/{provider} instead.
func InitializeProviders(cfg *config.Config) error {
	if cfg.GoogleClientSecret == "" && cfg.AppleClientSecret == "" {
		logger.Warn("no web OAuth credentials configured, redirect flow disabled")
		return nil
	}

	if cfg.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must be set when web OAuth credentials are configured")
	}

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	isHTTPS := strings.HasPrefix(cfg.BaseURL, "https://")

	// cookie only needs to survive the OAuth redirect round-trip
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   isHTTPS,
		SameSite: http.SameSiteLaxMode,
	}

	gothic.Store = store

	var providers []goth.Provider

	if cfg.GoogleClientSecret != "" {
		providers = append(providers, google.New(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.BaseURL+"/api/v1/users/oauth/google/callback",
			"email", "profile",
		))
	}

	if cfg.AppleClientSecret != "" {
		providers = append(providers, apple.New(
			cfg.AppleClientID,
			cfg.AppleClientSecret,
			cfg.BaseURL+"/api/v1/users/oauth/apple/callback",
			nil,
			apple.ScopeName, apple.ScopeEmail,
		))
	}

	goth.UseProviders(providers...)
	return nil
}
