package identity

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

// supported identity providers
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderApple  Provider = "apple"
)

// how long a single verification call may take, including key fetches
const verifyTimeout = 5 * time.Second

var (
	// the token failed signature, audience, or expiry checks
	ErrInvalidToken = errors.New("invalid identity token")

	// the provider's verification service could not be reached
	ErrProviderUnavailable = errors.New("identity provider unavailable")

	ErrUnknownProvider = errors.New("unknown identity provider")
)

// parses a provider name from a request
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderGoogle:
		return ProviderGoogle, nil
	case ProviderApple:
		return ProviderApple, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, s)
	}
}

// Claim is a verified identity extracted from a provider token.
// It contains facts only; no auth decisions are made here.
type Claim struct {
	Provider    Provider
	SubjectID   string // provider-scoped unique user identifier (sub)
	Email       string
	DisplayName string
	AvatarURL   string
}

// Verifier validates a raw provider token and extracts a trusted claim.
// Implementations are constructed once at startup and safe for
// concurrent use. Verification is pure: no retries, no side effects.
type Verifier interface {
	Provider() Provider
	Verify(ctx context.Context, rawToken string) (*Claim, error)
}

// maps a verification failure onto the error taxonomy: transport
// problems are retryable provider outages, everything else means the
// token itself is bad
func classifyVerifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	return fmt.Errorf("%w: %v", ErrInvalidToken, err)
}
