package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	appleKeysURL = "https://appleid.apple.com/auth/keys"
	appleIssuer  = "https://appleid.apple.com"
)

// verifies Apple identity tokens against Apple's published JWKS.
// Apple frequently omits the name claim on repeat logins; a display
// name asserted by the client is handled at the boundary, never here.
type AppleVerifier struct {
	clientID string

	// injectable for tests; production uses a background-refreshed JWKS cache
	keys func(ctx context.Context) (jwk.Set, error)
}

func NewAppleVerifier(ctx context.Context, clientID string) (*AppleVerifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("apple verifier requires a client id")
	}

	cache := jwk.NewCache(ctx)
	if err := cache.Register(appleKeysURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, fmt.Errorf("failed to register apple jwks: %w", err)
	}

	return &AppleVerifier{
		clientID: clientID,
		keys: func(ctx context.Context) (jwk.Set, error) {
			return cache.Get(ctx, appleKeysURL)
		},
	}, nil
}

func (a *AppleVerifier) Provider() Provider {
	return ProviderApple
}

// validates signature, issuer, expiry, and audience, then extracts the
// subject and email claims
func (a *AppleVerifier) Verify(ctx context.Context, rawToken string) (*Claim, error) {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	keyset, err := a.keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch jwks: %v", ErrProviderUnavailable, err)
	}

	token, err := jwt.ParseString(rawToken,
		jwt.WithKeySet(keyset),
		jwt.WithValidate(true),
		jwt.WithIssuer(appleIssuer),
		jwt.WithAudience(a.clientID),
	)
	if err != nil {
		return nil, classifyVerifyError(err)
	}

	sub := token.Subject()
	email := stringClaim(token, "email")

	if sub == "" || email == "" {
		return nil, fmt.Errorf("%w: apple token missing required claims", ErrInvalidToken)
	}

	return &Claim{
		Provider:  ProviderApple,
		SubjectID: sub,
		Email:     email,
	}, nil
}

func stringClaim(token jwt.Token, name string) string {
	v, ok := token.Get(name)
	if !ok {
		return ""
	}

	s, _ := v.(string)
	return s
}
