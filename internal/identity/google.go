package identity

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// verifies Google ID tokens against Google's published keys
type GoogleVerifier struct {
	clientID string

	// injectable for tests; defaults to idtoken.Validate
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) (*GoogleVerifier, error) {
	if clientID == "" {
		return nil, fmt.Errorf("google verifier requires a client id")
	}

	return &GoogleVerifier{
		clientID: clientID,
		validate: idtoken.Validate,
	}, nil
}

func (g *GoogleVerifier) Provider() Provider {
	return ProviderGoogle
}

// validates the token's signature and audience, then extracts the
// subject, email, name, and picture claims
func (g *GoogleVerifier) Verify(ctx context.Context, rawToken string) (*Claim, error) {
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	payload, err := g.validate(ctx, rawToken, g.clientID)
	if err != nil {
		return nil, classifyVerifyError(err)
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	if payload.Subject == "" || email == "" {
		return nil, fmt.Errorf("%w: google token missing required claims", ErrInvalidToken)
	}

	return &Claim{
		Provider:    ProviderGoogle,
		SubjectID:   payload.Subject,
		Email:       email,
		DisplayName: name,
		AvatarURL:   picture,
	}, nil
}
