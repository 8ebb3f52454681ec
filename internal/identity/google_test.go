package identity

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func stubGoogleVerifier(t *testing.T, validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)) *GoogleVerifier {
	t.Helper()

	v, err := NewGoogleVerifier("client-id-123")
	require.NoError(t, err)
	v.validate = validate

	return v
}

func TestNewGoogleVerifier_RequiresClientID(t *testing.T) {
	_, err := NewGoogleVerifier("")

	assert.Error(t, err)
}

func TestGoogleVerify_Success(t *testing.T) {
	v := stubGoogleVerifier(t, func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
		assert.Equal(t, "raw-token", token)
		assert.Equal(t, "client-id-123", audience)

		return &idtoken.Payload{
			Subject: "g123",
			Claims: map[string]any{
				"email":   "a@x.com",
				"name":    "Ann",
				"picture": "https://example.com/ann.png",
			},
		}, nil
	})

	claim, err := v.Verify(context.Background(), "raw-token")

	require.NoError(t, err)
	assert.Equal(t, ProviderGoogle, claim.Provider)
	assert.Equal(t, "g123", claim.SubjectID)
	assert.Equal(t, "a@x.com", claim.Email)
	assert.Equal(t, "Ann", claim.DisplayName)
	assert.Equal(t, "https://example.com/ann.png", claim.AvatarURL)
}

func TestGoogleVerify_InvalidSignature(t *testing.T) {
	v := stubGoogleVerifier(t, func(_ context.Context, _, _ string) (*idtoken.Payload, error) {
		return nil, errors.New("idtoken: unable to verify signature")
	})

	_, err := v.Verify(context.Background(), "tampered")

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGoogleVerify_ProviderDown(t *testing.T) {
	v := stubGoogleVerifier(t, func(_ context.Context, _, _ string) (*idtoken.Payload, error) {
		return nil, &url.Error{Op: "Get", URL: "https://www.googleapis.com/oauth2/v3/certs", Err: errors.New("dial tcp: i/o timeout")}
	})

	_, err := v.Verify(context.Background(), "any")

	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestGoogleVerify_MissingEmail(t *testing.T) {
	v := stubGoogleVerifier(t, func(_ context.Context, _, _ string) (*idtoken.Payload, error) {
		return &idtoken.Payload{
			Subject: "g123",
			Claims:  map[string]any{"name": "Ann"},
		}, nil
	})

	_, err := v.Verify(context.Background(), "raw-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}
