package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/caloxi/server/caloxi/accounts"
	"github.com/caloxi/server/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	byID       map[string]*accounts.Account
	failUpdate bool
	updates    int
}

func newFakeStore(accts ...*accounts.Account) *fakeStore {
	s := &fakeStore{byID: make(map[string]*accounts.Account)}
	for _, a := range accts {
		s.byID[a.ID] = a
	}
	return s
}

func (s *fakeStore) FindByID(_ context.Context, id string) (*accounts.Account, error) {
	a, ok := s.byID[id]
	if !ok {
		return nil, accounts.ErrNotFound
	}

	copied := *a
	return &copied, nil
}

func (s *fakeStore) UpdateRefreshTokenHash(_ context.Context, accountID, hash string) error {
	if s.failUpdate {
		return errors.New("store unreachable")
	}

	a, ok := s.byID[accountID]
	if !ok {
		return accounts.ErrNotFound
	}

	a.RefreshTokenHash = hash
	s.updates++
	return nil
}

func (s *fakeStore) ClearRefreshToken(_ context.Context, accountID string) error {
	if a, ok := s.byID[accountID]; ok {
		a.RefreshTokenHash = ""
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "test-access-secret",
		RefreshTokenSecret: "test-refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
	}
}

func testAccount() *accounts.Account {
	return &accounts.Account{
		ID:       "acct-123",
		Email:    "test@example.com",
		Username: "testuser",
	}
}

func TestIssue_Success(t *testing.T) {
	store := newFakeStore(testAccount())
	issuer := NewIssuer(testConfig(), store)

	pair, err := issuer.Issue(context.Background(), testAccount())

	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, 3, len(strings.Split(pair.AccessToken, ".")), "JWT should have 3 parts")

	// the refresh token is persisted as a hash, never verbatim
	stored := store.byID["acct-123"].RefreshTokenHash
	assert.NotEmpty(t, stored)
	assert.NotEqual(t, pair.RefreshToken, stored)

	claims, err := issuer.ValidateAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "acct-123", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
}

func TestIssue_PersistFailureIsTerminal(t *testing.T) {
	store := newFakeStore(testAccount())
	store.failUpdate = true
	issuer := NewIssuer(testConfig(), store)

	pair, err := issuer.Issue(context.Background(), testAccount())

	assert.Error(t, err)
	assert.Empty(t, pair.AccessToken, "no half-issued session")
	assert.Empty(t, pair.RefreshToken)
}

func TestValidateAccess_RefreshTokenRejected(t *testing.T) {
	store := newFakeStore(testAccount())
	issuer := NewIssuer(testConfig(), store)

	pair, err := issuer.Issue(context.Background(), testAccount())
	require.NoError(t, err)

	// tokens are signed with different secrets
	_, err = issuer.ValidateAccess(pair.RefreshToken)
	assert.Error(t, err, "refresh token must not pass as an access token")
}

func TestValidateAccess_TamperedToken(t *testing.T) {
	store := newFakeStore(testAccount())
	issuer := NewIssuer(testConfig(), store)

	pair, err := issuer.Issue(context.Background(), testAccount())
	require.NoError(t, err)

	tampered := pair.AccessToken[:len(pair.AccessToken)-5] + "XXXXX"

	_, err = issuer.ValidateAccess(tampered)
	assert.Error(t, err, "tampered token should be rejected")
}

func TestValidateAccess_ExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.AccessTokenTTL = -time.Hour
	issuer := NewIssuer(cfg, newFakeStore(testAccount()))

	pair, err := issuer.Issue(context.Background(), testAccount())
	require.NoError(t, err)

	_, err = issuer.ValidateAccess(pair.AccessToken)
	assert.Error(t, err, "expired token should be rejected")
}

func TestValidateAccess_AlgorithmConfusionAttack(t *testing.T) {
	issuer := NewIssuer(testConfig(), newFakeStore(testAccount()))

	claims := Claims{
		UserID: "attacker",
		Email:  "attacker@evil.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType) //nolint:errcheck // test code

	_, err := issuer.ValidateAccess(tokenString)
	assert.Error(t, err, "token with 'none' algorithm should be rejected")
}

func TestValidateAccess_MalformedTokens(t *testing.T) {
	issuer := NewIssuer(testConfig(), newFakeStore())

	malformedTokens := []string{
		"",
		"not.a.jwt",
		"only.two",
		"too.many.parts.in.this.token",
	}

	for _, token := range malformedTokens {
		_, err := issuer.ValidateAccess(token)
		assert.Error(t, err, "malformed token '%s' should be rejected", token)
	}
}

func TestRefresh_RotatesPair(t *testing.T) {
	store := newFakeStore(testAccount())
	issuer := NewIssuer(testConfig(), store)

	pair, err := issuer.Issue(context.Background(), testAccount())
	require.NoError(t, err)

	account, rotated, err := issuer.Refresh(context.Background(), pair.RefreshToken)

	require.NoError(t, err)
	assert.Equal(t, "acct-123", account.ID)
	assert.NotEmpty(t, rotated.AccessToken)
	assert.NotEmpty(t, rotated.RefreshToken)
	assert.Equal(t, 2, store.updates, "rotation persists the new refresh hash")
}

func TestRefresh_SupersededTokenRejected(t *testing.T) {
	store := newFakeStore(testAccount())
	issuer := NewIssuer(testConfig(), store)

	first, err := issuer.Issue(context.Background(), testAccount())
	require.NoError(t, err)

	// a second login supersedes the first refresh token
	time.Sleep(1100 * time.Millisecond)
	_, err = issuer.Issue(context.Background(), testAccount())
	require.NoError(t, err)

	_, _, err = issuer.Refresh(context.Background(), first.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_AfterRevoke(t *testing.T) {
	store := newFakeStore(testAccount())
	issuer := NewIssuer(testConfig(), store)

	pair, err := issuer.Issue(context.Background(), testAccount())
	require.NoError(t, err)

	require.NoError(t, issuer.Revoke(context.Background(), "acct-123"))

	_, _, err = issuer.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_UnknownAccount(t *testing.T) {
	store := newFakeStore(testAccount())
	issuer := NewIssuer(testConfig(), store)

	pair, err := issuer.Issue(context.Background(), testAccount())
	require.NoError(t, err)

	delete(store.byID, "acct-123")

	_, _, err = issuer.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	store := newFakeStore(testAccount())
	issuer := NewIssuer(testConfig(), store)

	pair, err := issuer.Issue(context.Background(), testAccount())
	require.NoError(t, err)

	_, _, err = issuer.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}
