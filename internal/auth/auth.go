package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/caloxi/server/caloxi/accounts"
	"github.com/caloxi/server/internal/config"
	"github.com/golang-jwt/jwt/v5"
)

// the refresh token is missing, expired, revoked, or superseded
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// Store is the persistence surface the issuer needs for refresh
// rotation. *accounts.Repository satisfies it.
type Store interface {
	FindByID(ctx context.Context, id string) (*accounts.Account, error)
	UpdateRefreshTokenHash(ctx context.Context, accountID, hash string) error
	ClearRefreshToken(ctx context.Context, accountID string) error
}

// Issuer mints access and refresh tokens and rotates the stored
// refresh reference. Constructed once at startup, safe for concurrent
// use.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	store         Store
}

func NewIssuer(cfg *config.Config, store Store) *Issuer {
	return &Issuer{
		accessSecret:  []byte(cfg.JWTSecret),
		refreshSecret: []byte(cfg.RefreshTokenSecret),
		accessTTL:     cfg.AccessTokenTTL,
		refreshTTL:    cfg.RefreshTokenTTL,
		store:         store,
	}
}

// Issue mints a token pair for the account and persists the refresh
// token's hash. A persistence failure fails the whole call: no
// half-issued session ever reaches the client.
func (i *Issuer) Issue(ctx context.Context, account *accounts.Account) (TokenPair, error) {
	access, err := signToken(i.accessSecret, i.accessTTL, account)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := signToken(i.refreshSecret, i.refreshTTL, account)
	if err != nil {
		return TokenPair{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	if err := i.store.UpdateRefreshTokenHash(ctx, account.ID, hashToken(refresh)); err != nil {
		return TokenPair{}, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh validates a refresh token, checks it is the last one issued
// for the account, and rotates the pair.
func (i *Issuer) Refresh(ctx context.Context, refreshToken string) (*accounts.Account, TokenPair, error) {
	claims, err := validateToken(i.refreshSecret, refreshToken)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidRefreshToken
	}

	account, err := i.store.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return nil, TokenPair{}, ErrInvalidRefreshToken
		}

		return nil, TokenPair{}, fmt.Errorf("failed to load account: %w", err)
	}

	// a logout or newer login invalidates every earlier refresh token
	if account.RefreshTokenHash == "" || account.RefreshTokenHash != hashToken(refreshToken) {
		return nil, TokenPair{}, ErrInvalidRefreshToken
	}

	pair, err := i.Issue(ctx, account)
	if err != nil {
		return nil, TokenPair{}, err
	}

	return account, pair, nil
}

// Revoke clears the stored refresh reference on logout
func (i *Issuer) Revoke(ctx context.Context, accountID string) error {
	return i.store.ClearRefreshToken(ctx, accountID)
}

// validates an access token and returns the claims
func (i *Issuer) ValidateAccess(tokenString string) (*Claims, error) {
	return validateToken(i.accessSecret, tokenString)
}

func signToken(secret []byte, ttl time.Duration, account *accounts.Account) (string, error) {
	claims := Claims{
		UserID: account.ID,
		Email:  account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func validateToken(secret []byte, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// the refresh token itself is never stored; only its digest is
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
