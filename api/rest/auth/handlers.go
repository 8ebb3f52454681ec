package auth

import (
	"context"
	"errors"
	"net/http"
	"slices"

	"github.com/caloxi/server/caloxi/accounts"
	"github.com/caloxi/server/internal/auth"
	restErrors "github.com/caloxi/server/internal/errors"
	"github.com/caloxi/server/internal/identity"
	"github.com/caloxi/server/internal/logger"
	"github.com/caloxi/server/internal/password"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
)

// fallback when Apple withholds the name claim and the client asserts none
const defaultAppleName = "Apple User"

// maps a verified claim to a local account (accounts.Resolver)
type claimResolver interface {
	Resolve(ctx context.Context, claim *identity.Claim) (*accounts.Account, error)
}

// mints and rotates session credentials (auth.Issuer)
type sessionIssuer interface {
	Issue(ctx context.Context, account *accounts.Account) (auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*accounts.Account, auth.TokenPair, error)
	Revoke(ctx context.Context, accountID string) error
}

// account lookups and credential-flow creation (accounts.Repository)
type accountStore interface {
	FindByEmail(ctx context.Context, email string) (*accounts.Account, error)
	FindByID(ctx context.Context, id string) (*accounts.Account, error)
	Create(ctx context.Context, na accounts.NewAccount) (*accounts.Account, error)
}

// RegisterHandler godoc
// @Summary Register with email and password
// @Description Create a new account with a user-chosen username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/users/register [post]
func RegisterHandler(store accountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			restErrors.ValidationError(c, err)
			return
		}

		hash, err := password.Hash(req.Password)
		if err != nil {
			restErrors.InternalError(c, "failed to process password", err)
			return
		}

		account, err := store.Create(c.Request.Context(), accounts.NewAccount{
			Email:        accounts.NormalizeEmail(req.Email),
			Username:     req.Username,
			FullName:     req.FullName,
			AvatarURL:    "",
			PasswordHash: hash,
		})

		if err != nil {
			switch {
			case errors.Is(err, accounts.ErrEmailTaken):
				restErrors.Conflict(c, "email already registered")
			case errors.Is(err, accounts.ErrUsernameTaken):
				restErrors.Conflict(c, "username already taken")
			default:
				restErrors.InternalError(c, "failed to create account", err)
			}
			return
		}

		c.JSON(http.StatusCreated, UserResponse{User: account.Public()})
	}
}

// LoginHandler godoc
// @Summary Login with email and password
// @Description Password login. Always fails for social-only accounts
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/users/login [post]
func LoginHandler(store accountStore, issuer sessionIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			restErrors.ValidationError(c, err)
			return
		}

		account, err := store.FindByEmail(c.Request.Context(), accounts.NormalizeEmail(req.Email))
		if err != nil {
			if errors.Is(err, accounts.ErrNotFound) {
				restErrors.Unauthorized(c, "invalid email or password")
				return
			}

			restErrors.InternalError(c, "failed to look up account", err)
			return
		}

		// social-only accounts hold an unusable placeholder hash, so
		// this comparison fails for any attempted password
		if err := password.Verify(account.PasswordHash, req.Password); err != nil {
			restErrors.Unauthorized(c, "invalid email or password")
			return
		}

		completeLogin(c, issuer, account)
	}
}

// GoogleLoginHandler godoc
// @Summary Login with a Google ID token
// @Description Verifies the ID token, finds or creates the account, and issues tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleLoginRequest true "Google ID token"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/users/google [post]
func GoogleLoginHandler(verifier identity.Verifier, resolver claimResolver, issuer sessionIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GoogleLoginRequest

		if err := c.ShouldBindJSON(&req); err != nil || req.IDToken == "" {
			restErrors.BadRequest(c, "google id token is required", nil)
			return
		}

		socialLogin(c, verifier, resolver, issuer, req.IDToken, "")
	}
}

// AppleLoginHandler godoc
// @Summary Login with an Apple identity token
// @Description Verifies the identity token, finds or creates the account, and issues tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body AppleLoginRequest true "Apple identity token and optional first-login name"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 503 {object} errors.ErrorResponse
// @Router /api/v1/users/apple [post]
func AppleLoginHandler(verifier identity.Verifier, resolver claimResolver, issuer sessionIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AppleLoginRequest

		if err := c.ShouldBindJSON(&req); err != nil || req.IdentityToken == "" {
			restErrors.BadRequest(c, "apple identity token is required", nil)
			return
		}

		socialLogin(c, verifier, resolver, issuer, req.IdentityToken, req.AssertedName())
	}
}

// the federated login core: verify, resolve, issue. The asserted name
// never authenticates anything; it only seeds the display name when
// the provider omits one.
func socialLogin(
	c *gin.Context,
	verifier identity.Verifier,
	resolver claimResolver,
	issuer sessionIssuer,
	rawToken string,
	assertedName string,
) {
	claim, err := verifier.Verify(c.Request.Context(), rawToken)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrProviderUnavailable):
			restErrors.ProviderUnavailable(c, err)
		case errors.Is(err, identity.ErrInvalidToken):
			restErrors.Unauthorized(c, "invalid identity token")
		default:
			restErrors.InternalError(c, "token verification failed", err)
		}
		return
	}

	if claim.DisplayName == "" {
		claim.DisplayName = assertedName
	}

	if claim.DisplayName == "" && claim.Provider == identity.ProviderApple {
		claim.DisplayName = defaultAppleName
	}

	account, err := resolver.Resolve(c.Request.Context(), claim)
	if err != nil {
		restErrors.InternalError(c, "failed to resolve account", err)
		return
	}

	completeLogin(c, issuer, account)
}

// RefreshHandler godoc
// @Summary Rotate session tokens
// @Description Exchanges a valid refresh token for a new access/refresh pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token (cookie is used when omitted)"
// @Success 200 {object} AuthResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/users/refresh [post]
func RefreshHandler(issuer sessionIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RefreshRequest
		_ = c.ShouldBindJSON(&req) //nolint:errcheck // body is optional

		token := req.RefreshToken
		if token == "" {
			if cookie, err := c.Cookie(refreshTokenCookie); err == nil {
				token = cookie
			}
		}

		if token == "" {
			restErrors.Unauthorized(c, "refresh token required")
			return
		}

		account, pair, err := issuer.Refresh(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidRefreshToken) {
				restErrors.Unauthorized(c, "invalid or expired refresh token")
				return
			}

			restErrors.InternalError(c, "failed to refresh session", err)
			return
		}

		setAuthCookies(c, pair)
		c.JSON(http.StatusOK, AuthResponse{
			User:         account.Public(),
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		})
	}
}

// LogoutHandler godoc
// @Summary Logout
// @Description Revokes the stored refresh token and clears auth cookies
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /api/v1/users/logout [post]
// @Security BearerAuth
func LogoutHandler(issuer sessionIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, exists := auth.GetUserID(c); exists {
			if err := issuer.Revoke(c.Request.Context(), userID); err != nil {
				logger.ErrorErr(err, "failed to revoke refresh token", "user_id", userID)
			}
		}

		clearAuthCookies(c)
		c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
	}
}

// GetCurrentUserHandler godoc
// @Summary Get current user
// @Description Get the authenticated user's sanitized profile
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/users/me [get]
// @Security BearerAuth
func GetCurrentUserHandler(store accountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)

		if !exists {
			restErrors.Unauthorized(c, "")
			return
		}

		account, err := store.FindByID(c.Request.Context(), userID)
		if err != nil {
			restErrors.NotFound(c, "user")
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: account.Public()})
	}
}

// BeginOAuthHandler godoc
// @Summary Start browser OAuth
// @Description Begin the OAuth redirect flow with the specified provider
// @Tags auth
// @Param provider path string true "OAuth provider" Enums(google, apple)
// @Success 302 {string} string "Redirect to OAuth provider"
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/users/oauth/{provider} [get]
func BeginOAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if !isValidProvider(provider) {
			restErrors.BadRequest(c, "invalid provider", nil)
			return
		}

		// set provider in query for gothic
		q := c.Request.URL.Query()
		q.Add("provider", provider)
		c.Request.URL.RawQuery = q.Encode()

		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// OAuthCallbackHandler godoc
// @Summary Browser OAuth callback
// @Description Completes the redirect flow and resolves the same way as token login
// @Tags auth
// @Produce json
// @Param provider path string true "OAuth provider" Enums(google, apple)
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/users/oauth/{provider}/callback [get]
func OAuthCallbackHandler(resolver claimResolver, issuer sessionIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		providerName := c.Param("provider")

		q := c.Request.URL.Query()
		q.Add("provider", providerName)
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			restErrors.InternalError(c, "authentication failed", err)
			return
		}

		provider, err := identity.ParseProvider(gothUser.Provider)
		if err != nil {
			restErrors.BadRequest(c, "invalid provider", nil)
			return
		}

		// goth has already verified the token exchange; the resulting
		// user is a trusted claim for the resolver
		account, err := resolver.Resolve(c.Request.Context(), &identity.Claim{
			Provider:    provider,
			SubjectID:   gothUser.UserID,
			Email:       gothUser.Email,
			DisplayName: gothUser.Name,
			AvatarURL:   gothUser.AvatarURL,
		})

		if err != nil {
			restErrors.InternalError(c, "failed to resolve account", err)
			return
		}

		completeLogin(c, issuer, account)
	}
}

// issues the session and writes the response; a failed issuance rolls
// the whole login back (no cookies, no body)
func completeLogin(c *gin.Context, issuer sessionIssuer, account *accounts.Account) {
	pair, err := issuer.Issue(c.Request.Context(), account)
	if err != nil {
		restErrors.InternalError(c, "failed to issue session", err)
		return
	}

	setAuthCookies(c, pair)
	c.JSON(http.StatusOK, AuthResponse{
		User:         account.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func isValidProvider(provider string) bool {
	validProviders := []string{"google", "apple"}
	return slices.Contains(validProviders, provider)
}
