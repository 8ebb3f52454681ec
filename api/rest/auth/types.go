package auth

import (
	"strings"

	"github.com/caloxi/server/caloxi/accounts"
)

// RegisterRequest for credential sign-up
type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=30"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest for password login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries the ID token obtained by the mobile
// app's native sign-in flow
type GoogleLoginRequest struct {
	IDToken string `json:"idToken"`
}

// AppleLoginRequest carries the identity token plus the name payload
// Apple only surfaces on the very first login
type AppleLoginRequest struct {
	IdentityToken string         `json:"identityToken"`
	User          *AppleUserInfo `json:"user"`
}

type AppleUserInfo struct {
	Name *AppleName `json:"name"`
}

type AppleName struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// assembles the asserted display name, empty when absent
func (r *AppleLoginRequest) AssertedName() string {
	if r.User == nil || r.User.Name == nil {
		return ""
	}

	return strings.TrimSpace(strings.TrimSpace(r.User.Name.FirstName) + " " + strings.TrimSpace(r.User.Name.LastName))
}

// RefreshRequest for clients that keep the refresh token in storage
// instead of the cookie
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse returned after a successful login
type AuthResponse struct {
	User         accounts.PublicUser `json:"user"`
	AccessToken  string              `json:"accessToken"`
	RefreshToken string              `json:"refreshToken"`
}

// UserResponse wraps user data
type UserResponse struct {
	User accounts.PublicUser `json:"user"`
}

// MessageResponse for simple success messages
type MessageResponse struct {
	Message string `json:"message"`
}
