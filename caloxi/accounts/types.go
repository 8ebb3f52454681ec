package accounts

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// handles account database operations
type Repository struct {
	db *pgxpool.Pool
}

// represents a user account in the system
type Account struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	FullName         string    `json:"fullName"`
	AvatarURL        string    `json:"avatarUrl"`
	PasswordHash     string    `json:"-"`
	IsSocialLogin    bool      `json:"isSocialLogin"`
	RefreshTokenHash string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PublicUser is the outward-facing account shape. It never carries
// password or refresh-token material, whether the account was just
// created or already existed.
type PublicUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	FullName      string `json:"fullName"`
	AvatarURL     string `json:"avatarUrl"`
	IsSocialLogin bool   `json:"isSocialLogin"`
}

// strips sensitive fields from an account
func (a *Account) Public() PublicUser {
	return PublicUser{
		ID:            a.ID,
		Email:         a.Email,
		Username:      a.Username,
		FullName:      a.FullName,
		AvatarURL:     a.AvatarURL,
		IsSocialLogin: a.IsSocialLogin,
	}
}

// contains data for inserting a new account
type NewAccount struct {
	Email         string
	Username      string
	FullName      string
	AvatarURL     string
	PasswordHash  string
	IsSocialLogin bool
}
