package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// postgres unique_violation
const pgUniqueViolation = "23505"

var (
	ErrNotFound = errors.New("account not found")

	// the email is already registered (credential sign-up)
	ErrEmailTaken = errors.New("email already registered")

	// the generated or chosen username collides with an existing one
	ErrUsernameTaken = errors.New("username already taken")
)

// creates a new account repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// finds an account by normalized email
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return r.queryOne(ctx, queryFindByEmail, email)
}

// finds an account by its ID
func (r *Repository) FindByID(ctx context.Context, id string) (*Account, error) {
	return r.queryOne(ctx, queryFindByID, id)
}

// inserts a credential-flow account; duplicate email or username is a
// hard conflict the caller surfaces to the user
func (r *Repository) Create(ctx context.Context, na NewAccount) (*Account, error) {
	account, err := r.queryOne(ctx, queryInsert,
		na.Email, na.Username, na.FullName, na.AvatarURL, na.PasswordHash, na.IsSocialLogin)

	if err != nil {
		if conflictErr := classifyUniqueViolation(err); conflictErr != nil {
			return nil, conflictErr
		}

		return nil, err
	}

	return account, nil
}

// CreateSocial inserts a social-flow account optimistically. The
// boolean reports whether this call created the row: on an email
// conflict the concurrently-created account is re-fetched and returned
// with created=false. A username conflict returns ErrUsernameTaken so
// the caller can retry with a fresh suffix.
func (r *Repository) CreateSocial(ctx context.Context, na NewAccount) (*Account, bool, error) {
	account, err := r.queryOne(ctx, queryInsertSocial,
		na.Email, na.Username, na.FullName, na.AvatarURL, na.PasswordHash, na.IsSocialLogin)

	switch {
	case err == nil:
		return account, true, nil

	case errors.Is(err, ErrNotFound):
		// ON CONFLICT (email) DO NOTHING returned no row: another
		// request won the creation race
		existing, err := r.FindByEmail(ctx, na.Email)
		if err != nil {
			return nil, false, fmt.Errorf("failed to re-fetch account after create race: %w", err)
		}

		return existing, false, nil

	default:
		if conflictErr := classifyUniqueViolation(err); errors.Is(conflictErr, ErrUsernameTaken) {
			return nil, false, conflictErr
		}

		return nil, false, err
	}
}

// stores the hash of the last-issued refresh token
func (r *Repository) UpdateRefreshTokenHash(ctx context.Context, accountID, hash string) error {
	tag, err := r.db.Exec(ctx, queryUpdateRefreshTokenHash, hash, accountID)
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// clears the stored refresh token on logout
func (r *Repository) ClearRefreshToken(ctx context.Context, accountID string) error {
	if _, err := r.db.Exec(ctx, queryClearRefreshToken, accountID); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	return nil
}

func (r *Repository) queryOne(ctx context.Context, query string, args ...any) (*Account, error) {
	var a Account

	err := r.db.QueryRow(ctx, query, args...).Scan(
		&a.ID,
		&a.Email,
		&a.Username,
		&a.FullName,
		&a.AvatarURL,
		&a.PasswordHash,
		&a.IsSocialLogin,
		&a.RefreshTokenHash,
		&a.CreatedAt,
		&a.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}

		return nil, err
	}

	return &a, nil
}

// maps a pg unique violation to the column it hit, by constraint name
func classifyUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return nil
	}

	switch {
	case strings.Contains(pgErr.ConstraintName, "username"):
		return ErrUsernameTaken
	case strings.Contains(pgErr.ConstraintName, "email"):
		return ErrEmailTaken
	default:
		return nil
	}
}
