package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/caloxi/server/internal/identity"
	"github.com/caloxi/server/internal/logger"
	"github.com/caloxi/server/internal/password"
)

// retries for username-suffix collisions only; never for the email race
const maxUsernameAttempts = 5

// every retry produced a colliding username
var ErrUsernameExhausted = errors.New("could not generate a unique username")

// Store is the persistence surface the resolver needs. *Repository
// satisfies it; tests supply fakes.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	CreateSocial(ctx context.Context, na NewAccount) (*Account, bool, error)
}

// Resolver maps a verified identity claim to exactly one local
// account, provisioning it on first login. Concurrency safety is
// delegated to the store's uniqueness constraint on email: the create
// is optimistic and a lost race resolves to the winner's row.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve finds the account for a claim, creating one if the email has
// never been seen. Existing accounts are returned unchanged: claim
// metadata seeds provisioning once and is never synced afterwards.
func (r *Resolver) Resolve(ctx context.Context, claim *identity.Claim) (*Account, error) {
	email := NormalizeEmail(claim.Email)
	if email == "" {
		return nil, fmt.Errorf("claim has no email")
	}

	account, err := r.store.FindByEmail(ctx, email)
	if err == nil {
		return account, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("account lookup failed: %w", err)
	}

	return r.provision(ctx, claim, email)
}

func (r *Resolver) provision(ctx context.Context, claim *identity.Claim, email string) (*Account, error) {
	// unusable placeholder so the password column stays non-null
	// without ever matching a login attempt
	placeholder, err := password.UnusablePlaceholder()
	if err != nil {
		return nil, err
	}

	avatarURL := claim.AvatarURL
	if avatarURL == "" {
		avatarURL = placeholderAvatarURL(email)
	}

	for attempt := 0; attempt < maxUsernameAttempts; attempt++ {
		username, err := DeriveUsername(email)
		if err != nil {
			return nil, err
		}

		account, created, err := r.store.CreateSocial(ctx, NewAccount{
			Email:         email,
			Username:      username,
			FullName:      claim.DisplayName,
			AvatarURL:     avatarURL,
			PasswordHash:  placeholder,
			IsSocialLogin: true,
		})

		if errors.Is(err, ErrUsernameTaken) {
			continue
		}

		if err != nil {
			return nil, err
		}

		if !created {
			// a concurrent request for the same new identity won the
			// insert; make sure the row we picked up is really theirs
			if NormalizeEmail(account.Email) != email {
				return nil, fmt.Errorf("create race resolved to mismatched account email")
			}

			logger.Debug("concurrent account creation resolved",
				"email", email,
				"account_id", account.ID,
			)
		}

		return account, nil
	}

	return nil, ErrUsernameExhausted
}

// deterministic placeholder image keyed by email, used when the
// provider supplies no picture
func placeholderAvatarURL(email string) string {
	return "https://api.dicebear.com/7.x/miniavs/svg?seed=" + email
}
