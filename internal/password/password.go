package password

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var ErrMismatch = errors.New("password does not match")

// hashes a plaintext password with bcrypt
func Hash(plain string) (string, error) {
	if plain == "" {
		return "", errors.New("password must not be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hash), nil
}

// compares a plaintext password against a stored hash
func Verify(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return ErrMismatch
	}

	return nil
}

// UnusablePlaceholder returns a bcrypt hash of random bytes whose
// plaintext is discarded immediately. Social-only accounts store it so
// the password column stays non-null while no password can ever log in.
func UnusablePlaceholder() (string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("failed to generate placeholder secret: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword(
		[]byte(base64.RawStdEncoding.EncodeToString(secret)),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return "", fmt.Errorf("failed to hash placeholder secret: %w", err)
	}

	return string(hash), nil
}
