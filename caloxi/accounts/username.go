package accounts

import (
	"crypto/rand"
	"strings"
)

const (
	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffixLength   = 4
)

// NormalizeEmail lowercases and trims an email address. Email is the
// join key between provider identities and local accounts, so every
// lookup and insert goes through this first.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DeriveUsername builds a username candidate from the email local-part
// plus a short random suffix to keep collision probability low.
func DeriveUsername(email string) (string, error) {
	local := NormalizeEmail(email)
	if at := strings.Index(local, "@"); at >= 0 {
		local = local[:at]
	}

	suffix, err := randomSuffix(suffixLength)
	if err != nil {
		return "", err
	}

	return local + suffix, nil
}

func randomSuffix(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	for i := range buf {
		buf[i] = suffixAlphabet[int(buf[i])%len(suffixAlphabet)]
	}

	return string(buf), nil
}
