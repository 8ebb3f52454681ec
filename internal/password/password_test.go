package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_Verify_RoundTrip(t *testing.T) {
	hash, err := Hash("correct horse battery staple")

	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.NoError(t, Verify(hash, "correct horse battery staple"))
}

func TestVerify_WrongPassword(t *testing.T) {
	hash, err := Hash("the real password")
	require.NoError(t, err)

	err = Verify(hash, "a guess")

	assert.ErrorIs(t, err, ErrMismatch)
}

func TestHash_EmptyPassword(t *testing.T) {
	_, err := Hash("")

	assert.Error(t, err)
}

func TestHash_Salted(t *testing.T) {
	first, err := Hash("same input")
	require.NoError(t, err)

	second, err := Hash("same input")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "bcrypt hashes should be salted")
}

func TestUnusablePlaceholder_NeverMatches(t *testing.T) {
	placeholder, err := UnusablePlaceholder()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(placeholder, "$2"), "placeholder should be a bcrypt hash")

	// no plausible password should ever verify against the placeholder
	attempts := []string{
		"",
		"password",
		"hunter2",
		placeholder,
		strings.Repeat("a", 72),
	}

	for _, attempt := range attempts {
		assert.Error(t, Verify(placeholder, attempt), "attempt %q must not match the placeholder", attempt)
	}
}

func TestUnusablePlaceholder_Unique(t *testing.T) {
	first, err := UnusablePlaceholder()
	require.NoError(t, err)

	second, err := UnusablePlaceholder()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
