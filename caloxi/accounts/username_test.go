package accounts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"A@X.com", "a@x.com"},
		{"  ann@example.com  ", "ann@example.com"},
		{"already@lower.case", "already@lower.case"},
		{"", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, NormalizeEmail(tc.input), "input %q", tc.input)
	}
}

func TestDeriveUsername_Shape(t *testing.T) {
	username, err := DeriveUsername("Ann.Smith@Example.COM")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(username, "ann.smith"), "got %q", username)
	assert.Len(t, username, len("ann.smith")+suffixLength)
}

func TestDeriveUsername_SuffixCharset(t *testing.T) {
	username, err := DeriveUsername("a@x.com")

	require.NoError(t, err)
	require.Len(t, username, 1+suffixLength)

	suffix := username[1:]
	for _, r := range suffix {
		assert.Contains(t, suffixAlphabet, string(r), "suffix %q", suffix)
	}
}

func TestDeriveUsername_Varies(t *testing.T) {
	seen := make(map[string]bool)

	for range 20 {
		username, err := DeriveUsername("a@x.com")
		require.NoError(t, err)
		seen[username] = true
	}

	assert.Greater(t, len(seen), 1, "suffix should be random")
}
