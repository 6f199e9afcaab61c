package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/notekeep/auth"
)

func TestScryptHasherRoundtrip(t *testing.T) {
	h := auth.NewScryptHasher()

	stored, err := h.Hash("password123")
	require.NoError(t, err)

	parts := strings.Split(stored, ".")
	require.Len(t, parts, 2, "hash should be salt.key")
	assert.Len(t, parts[0], 32, "salt is 16 bytes hex-encoded")
	assert.Len(t, parts[1], 128, "key is 64 bytes hex-encoded")

	match, err := h.Compare("password123", stored)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = h.Compare("password124", stored)
	require.NoError(t, err)
	assert.False(t, match)
}

func TestScryptHasherSaltsAreUnique(t *testing.T) {
	h := auth.NewScryptHasher()

	first, err := h.Hash("same password")
	require.NoError(t, err)
	second, err := h.Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "fresh salt per hash")

	for _, stored := range []string{first, second} {
		match, err := h.Compare("same password", stored)
		require.NoError(t, err)
		assert.True(t, match)
	}
}

func TestScryptHasherMalformedStored(t *testing.T) {
	h := auth.NewScryptHasher()

	tests := []struct {
		name   string
		stored string
	}{
		{"empty", ""},
		{"no separator", "abcdef0123456789"},
		{"empty salt", ".deadbeef"},
		{"empty key", "deadbeef."},
		{"too many parts", "aa.bb.cc"},
		{"key not hex", "deadbeef.zzzz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := h.Compare("whatever", tt.stored)
			assert.False(t, match)

			var ae *auth.AuthError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, auth.ErrCodeMalformedHash, ae.Code)
			assert.True(t, ae.Fatal(), "corrupt stored hash is not a user error")
		})
	}
}
