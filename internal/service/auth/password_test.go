package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasher_SHA256IsUnsaltedHex(t *testing.T) {
	h, err := NewHasher(SchemeSHA256)
	require.NoError(t, err)

	hashed, err := h.Hash("secreto1")
	require.NoError(t, err)
	assert.Len(t, hashed, 64)

	again, err := h.Hash("secreto1")
	require.NoError(t, err)
	assert.Equal(t, hashed, again)
}

func TestHasher_BcryptIsSalted(t *testing.T) {
	h, err := NewHasher(SchemeBcrypt)
	require.NoError(t, err)
	h.bcryptCost = 4

	first, err := h.Hash("secreto1")
	require.NoError(t, err)
	second, err := h.Hash("secreto1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(first, "$2"))
	assert.NotEqual(t, first, second)
}

func TestHasher_MatchesEitherStoredFormat(t *testing.T) {
	shaHasher, err := NewHasher(SchemeSHA256)
	require.NoError(t, err)
	bcryptHasher, err := NewHasher(SchemeBcrypt)
	require.NoError(t, err)
	bcryptHasher.bcryptCost = 4

	legacy, err := shaHasher.Hash("secreto1")
	require.NoError(t, err)
	modern, err := bcryptHasher.Hash("secreto1")
	require.NoError(t, err)

	for _, verifier := range []*Hasher{shaHasher, bcryptHasher} {
		for _, stored := range []string{legacy, strings.ToUpper(legacy), modern} {
			ok, err := verifier.Matches(stored, "secreto1")
			require.NoError(t, err)
			assert.True(t, ok, "stored=%s", stored)

			ok, err = verifier.Matches(stored, "otro")
			require.NoError(t, err)
			assert.False(t, ok, "stored=%s", stored)
		}
	}
}

func TestNewHasher_UnknownScheme(t *testing.T) {
	_, err := NewHasher("md5")
	assert.Error(t, err)
}
