package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPasswordHash("secret1", hash))
}

func TestCheckPasswordHashRejectsWrongPassword(t *testing.T) {
	hash, err := HashPassword("correct-horse")
	require.NoError(t, err)
	assert.False(t, CheckPasswordHash("battery-staple", hash))
	assert.False(t, CheckPasswordHash("", hash))
}

func TestHashPasswordSalted(t *testing.T) {
	h1, err := HashPassword("secret1")
	require.NoError(t, err)
	h2, err := HashPassword("secret1")
	require.NoError(t, err)
	// Same password, fresh salt, different hashes.
	assert.NotEqual(t, h1, h2)
	assert.True(t, CheckPasswordHash("secret1", h1))
	assert.True(t, CheckPasswordHash("secret1", h2))
}

func TestCheckPasswordHashGarbageHash(t *testing.T) {
	assert.False(t, CheckPasswordHash("secret1", "not-a-bcrypt-hash"))
}
