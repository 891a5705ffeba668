package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheapParams keeps the hashing tests fast.
var cheapParams = HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashPasswordFormat(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery-staple")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 6)
	assert.Equal(t, "argon2id", parts[1])
	assert.Equal(t, "v=19", parts[2])
	assert.Equal(t, "m=65536,t=3,p=2", parts[3])
}

func TestVerifyPassword(t *testing.T) {
	hash, err := hashWith("my-secure-password", cheapParams)
	require.NoError(t, err)

	ok, err := VerifyPassword("my-secure-password", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	a, err := hashWith("same-password", cheapParams)
	require.NoError(t, err)
	b, err := hashWith("same-password", cheapParams)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyPasswordInvalidHash(t *testing.T) {
	_, err := VerifyPassword("password", "invalid-hash-format")
	assert.ErrorIs(t, err, ErrInvalidHashFormat)

	_, err = VerifyPassword("password", "$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5")
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
}
