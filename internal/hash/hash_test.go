package hash_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wizrdcoder/blog-api/internal/hash"
)

func TestPassword(t *testing.T) {
	digest, err := hash.Password("password123")
	require.NoError(t, err)
	assert.NotEmpty(t, digest)
	assert.NotEqual(t, "password123", digest)

	// Salted: same input, different digest.
	other, err := hash.Password("password123")
	require.NoError(t, err)
	assert.NotEqual(t, digest, other)
}

func TestCheck(t *testing.T) {
	digest, err := hash.Password("password123")
	require.NoError(t, err)

	t.Run("matching password", func(t *testing.T) {
		assert.True(t, hash.Check(digest, "password123"))
	})

	t.Run("wrong password", func(t *testing.T) {
		assert.False(t, hash.Check(digest, "wrong-password"))
	})

	t.Run("malformed digest", func(t *testing.T) {
		assert.False(t, hash.Check("not-a-bcrypt-digest", "password123"))
	})

	t.Run("empty digest", func(t *testing.T) {
		assert.False(t, hash.Check("", "password123"))
	})
}
