package hasher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	theHasher := New(bcrypt.MinCost)

	t.Run("verify succeeds for the hashed plaintext", func(t *testing.T) {
		blob, err := theHasher.Hash("correct horse battery staple")
		require.NoError(t, err)
		require.NotEmpty(t, blob)

		assert.True(t, theHasher.Verify("correct horse battery staple", blob))
	})

	t.Run("verify fails for a different plaintext", func(t *testing.T) {
		blob, err := theHasher.Hash("correct horse battery staple")
		require.NoError(t, err)

		assert.False(t, theHasher.Verify("Tr0ub4dor&3", blob))
	})

	t.Run("same plaintext produces different blobs", func(t *testing.T) {
		first, err := theHasher.Hash("same password")
		require.NoError(t, err)
		second, err := theHasher.Hash("same password")
		require.NoError(t, err)

		assert.NotEqual(t, first, second, "each hash call should use a fresh salt")
		assert.True(t, theHasher.Verify("same password", first))
		assert.True(t, theHasher.Verify("same password", second))
	})

	t.Run("plaintext never appears in the blob", func(t *testing.T) {
		blob, err := theHasher.Hash("plaintextmarker")
		require.NoError(t, err)

		assert.NotContains(t, blob, "plaintextmarker")
	})

	t.Run("malformed blob yields false without panic", func(t *testing.T) {
		assert.False(t, theHasher.Verify("whatever", "not a bcrypt blob"))
		assert.False(t, theHasher.Verify("whatever", ""))
	})
}

func TestNewCostFallback(t *testing.T) {
	theHasher := New(1000)

	blob, err := theHasher.Hash("password")
	require.NoError(t, err)
	assert.True(t, theHasher.Verify("password", blob))
}
