package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAuthKey(t *testing.T) {
	hash, err := HashAuthKey([]byte("some-auth-key"))
	require.NoError(t, err)
	assert.Len(t, hash, 64) // hex-encoded SHA256

	// Детерминированность
	hash2, err := HashAuthKey([]byte("some-auth-key"))
	require.NoError(t, err)
	assert.Equal(t, hash, hash2)

	// Другой вход - другой хеш
	other, err := HashAuthKey([]byte("other-auth-key"))
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestHashAuthKey_Empty(t *testing.T) {
	_, err := HashAuthKey(nil)
	assert.Error(t, err)

	_, err = HashAuthKey([]byte{})
	assert.Error(t, err)
}
