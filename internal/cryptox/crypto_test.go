package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptBackup_RoundTrip(t *testing.T) {
	plaintext := []byte("u1:User One:plain:operator\n")
	pass := []byte("correct horse")

	env, err := EncryptBackup(plaintext, pass)
	require.NoError(t, err)
	assert.NotContains(t, string(env), "User One")

	got, err := DecryptBackup(env, pass)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}

func TestDecryptBackup_WrongPassphrase(t *testing.T) {
	env, err := EncryptBackup([]byte("data"), []byte("right"))
	require.NoError(t, err)

	_, err = DecryptBackup(env, []byte("wrong"))
	assert.Error(t, err)
}

func TestDecryptBackup_Truncated(t *testing.T) {
	_, err := DecryptBackup([]byte("short"), []byte("p"))
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestEncryptBackup_FreshSaltPerCall(t *testing.T) {
	pass := []byte("p")
	a, err := EncryptBackup([]byte("same"), pass)
	require.NoError(t, err)
	b, err := EncryptBackup([]byte("same"), pass)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDeriveBackupKey_Deterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")
	k1 := DeriveBackupKey([]byte("p"), salt)
	k2 := DeriveBackupKey([]byte("p"), salt)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 32)
}
