package common

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	s, err := MakeRandHexString(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)

	_, err = hex.DecodeString(s)
	assert.NoError(t, err)
}

func TestMakeRandHexString_NotRepeating(t *testing.T) {
	a, err := MakeRandHexString(16)
	require.NoError(t, err)
	b, err := MakeRandHexString(16)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerateRandByteArray_Basic(t *testing.T) {
	b := GenerateRandByteArray(32)
	assert.Len(t, b, 32)
	assert.NotEqual(t, make([]byte, 32), b)
}

func TestWipeByteArray(t *testing.T) {
	b := []byte("Secret123")
	WipeByteArray(b)
	assert.Equal(t, make([]byte, 9), b)

	WipeByteArray(nil) // no panic
}
