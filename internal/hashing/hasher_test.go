package hashing

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velmaris/votekeep/internal/common"
)

func TestHashVerify_RoundTrip(t *testing.T) {
	h := New(DefaultIterations)

	salt, err := h.GenerateSalt()
	require.NoError(t, err)

	digest, err := h.Hash("Abc12345", salt)
	require.NoError(t, err)

	assert.True(t, h.Verify("Abc12345", digest, salt))
	assert.False(t, h.Verify("Abc12346", digest, salt))
	assert.False(t, h.Verify("abc12345", digest, salt))
}

func TestHash_DifferentSaltsDifferentDigests(t *testing.T) {
	h := New(DefaultIterations)

	s1, err := h.GenerateSalt()
	require.NoError(t, err)
	s2, err := h.GenerateSalt()
	require.NoError(t, err)
	require.NotEqual(t, s1, s2)

	d1, err := h.Hash("Abc12345", s1)
	require.NoError(t, err)
	d2, err := h.Hash("Abc12345", s2)
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)
}

func TestHash_EmptyPasswordIsNotHashed(t *testing.T) {
	h := New(DefaultIterations)

	_, err := h.Hash("", "c2FsdA==")
	assert.ErrorIs(t, err, common.ErrEmptyPassword)

	ok, name := h.VerifyScheme("", "whatever", "c2FsdA==")
	assert.False(t, ok)
	assert.Empty(t, name)
}

// legacyDigest reproduces the pre-upgrade single-pass scheme.
func legacyDigest(password, salt string, hexEncoded bool) string {
	var in []byte
	if salt != "" {
		if b, err := base64.StdEncoding.DecodeString(salt); err == nil {
			in = append(in, b...)
		} else {
			in = append(in, []byte(salt)...)
		}
	}
	in = append(in, []byte(password)...)
	sum := sha256.Sum256(in)
	if hexEncoded {
		return hex.EncodeToString(sum[:])
	}
	return base64.StdEncoding.EncodeToString(sum[:])
}

func TestVerify_LegacySaltedDigestStillWorks(t *testing.T) {
	h := New(DefaultIterations)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)

	digest := legacyDigest("OldPass99", salt, false)

	ok, name := h.VerifyScheme("OldPass99", digest, salt)
	assert.True(t, ok)
	assert.Equal(t, SchemeLegacy, name)
}

func TestVerify_LegacyHexDigestStillWorks(t *testing.T) {
	h := New(DefaultIterations)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)

	digest := legacyDigest("OldPass99", salt, true)

	ok, name := h.VerifyScheme("OldPass99", digest, salt)
	assert.True(t, ok)
	assert.Equal(t, SchemeLegacy, name)
}

func TestVerify_LegacyUnsaltedDigest(t *testing.T) {
	h := New(DefaultIterations)

	digest := legacyDigest("Ancient1", "", false)

	// stored salt present but digest predates salting
	salt, err := h.GenerateSalt()
	require.NoError(t, err)

	ok, name := h.VerifyScheme("Ancient1", digest, salt)
	assert.True(t, ok)
	assert.Equal(t, SchemeLegacyUnsalted, name)
}

func TestVerifyScheme_CurrentWinsOverLegacy(t *testing.T) {
	h := New(DefaultIterations)
	salt, err := h.GenerateSalt()
	require.NoError(t, err)

	digest, err := h.Hash("Abc12345", salt)
	require.NoError(t, err)

	ok, name := h.VerifyScheme("Abc12345", digest, salt)
	assert.True(t, ok)
	assert.Equal(t, SchemeCurrent, name)
}

func TestNew_NonPositiveIterationsFallBack(t *testing.T) {
	h := New(0)
	assert.Equal(t, DefaultIterations, h.iterations)
}

func TestVerify_RawLegacySaltBytes(t *testing.T) {
	// Salts preserved verbatim from the legacy store are not base64.
	h := New(DefaultIterations)
	salt := "not-base64!!"

	digest, err := h.Hash("Abc12345", salt)
	require.NoError(t, err)
	assert.True(t, h.Verify("Abc12345", digest, salt))
}
