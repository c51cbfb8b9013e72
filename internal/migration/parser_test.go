package migration

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velmaris/votekeep/internal/common"
	"github.com/velmaris/votekeep/internal/roles"
)

func TestParseRecords(t *testing.T) {
	input := strings.Join([]string{
		"# exported 2019-04-02",
		"alice:Alice Smith:ZGlnZXN0:Super Admin",
		"",
		"bob:Bob Jones:plaintext-marker:clerk",
		"carol:Carol White::bogus",
	}, "\n")

	got, err := ParseRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "alice", got[0].ID)
	assert.Equal(t, "Alice Smith", got[0].DisplayName)
	assert.Equal(t, "ZGlnZXN0", got[0].DigestOrPlain)
	assert.Equal(t, roles.SuperAdmin, got[0].Role)

	assert.Equal(t, roles.Operator, got[1].Role)

	// unknown role falls to the lowest privilege
	assert.Equal(t, roles.Observer, got[2].Role)
	assert.Empty(t, got[2].DigestOrPlain)
}

func TestParseRecords_WrongFieldCount(t *testing.T) {
	_, err := ParseRecords(strings.NewReader("alice:Alice Smith:digest"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = ParseRecords(strings.NewReader("a:b:c:d:e"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestParseRecords_EmptyID(t *testing.T) {
	_, err := ParseRecords(strings.NewReader(":Alice:d:admin"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestParseSalts(t *testing.T) {
	input := strings.Join([]string{
		"# salts",
		"alice:c2FsdA==",
		"bob:salt:with:colons",
	}, "\n")

	got, err := ParseSalts(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "c2FsdA==", got["alice"])
	assert.Equal(t, "salt:with:colons", got["bob"])
}

func TestParseSalts_Malformed(t *testing.T) {
	_, err := ParseSalts(strings.NewReader("no-colon-here"))
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestHasPreservedDigest(t *testing.T) {
	assert.True(t, Record{DigestOrPlain: "d", Salt: "s"}.HasPreservedDigest())
	assert.False(t, Record{DigestOrPlain: "d"}.HasPreservedDigest())
	assert.False(t, Record{Salt: "s"}.HasPreservedDigest())
}
