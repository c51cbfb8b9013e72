package filex

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) func() {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	return func() { _ = os.Chdir(old) }
}

func TestEnsureSubdDir_CreatesDirectoryInCWD(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	got, err := EnsureSubdDir("backups")
	require.NoError(t, err)

	want := filepath.Join(tmp, "backups")
	require.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	require.True(t, fi.IsDir(), "should create a directory")
}

func TestEnsureSubdDir_Idempotent(t *testing.T) {
	tmp := t.TempDir()
	defer chdir(t, tmp)()

	first, err := EnsureSubdDir("backups")
	require.NoError(t, err)

	second, err := EnsureSubdDir("backups")
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestTimestampedName_StripsExtension(t *testing.T) {
	name := TimestampedName("/var/lib/election/creds.txt", ".enc")
	require.True(t, strings.HasPrefix(name, "creds-"))
	require.True(t, strings.HasSuffix(name, ".enc"))
	require.NotContains(t, name, ".txt")
}

func TestWriteExclusive_RefusesOverwrite(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "b.enc")

	require.NoError(t, WriteExclusive(path, []byte("one"), 0o600))

	err := WriteExclusive(path, []byte("two"), 0o600)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []byte("one"), data)
}
