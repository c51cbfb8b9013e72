// Package filex contains small filesystem helpers shared by the migration
// importer and the CLI tools.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EnsureSubdDir creates dirName (relative paths resolve against the
// working directory) and returns its absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// TimestampedName builds a backup file name from the source base name, a
// UTC timestamp, and the given extension, e.g. "creds-20260829T120000Z.enc".
func TimestampedName(source string, ext string) string {
	base := filepath.Base(source)
	if e := filepath.Ext(base); e != "" {
		base = base[:len(base)-len(e)]
	}
	return fmt.Sprintf("%s-%s%s", base, time.Now().UTC().Format("20060102T150405Z"), ext)
}

// WriteExclusive writes data to path, failing if the file already exists.
// Backups must never silently overwrite an earlier backup.
func WriteExclusive(path string, data []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
