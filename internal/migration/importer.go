// Package migration imports accounts from the legacy colon-delimited
// credential export. Digests with a known salt are preserved verbatim so
// the historical passwords keep working; everything else gets a fixed
// temporary password and a forced reset. The import is idempotent and each
// record commits on its own, so an aborted run can simply be repeated.
package migration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/velmaris/votekeep/internal/accounts"
	"github.com/velmaris/votekeep/internal/audit"
	"github.com/velmaris/votekeep/internal/common"
	"github.com/velmaris/votekeep/internal/cryptox"
	"github.com/velmaris/votekeep/internal/filex"
	"github.com/velmaris/votekeep/internal/logging"
)

// TempPassword is issued to accounts imported without a usable digest.
// The forced reset flag makes it single-use.
const TempPassword = "Temp1234!"

type Importer struct {
	store     *accounts.Store
	auditor   *audit.Service
	logger    logging.Logger
	backupDir string
}

func NewImporter(store *accounts.Store, auditor *audit.Service, logger logging.Logger, backupDir string) *Importer {
	return &Importer{store: store, auditor: auditor, logger: logger, backupDir: backupDir}
}

// Summary reports the outcome of one import run.
type Summary struct {
	Imported   int
	Preserved  int
	Skipped    int
	BackupPath string
}

// ImportLegacyCredentials backs up the source, then imports every record
// that does not already have an active account. credsPath is mandatory;
// saltsPath may be empty when no salt file survived. The backup is written
// and encrypted under passphrase before any account is touched.
func (i *Importer) ImportLegacyCredentials(ctx context.Context, credsPath, saltsPath string, passphrase []byte) (Summary, error) {
	var sum Summary

	raw, err := os.ReadFile(credsPath)
	if err != nil {
		return sum, fmt.Errorf("read legacy credentials: %w", err)
	}

	sum.BackupPath, err = i.backup(credsPath, raw, passphrase)
	if err != nil {
		return sum, err
	}

	records, err := ParseRecords(bytes.NewReader(raw))
	if err != nil {
		return sum, err
	}

	salts := map[string]string{}
	if saltsPath != "" {
		rawSalts, err := os.ReadFile(saltsPath)
		if err != nil {
			return sum, fmt.Errorf("read salt file: %w", err)
		}
		if salts, err = ParseSalts(bytes.NewReader(rawSalts)); err != nil {
			return sum, err
		}
	}

	by := accounts.Actor{ID: common.SystemActor}
	for _, rec := range records {
		// safe to abort between records; each one commits on its own
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		rec.Salt = salts[rec.ID]

		exists, err := i.store.ExistsActive(ctx, rec.ID)
		if err != nil {
			return sum, err
		}
		if exists {
			sum.Skipped++
			continue
		}

		if err := i.importOne(ctx, rec, by); err != nil {
			if errors.Is(err, common.ErrConflict) {
				sum.Skipped++
				continue
			}
			return sum, fmt.Errorf("import %q: %w", rec.ID, err)
		}

		if rec.HasPreservedDigest() {
			sum.Preserved++
		}
		sum.Imported++
	}

	i.auditor.Record(ctx, common.SystemActor, audit.ActionMigrationSummary,
		fmt.Sprintf("imported %d (%d preserved digests), skipped %d", sum.Imported, sum.Preserved, sum.Skipped), "", "")
	i.logger.Info(ctx, "legacy credential import finished",
		"imported", sum.Imported, "preserved", sum.Preserved, "skipped", sum.Skipped)
	return sum, nil
}

func (i *Importer) importOne(ctx context.Context, rec Record, by accounts.Actor) error {
	if rec.HasPreservedDigest() {
		return i.store.CreateWithPreservedDigest(ctx, accounts.PreservedInput{
			ID:          rec.ID,
			DisplayName: rec.DisplayName,
			Digest:      rec.DigestOrPlain,
			Salt:        rec.Salt,
			Role:        rec.Role,
		}, by)
	}

	return i.store.Create(ctx, accounts.CreateInput{
		ID:          rec.ID,
		DisplayName: rec.DisplayName,
		Password:    TempPassword,
		Role:        rec.Role,
		NeedsReset:  true,
		Action:      audit.ActionAccountMigrated,
	}, by)
}

// backup writes an encrypted copy of the legacy source into the backup
// directory. Runs before any mutation; a failed backup aborts the import.
func (i *Importer) backup(credsPath string, raw, passphrase []byte) (string, error) {
	dir, err := filex.EnsureSubdDir(i.backupDir)
	if err != nil {
		return "", err
	}

	envelope, err := cryptox.EncryptBackup(raw, passphrase)
	if err != nil {
		return "", fmt.Errorf("encrypt backup: %w", err)
	}

	path := filepath.Join(dir, filex.TimestampedName(credsPath, ".enc"))
	if err := filex.WriteExclusive(path, envelope, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
