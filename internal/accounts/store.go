// Package accounts implements the credential store: validated, audited
// persistence of operator accounts layered over the account repository.
// Password digests never leave this package except inside Account values
// handed to the authentication service.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/velmaris/votekeep/internal/audit"
	"github.com/velmaris/votekeep/internal/common"
	"github.com/velmaris/votekeep/internal/dbx"
	"github.com/velmaris/votekeep/internal/hashing"
	"github.com/velmaris/votekeep/internal/logging"
	"github.com/velmaris/votekeep/internal/models"
	"github.com/velmaris/votekeep/internal/repositories/repomanager"
	"github.com/velmaris/votekeep/internal/roles"
)

type Store struct {
	db      *sql.DB
	repos   repomanager.Manager
	hasher  *hashing.Hasher
	auditor *audit.Service
	logger  logging.Logger
	cache   *accountCache
	timeout time.Duration

	now func() time.Time
}

func NewStore(db *sql.DB, repos repomanager.Manager, hasher *hashing.Hasher,
	auditor *audit.Service, logger logging.Logger, timeout time.Duration) *Store {
	return &Store{
		db:      db,
		repos:   repos,
		hasher:  hasher,
		auditor: auditor,
		logger:  logger,
		cache:   newAccountCache(30*time.Second, 256),
		timeout: timeout,
		now:     time.Now,
	}
}

// Actor carries the identity performing a mutation, for the audit trail.
type Actor struct {
	ID        string
	IPAddress string
	UserAgent string
}

// CreateInput describes a new account. Action overrides the audit action
// name when set; the default is an operator-initiated creation.
type CreateInput struct {
	ID          string
	DisplayName string
	Password    string
	Role        roles.Role
	NeedsReset  bool
	Action      string
}

// Create validates the input, hashes the password with a fresh salt, and
// writes the account row together with its audit entry in one transaction.
// An active account with the same id is a conflict; an inactive one is
// reactivated with the new credentials.
func (s *Store) Create(ctx context.Context, in CreateInput, by Actor) error {
	if err := validateID(in.ID); err != nil {
		return err
	}
	if err := validateDisplayName(in.DisplayName); err != nil {
		return err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return err
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return s.storageErr(ctx, err)
	}
	digest, err := s.hasher.Hash(in.Password, salt)
	if err != nil {
		return err
	}

	a := &models.Account{
		ID:                 in.ID,
		DisplayName:        in.DisplayName,
		PasswordDigest:     digest,
		Salt:               salt,
		Role:               string(in.Role),
		Active:             true,
		NeedsPasswordReset: in.NeedsReset,
		CreatedAt:          s.now().UTC(),
	}

	action := in.Action
	if action == "" {
		action = audit.ActionAccountCreated
	}
	details := fmt.Sprintf("account %q role %s", in.ID, in.Role)

	return s.insertAudited(ctx, a, by, action, details)
}

// PreservedInput describes an account imported with its original password
// digest and salt, so the holder's existing password keeps working.
type PreservedInput struct {
	ID          string
	DisplayName string
	Digest      string
	Salt        string
	Role        roles.Role
}

// CreateWithPreservedDigest writes an account without rehashing. Only the
// migration importer uses it.
func (s *Store) CreateWithPreservedDigest(ctx context.Context, in PreservedInput, by Actor) error {
	if err := validateID(in.ID); err != nil {
		return err
	}
	if err := validateDisplayName(in.DisplayName); err != nil {
		return err
	}
	if in.Digest == "" {
		return fmt.Errorf("%w: empty password digest", common.ErrInvalidInput)
	}

	a := &models.Account{
		ID:             in.ID,
		DisplayName:    in.DisplayName,
		PasswordDigest: in.Digest,
		Salt:           in.Salt,
		Role:           string(in.Role),
		Active:         true,
		CreatedAt:      s.now().UTC(),
	}

	details := fmt.Sprintf("account %q role %s digest preserved", in.ID, in.Role)
	return s.insertAudited(ctx, a, by, audit.ActionAccountMigrated, details)
}

func (s *Store) insertAudited(ctx context.Context, a *models.Account, by Actor, action, details string) error {
	defer s.cache.invalidate(a.ID)

	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := s.repos.Accounts(tx)

			existing, err := repo.Get(ctx, a.ID)
			switch {
			case err == nil && existing.Active:
				return fmt.Errorf("%w: account %q already exists", common.ErrConflict, a.ID)
			case err == nil:
				// Reactivate the retired id with the new credentials.
				if err := repo.Replace(ctx, a); err != nil {
					return err
				}
			case errors.Is(err, common.ErrNotFound):
				if err := repo.Insert(ctx, a); err != nil {
					return err
				}
			default:
				return err
			}

			e := s.auditor.NewEntry(by.ID, action, details, by.IPAddress, by.UserAgent)
			return s.auditor.RecordIn(ctx, tx, e)
		})
	})
	if err != nil {
		return s.storageErr(ctx, err)
	}
	return nil
}

// Get returns the account regardless of its active flag, serving repeated
// reads from the cache.
func (s *Store) Get(ctx context.Context, id string) (*models.Account, error) {
	if a, ok := s.cache.get(id, s.now()); ok {
		return &a, nil
	}

	var a *models.Account
	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		var err error
		a, err = s.repos.Accounts(s.db).Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.storageErr(ctx, err)
	}

	s.cache.put(*a, s.now())
	return a, nil
}

func (s *Store) ExistsActive(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		var err error
		ok, err = s.repos.Accounts(s.db).ExistsActive(ctx, id)
		return err
	})
	if err != nil {
		return false, s.storageErr(ctx, err)
	}
	return ok, nil
}

func (s *Store) ListActive(ctx context.Context) ([]models.Account, error) {
	var list []models.Account
	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		var err error
		list, err = s.repos.Accounts(s.db).ListActive(ctx)
		return err
	})
	if err != nil {
		return nil, s.storageErr(ctx, err)
	}
	return list, nil
}

// Deactivate retires an account without destroying its row, so the audit
// trail keeps resolving the id. Already-inactive ids are not an error.
func (s *Store) Deactivate(ctx context.Context, id string, by Actor) error {
	defer s.cache.invalidate(id)

	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := s.repos.Accounts(tx)
			if _, err := repo.Get(ctx, id); err != nil {
				return err
			}
			if err := repo.SetActive(ctx, id, false); err != nil {
				return err
			}
			e := s.auditor.NewEntry(by.ID, audit.ActionAccountDeactivated,
				fmt.Sprintf("account %q deactivated", id), by.IPAddress, by.UserAgent)
			return s.auditor.RecordIn(ctx, tx, e)
		})
	})
	if err != nil {
		return s.storageErr(ctx, err)
	}
	return nil
}

// UpdatePassword validates the new password, hashes it under a fresh salt,
// and stores it. The action names the audit event (self change vs admin
// reset).
func (s *Store) UpdatePassword(ctx context.Context, id, password string, needsReset bool, by Actor, action string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return s.storageErr(ctx, err)
	}
	digest, err := s.hasher.Hash(password, salt)
	if err != nil {
		return err
	}

	defer s.cache.invalidate(id)

	err = dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := s.repos.Accounts(tx)
			a, err := repo.Get(ctx, id)
			if err != nil {
				return err
			}
			if !a.Active {
				return fmt.Errorf("%w: account %q", common.ErrNotFound, id)
			}
			if err := repo.UpdatePassword(ctx, id, digest, salt, needsReset); err != nil {
				return err
			}
			e := s.auditor.NewEntry(by.ID, action,
				fmt.Sprintf("password updated for %q", id), by.IPAddress, by.UserAgent)
			return s.auditor.RecordIn(ctx, tx, e)
		})
	})
	if err != nil {
		return s.storageErr(ctx, err)
	}
	return nil
}

// Rehash silently upgrades a stored digest to the current scheme. Used
// after a successful login that verified against a legacy digest; no audit
// entry, the password itself did not change.
func (s *Store) Rehash(ctx context.Context, id, password string) error {
	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return s.storageErr(ctx, err)
	}
	digest, err := s.hasher.Hash(password, salt)
	if err != nil {
		return err
	}

	defer s.cache.invalidate(id)

	err = dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := s.repos.Accounts(tx)
			a, err := repo.Get(ctx, id)
			if err != nil {
				return err
			}
			return repo.UpdatePassword(ctx, id, digest, salt, a.NeedsPasswordReset)
		})
	})
	if err != nil {
		return s.storageErr(ctx, err)
	}
	return nil
}

// ReassignRole moves the account to a new role, normalizing the label.
func (s *Store) ReassignRole(ctx context.Context, id string, role roles.Role, by Actor) error {
	defer s.cache.invalidate(id)

	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := s.repos.Accounts(tx)
			a, err := repo.Get(ctx, id)
			if err != nil {
				return err
			}
			if !a.Active {
				return fmt.Errorf("%w: account %q", common.ErrNotFound, id)
			}
			if err := repo.UpdateRole(ctx, id, string(role)); err != nil {
				return err
			}
			e := s.auditor.NewEntry(by.ID, audit.ActionRoleReassigned,
				fmt.Sprintf("account %q role %s -> %s", id, a.Role, role), by.IPAddress, by.UserAgent)
			return s.auditor.RecordIn(ctx, tx, e)
		})
	})
	if err != nil {
		return s.storageErr(ctx, err)
	}
	return nil
}

// IncrementFailedAttempts bumps the counter and returns the new value.
func (s *Store) IncrementFailedAttempts(ctx context.Context, id string) (int, error) {
	defer s.cache.invalidate(id)

	var n int
	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		var err error
		n, err = s.repos.Accounts(s.db).IncrementFailedAttempts(ctx, id)
		return err
	})
	if err != nil {
		return 0, s.storageErr(ctx, err)
	}
	return n, nil
}

func (s *Store) ResetFailedAttempts(ctx context.Context, id string) error {
	defer s.cache.invalidate(id)

	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		return s.repos.Accounts(s.db).ResetFailedAttempts(ctx, id)
	})
	if err != nil {
		return s.storageErr(ctx, err)
	}
	return nil
}

func (s *Store) Lock(ctx context.Context, id string, until time.Time) error {
	defer s.cache.invalidate(id)

	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		return s.repos.Accounts(s.db).Lock(ctx, id, until)
	})
	if err != nil {
		return s.storageErr(ctx, err)
	}
	return nil
}

// Unlock clears the lock and the failure counter.
func (s *Store) Unlock(ctx context.Context, id string) error {
	defer s.cache.invalidate(id)

	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		return s.repos.Accounts(s.db).Unlock(ctx, id)
	})
	if err != nil {
		return s.storageErr(ctx, err)
	}
	return nil
}

// RecordLogin stamps a successful login on the account row.
func (s *Store) RecordLogin(ctx context.Context, id string, at time.Time, clearReset bool) error {
	defer s.cache.invalidate(id)

	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		return s.repos.Accounts(s.db).RecordLogin(ctx, id, at, clearReset)
	})
	if err != nil {
		return s.storageErr(ctx, err)
	}
	return nil
}

// storageErr passes domain sentinels through untouched and wraps
// everything else as a storage failure, so callers fail closed instead of
// leaking driver details.
func (s *Store) storageErr(ctx context.Context, err error) error {
	for _, sentinel := range []error{
		common.ErrNotFound, common.ErrInvalidInput, common.ErrConflict,
		common.ErrEmptyPassword,
	} {
		if errors.Is(err, sentinel) {
			return err
		}
	}
	s.logger.Error(ctx, "credential store storage failure", "error", err)
	return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
}
