// Package auth orchestrates login, the lockout state machine, and the
// permission-gated administrative operations. It owns no storage of its
// own: accounts go through the credential store, events through the audit
// service.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/velmaris/votekeep/internal/accounts"
	"github.com/velmaris/votekeep/internal/audit"
	"github.com/velmaris/votekeep/internal/common"
	"github.com/velmaris/votekeep/internal/hashing"
	"github.com/velmaris/votekeep/internal/logging"
	"github.com/velmaris/votekeep/internal/models"
	"github.com/velmaris/votekeep/internal/roles"
)

// Bootstrap identity created when no active super admin exists. The forced
// reset flag makes the known password single-use.
const (
	BootstrapID       = "admin"
	BootstrapName     = "Default Administrator"
	BootstrapPassword = "Admin123"
)

// LoginResult is the outcome of a successful or locked authentication.
type LoginResult struct {
	Success bool

	// NeedsReset is true when the account had a forced password reset
	// pending; the flag is cleared by this login and the caller must send
	// the principal to the change-password flow.
	NeedsReset bool

	// LockedUntil is set when the attempt was rejected because the account
	// is locked.
	LockedUntil *time.Time
}

type Service struct {
	store   *accounts.Store
	hasher  *hashing.Hasher
	auditor *audit.Service
	logger  logging.Logger

	lockoutThreshold int
	lockoutDuration  time.Duration

	now func() time.Time
}

func NewService(store *accounts.Store, hasher *hashing.Hasher, auditor *audit.Service,
	logger logging.Logger, lockoutThreshold int, lockoutDuration time.Duration) *Service {
	return &Service{
		store:            store,
		hasher:           hasher,
		auditor:          auditor,
		logger:           logger,
		lockoutThreshold: lockoutThreshold,
		lockoutDuration:  lockoutDuration,
		now:              time.Now,
	}
}

// Authenticate runs the login state machine for one attempt. Unknown ids,
// inactive accounts, and wrong passwords are indistinguishable to the
// caller: all return ErrInvalidCredentials. A locked account returns
// ErrLocked with the lock deadline in the result. Storage failures deny
// the login and return ErrStorageUnavailable.
//
// Every branch writes one login-attempt record and at least one audit
// entry.
func (s *Service) Authenticate(ctx context.Context, id, password, ip, userAgent string) (LoginResult, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return s.rejectGeneric(ctx, id, ip, userAgent, "unknown account")
		}
		return s.rejectStorage(ctx, id, ip, err)
	}
	if !a.Active {
		return s.rejectGeneric(ctx, id, ip, userAgent, "inactive account")
	}

	now := s.now().UTC()
	if a.LockedUntil != nil {
		if a.Locked(now) {
			s.auditor.RecordAttempt(ctx, id, ip, false)
			s.auditor.Record(ctx, id, audit.ActionLoginBlocked,
				fmt.Sprintf("locked until %s", a.LockedUntil.Format(time.RFC3339)), ip, userAgent)
			until := *a.LockedUntil
			return LoginResult{LockedUntil: &until}, common.ErrLocked
		}
		// lock expired: clear it and evaluate as unlocked
		if err := s.store.Unlock(ctx, id); err != nil {
			return s.rejectStorage(ctx, id, ip, err)
		}
	}

	ok, scheme := s.hasher.VerifyScheme(password, a.PasswordDigest, a.Salt)
	if !ok {
		return s.handleFailure(ctx, a, ip, userAgent, now)
	}

	needsReset := a.NeedsPasswordReset
	if err := s.store.RecordLogin(ctx, id, now, needsReset); err != nil {
		return s.rejectStorage(ctx, id, ip, err)
	}

	if scheme != hashing.SchemeCurrent {
		// digest verified under a legacy scheme; upgrade it in place
		if err := s.store.Rehash(ctx, id, password); err != nil {
			s.logger.Warn(ctx, "legacy digest rehash failed", "account", id, "error", err)
		}
	}

	s.auditor.RecordAttempt(ctx, id, ip, true)
	s.auditor.Record(ctx, id, audit.ActionLoginSuccess, "login ok", ip, userAgent)
	return LoginResult{Success: true, NeedsReset: needsReset}, nil
}

// rejectGeneric denies without revealing whether the id exists.
func (s *Service) rejectGeneric(ctx context.Context, id, ip, userAgent, details string) (LoginResult, error) {
	s.auditor.RecordAttempt(ctx, id, ip, false)
	s.auditor.Record(ctx, id, audit.ActionLoginFailed, details, ip, userAgent)
	return LoginResult{}, common.ErrInvalidCredentials
}

// rejectStorage denies on storage failure: a login must never succeed on
// guesswork when the credential store cannot be consulted.
func (s *Service) rejectStorage(ctx context.Context, id, ip string, err error) (LoginResult, error) {
	s.logger.Error(ctx, "authentication storage failure", "account", id, "error", err)
	s.auditor.RecordAttempt(ctx, id, ip, false)
	s.auditor.Record(ctx, common.SystemActor, audit.ActionStorageError,
		fmt.Sprintf("authentication for %q failed closed", id), ip, "")
	if errors.Is(err, common.ErrStorageUnavailable) {
		return LoginResult{}, err
	}
	return LoginResult{}, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
}

func (s *Service) handleFailure(ctx context.Context, a *models.Account, ip, userAgent string, now time.Time) (LoginResult, error) {
	n, err := s.store.IncrementFailedAttempts(ctx, a.ID)
	if err != nil {
		return s.rejectStorage(ctx, a.ID, ip, err)
	}

	s.auditor.RecordAttempt(ctx, a.ID, ip, false)

	if n >= s.lockoutThreshold {
		until := now.Add(s.lockoutDuration)
		if err := s.store.Lock(ctx, a.ID, until); err != nil {
			return s.rejectStorage(ctx, a.ID, ip, err)
		}
		s.auditor.Record(ctx, a.ID, audit.ActionLoginFailed,
			fmt.Sprintf("attempt %d", n), ip, userAgent)
		s.auditor.Record(ctx, a.ID, audit.ActionLoginBlocked,
			fmt.Sprintf("threshold reached, locked until %s", until.Format(time.RFC3339)), ip, userAgent)
		return LoginResult{}, common.ErrInvalidCredentials
	}

	s.auditor.Record(ctx, a.ID, audit.ActionLoginFailed,
		fmt.Sprintf("attempt %d", n), ip, userAgent)
	return LoginResult{}, common.ErrInvalidCredentials
}

// ChangeOwnPassword verifies the old password before setting the new one.
// A wrong old password is a generic credential failure.
func (s *Service) ChangeOwnPassword(ctx context.Context, id, oldPassword, newPassword, ip, userAgent string) error {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrInvalidCredentials
		}
		return err
	}
	if !a.Active {
		return common.ErrInvalidCredentials
	}
	if !s.hasher.Verify(oldPassword, a.PasswordDigest, a.Salt) {
		s.auditor.Record(ctx, id, audit.ActionLoginFailed, "password change with wrong old password", ip, userAgent)
		return common.ErrInvalidCredentials
	}

	by := accounts.Actor{ID: id, IPAddress: ip, UserAgent: userAgent}
	return s.store.UpdatePassword(ctx, id, newPassword, false, by, audit.ActionPasswordChanged)
}

// ForceResetPassword sets a new password without checking the old one.
// Meant for forgot-password flows driven by an out-of-band identity check.
func (s *Service) ForceResetPassword(ctx context.Context, id, newPassword string) error {
	by := accounts.Actor{ID: common.SystemActor}
	return s.store.UpdatePassword(ctx, id, newPassword, false, by, audit.ActionPasswordReset)
}

// AddAccount creates an account on behalf of the acting principal, who
// must hold the manage-accounts permission.
func (s *Service) AddAccount(ctx context.Context, by accounts.Actor, in accounts.CreateInput) error {
	if err := s.requirePermission(ctx, by, roles.PermManageAccounts,
		audit.ActionUnauthorizedAccountCreate, "create "+in.ID); err != nil {
		return err
	}
	in.Role = roles.Normalize(string(in.Role))
	return s.store.Create(ctx, in, by)
}

// DeleteAccount deactivates the target. Super-admin accounts can never be
// deleted through this path, which keeps at least one active super admin
// in existence.
func (s *Service) DeleteAccount(ctx context.Context, by accounts.Actor, targetID string) error {
	if err := s.requirePermission(ctx, by, roles.PermManageAccounts,
		audit.ActionUnauthorizedAccountDelete, "delete "+targetID); err != nil {
		return err
	}

	target, err := s.store.Get(ctx, targetID)
	if err != nil {
		return err
	}
	if roles.Normalize(target.Role) == roles.SuperAdmin {
		s.auditor.Record(ctx, by.ID, audit.ActionUnauthorizedAccountDelete,
			fmt.Sprintf("refused to delete super admin %q", targetID), by.IPAddress, by.UserAgent)
		return fmt.Errorf("%w: super admin accounts cannot be deleted", common.ErrUnauthorized)
	}
	return s.store.Deactivate(ctx, targetID, by)
}

// ReassignRole moves the target to a new role. Demoting a super admin is
// refused for the same invariant-preserving reason as deletion.
func (s *Service) ReassignRole(ctx context.Context, by accounts.Actor, targetID string, role roles.Role) error {
	if err := s.requirePermission(ctx, by, roles.PermManageAccounts,
		audit.ActionUnauthorizedRoleChange, "reassign "+targetID); err != nil {
		return err
	}

	role = roles.Normalize(string(role))
	target, err := s.store.Get(ctx, targetID)
	if err != nil {
		return err
	}
	if roles.Normalize(target.Role) == roles.SuperAdmin && role != roles.SuperAdmin {
		s.auditor.Record(ctx, by.ID, audit.ActionUnauthorizedRoleChange,
			fmt.Sprintf("refused to demote super admin %q", targetID), by.IPAddress, by.UserAgent)
		return fmt.Errorf("%w: super admin accounts cannot be demoted", common.ErrUnauthorized)
	}
	return s.store.ReassignRole(ctx, targetID, role, by)
}

// ResetPassword sets a temporary password for the target and forces a
// change on next login. One super admin cannot reset another's password.
func (s *Service) ResetPassword(ctx context.Context, by accounts.Actor, targetID, newPassword string) error {
	if err := s.requirePermission(ctx, by, roles.PermResetPasswords,
		audit.ActionUnauthorizedPasswordReset, "reset password "+targetID); err != nil {
		return err
	}

	target, err := s.store.Get(ctx, targetID)
	if err != nil {
		return err
	}
	if roles.Normalize(target.Role) == roles.SuperAdmin && by.ID != targetID {
		s.auditor.Record(ctx, by.ID, audit.ActionUnauthorizedPasswordReset,
			fmt.Sprintf("refused to reset password of super admin %q", targetID), by.IPAddress, by.UserAgent)
		return fmt.Errorf("%w: cannot reset another super admin's password", common.ErrUnauthorized)
	}
	return s.store.UpdatePassword(ctx, targetID, newPassword, true, by, audit.ActionPasswordReset)
}

// Unlock lifts an active lockout ahead of its deadline.
func (s *Service) Unlock(ctx context.Context, by accounts.Actor, targetID string) error {
	if err := s.requirePermission(ctx, by, roles.PermManageAccounts,
		audit.ActionUnauthorizedUnlock, "unlock "+targetID); err != nil {
		return err
	}
	if _, err := s.store.Get(ctx, targetID); err != nil {
		return err
	}
	if err := s.store.Unlock(ctx, targetID); err != nil {
		return err
	}
	s.auditor.Record(ctx, by.ID, audit.ActionAccountUnlocked,
		fmt.Sprintf("account %q unlocked", targetID), by.IPAddress, by.UserAgent)
	return nil
}

// AccountSummary is the redacted account view exposed to listing callers.
// Digests and salts never leave the store.
type AccountSummary struct {
	ID                 string
	DisplayName        string
	Role               roles.Role
	Active             bool
	NeedsPasswordReset bool
	FailedAttempts     int
	LockedUntil        *time.Time
	CreatedAt          time.Time
	LastLoginAt        *time.Time
}

// ListAccounts returns summaries of the active accounts, gated by the
// manage-accounts permission.
func (s *Service) ListAccounts(ctx context.Context, by accounts.Actor) ([]AccountSummary, error) {
	if err := s.requirePermission(ctx, by, roles.PermManageAccounts,
		audit.ActionUnauthorizedAccountList, "list accounts"); err != nil {
		return nil, err
	}

	list, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]AccountSummary, 0, len(list))
	for _, a := range list {
		out = append(out, AccountSummary{
			ID:                 a.ID,
			DisplayName:        a.DisplayName,
			Role:               roles.Normalize(a.Role),
			Active:             a.Active,
			NeedsPasswordReset: a.NeedsPasswordReset,
			FailedAttempts:     a.FailedAttempts,
			LockedUntil:        a.LockedUntil,
			CreatedAt:          a.CreatedAt,
			LastLoginAt:        a.LastLoginAt,
		})
	}
	return out, nil
}

// AuditTrail returns the target's recent audit entries, gated by the
// view-audit permission.
func (s *Service) AuditTrail(ctx context.Context, by accounts.Actor, targetID string, limit int) ([]models.AuditEntry, error) {
	if err := s.requirePermission(ctx, by, roles.PermViewAudit,
		audit.ActionUnauthorizedAuditView, "trail for "+targetID); err != nil {
		return nil, err
	}
	return s.auditor.TrailFor(ctx, targetID, limit)
}

// RecentAudit returns the most recent audit entries across all actors,
// gated by the view-audit permission.
func (s *Service) RecentAudit(ctx context.Context, by accounts.Actor, limit int) ([]models.AuditEntry, error) {
	if err := s.requirePermission(ctx, by, roles.PermViewAudit,
		audit.ActionUnauthorizedAuditView, "recent audit"); err != nil {
		return nil, err
	}
	return s.auditor.Recent(ctx, limit)
}

// BootstrapDefaultSuperAccount guarantees that at least one active super
// admin exists. Called once at process start; idempotent. When the default
// id exists but was deactivated or demoted, it is restored rather than
// duplicated.
func (s *Service) BootstrapDefaultSuperAccount(ctx context.Context) error {
	list, err := s.store.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, a := range list {
		if roles.Normalize(a.Role) == roles.SuperAdmin {
			return nil
		}
	}

	by := accounts.Actor{ID: common.SystemActor}

	existing, err := s.store.Get(ctx, BootstrapID)
	switch {
	case err == nil && existing.Active:
		// active but demoted: restore the role
		return s.store.ReassignRole(ctx, BootstrapID, roles.SuperAdmin, by)
	case err == nil || errors.Is(err, common.ErrNotFound):
		err := s.store.Create(ctx, accounts.CreateInput{
			ID:          BootstrapID,
			DisplayName: BootstrapName,
			Password:    BootstrapPassword,
			Role:        roles.SuperAdmin,
			NeedsReset:  true,
			Action:      audit.ActionBootstrapCreated,
		}, by)
		if err != nil {
			return err
		}
		s.logger.Warn(ctx, "bootstrap super admin created with default password, change it on first login",
			"account", BootstrapID)
		return nil
	default:
		return err
	}
}

// requirePermission resolves the acting principal and checks the
// permission, auditing every refusal. Unknown and inactive principals are
// refused the same way as under-privileged ones.
func (s *Service) requirePermission(ctx context.Context, by accounts.Actor, perm roles.Permission, unauthorizedAction, details string) error {
	actor, err := s.store.Get(ctx, by.ID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.auditor.Record(ctx, by.ID, unauthorizedAction, details+" (unknown principal)", by.IPAddress, by.UserAgent)
			return fmt.Errorf("%w: unknown principal", common.ErrUnauthorized)
		}
		return err
	}
	if !actor.Active {
		s.auditor.Record(ctx, by.ID, unauthorizedAction, details+" (inactive principal)", by.IPAddress, by.UserAgent)
		return fmt.Errorf("%w: inactive principal", common.ErrUnauthorized)
	}
	if !roles.HasPermission(roles.Normalize(actor.Role), perm) {
		s.auditor.Record(ctx, by.ID, unauthorizedAction, details, by.IPAddress, by.UserAgent)
		return fmt.Errorf("%w: %s requires %s", common.ErrUnauthorized, actor.Role, perm)
	}
	return nil
}
