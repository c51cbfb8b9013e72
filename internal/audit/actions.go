// Package audit implements the append-only audit trail of security events
// and the forensic login-attempt log. Recording is best-effort with respect
// to the caller's primary operation: a failed write is reported to the
// operational logger and swallowed.
package audit

// Closed vocabulary of audit actions.
const (
	ActionLoginSuccess = "LOGIN_SUCCESS"
	ActionLoginFailed  = "LOGIN_FAILED"
	ActionLoginBlocked = "LOGIN_BLOCKED"

	ActionAccountCreated     = "ADMIN_CREATED"
	ActionAccountDeactivated = "ACCOUNT_DEACTIVATED"
	ActionAccountUnlocked    = "ACCOUNT_UNLOCKED"
	ActionAccountMigrated    = "ADMIN_MIGRATED"
	ActionBootstrapCreated   = "BOOTSTRAP_CREATED"

	ActionPasswordChanged = "PASSWORD_CHANGED"
	ActionPasswordReset   = "PASSWORD_RESET"
	ActionRoleReassigned  = "ROLE_REASSIGNED"

	ActionMigrationSummary = "MIGRATION_SUMMARY"
	ActionStorageError     = "STORAGE_ERROR"

	ActionUnauthorizedAccountCreate = "UNAUTHORIZED_ACCOUNT_CREATE"
	ActionUnauthorizedAccountDelete = "UNAUTHORIZED_ACCOUNT_DELETE"
	ActionUnauthorizedRoleChange    = "UNAUTHORIZED_ROLE_CHANGE"
	ActionUnauthorizedPasswordReset = "UNAUTHORIZED_PASSWORD_RESET"
	ActionUnauthorizedAccountList   = "UNAUTHORIZED_ACCOUNT_LIST"
	ActionUnauthorizedAuditView     = "UNAUTHORIZED_AUDIT_VIEW"
	ActionUnauthorizedUnlock        = "UNAUTHORIZED_UNLOCK"
)
