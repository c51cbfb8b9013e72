// Package models defines the data model of the votekeep security core:
// accounts, sessions, audit entries, and login attempts. Each entity is
// owned by exactly one repository; cross-component reads go through the
// owning service's API.
package models

import "time"

// Account is one row per principal. Deactivation is a logical delete:
// rows are never physically removed. Only rows with Active=true take part
// in authentication and permission checks.
type Account struct {
	// ID is unique and immutable; 3–50 chars of [A-Za-z0-9_.-].
	ID string

	// DisplayName is 2–100 chars.
	DisplayName string

	// PasswordDigest and Salt are opaque encoded strings. The digest is
	// never logged in full.
	PasswordDigest string
	Salt           string

	// Role is one of the canonical roles; normalized on every write.
	Role string

	Active             bool
	NeedsPasswordReset bool

	// FailedAttempts is reset to 0 on every successful authentication and
	// whenever an expired lock is cleared.
	FailedAttempts int

	// LockedUntil is nil when the account is not locked.
	LockedUntil *time.Time

	CreatedAt   time.Time
	LastLoginAt *time.Time
}

// Locked reports whether the account is inside its lockout window at now.
func (a *Account) Locked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}
