package models

import "time"

// AuditEntry is one append-only record of a security-relevant event.
// Entries are never mutated; deletion happens only through the explicit
// retention trim.
type AuditEntry struct {
	ID string

	// ActorID is an account id or the literal "system".
	ActorID string

	// Action is one of the closed vocabulary in the audit package.
	Action string

	Details   string
	IPAddress string
	UserAgent string
	Timestamp time.Time
}

// LoginAttempt is an append-only forensic record, distinct from the audit
// trail and used purely for counting.
type LoginAttempt struct {
	ID        string
	AccountID string
	IPAddress string
	Success   bool
	Timestamp time.Time
}
