// Package common defines shared constants and sentinel errors used across
// the votekeep security core. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors, surfaced to callers as recoverable input problems.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict signals a duplicate active account id on create.
	ErrConflict = errors.New("already exists")

	// Authentication / authorization errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")

	// ErrLocked signals an account in its lockout window. Authentication
	// intentionally distinguishes this case from ErrInvalidCredentials.
	ErrLocked = errors.New("account locked")

	// ErrStorageUnavailable wraps unreachable/corrupted durable storage.
	// Authentication treats it as a failure (fail-closed).
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrEmptyPassword is the "not hashed" signal returned by the hasher
	// for empty input; callers treat it as invalid input, not a mismatch.
	ErrEmptyPassword = errors.New("empty password")
)
