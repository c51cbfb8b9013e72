// Package accounts contains the repository for the accounts table. The
// credential store service owns all access to it; no other component
// touches account rows directly.
package accounts

import (
	"context"
	"time"

	"github.com/velmaris/votekeep/internal/models"
)

type Repository interface {
	// Insert adds a new account row. The id must not exist yet.
	Insert(ctx context.Context, a *models.Account) error

	// Replace overwrites every mutable column of an existing row. Used to
	// reactivate a logically deleted id.
	Replace(ctx context.Context, a *models.Account) error

	// Get returns the row regardless of its active flag.
	Get(ctx context.Context, id string) (*models.Account, error)

	ListActive(ctx context.Context) ([]models.Account, error)
	ExistsActive(ctx context.Context, id string) (bool, error)

	UpdatePassword(ctx context.Context, id, digest, salt string, needsReset bool) error
	SetActive(ctx context.Context, id string, active bool) error
	UpdateRole(ctx context.Context, id, role string) error

	// IncrementFailedAttempts returns the counter value after the increment.
	IncrementFailedAttempts(ctx context.Context, id string) (int, error)
	ResetFailedAttempts(ctx context.Context, id string) error

	Lock(ctx context.Context, id string, until time.Time) error
	Unlock(ctx context.Context, id string) error

	// RecordLogin stamps last_login_at, zeroes the failure counter, and
	// optionally clears the forced-reset flag.
	RecordLogin(ctx context.Context, id string, at time.Time, clearReset bool) error
}
