// Package attempts contains the repository for the append-only
// login_attempts table, used purely for forensic counting.
package attempts

import (
	"context"
	"time"

	"github.com/velmaris/votekeep/internal/models"
)

type Repository interface {
	Insert(ctx context.Context, a *models.LoginAttempt) error

	// CountFailedSince counts failed attempts for an account at or after
	// the given instant.
	CountFailedSince(ctx context.Context, accountID string, since time.Time) (int, error)

	// DeleteOlderThan trims attempts on the same retention schedule as the
	// audit trail.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
