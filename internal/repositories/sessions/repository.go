// Package sessions contains the repository for the sessions table, owned
// exclusively by the session manager.
package sessions

import (
	"context"
	"time"

	"github.com/velmaris/votekeep/internal/models"
)

type Repository interface {
	Create(ctx context.Context, s *models.Session) error
	Get(ctx context.Context, token string) (*models.Session, error)

	// Touch refreshes last_activity_at on successful validation.
	Touch(ctx context.Context, token string, at time.Time) error

	Delete(ctx context.Context, token string) error

	// DeleteExpired bulk-deletes every session with expires_at <= now and
	// returns the number removed. Safe to run concurrently and repeatedly.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
