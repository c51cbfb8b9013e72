// Package audit contains the repository for the append-only audit_logs
// table. Rows are never mutated; deletion happens only through the
// retention trim.
package audit

import (
	"context"
	"time"

	"github.com/velmaris/votekeep/internal/models"
)

type Repository interface {
	Insert(ctx context.Context, e *models.AuditEntry) error

	// TrailFor returns the most recent entries for one actor, newest first.
	TrailFor(ctx context.Context, actorID string, limit int) ([]models.AuditEntry, error)

	// Recent returns the most recent entries across all actors, newest first.
	Recent(ctx context.Context, limit int) ([]models.AuditEntry, error)

	// DeleteOlderThan removes entries with a timestamp before cutoff and
	// returns the number removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
