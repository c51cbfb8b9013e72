package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/velmaris/votekeep/internal/common"
	"github.com/velmaris/votekeep/internal/dbx"
	"github.com/velmaris/votekeep/internal/logging"
	"github.com/velmaris/votekeep/internal/models"
	"github.com/velmaris/votekeep/internal/repositories/repomanager"
)

type Service struct {
	db      *sql.DB
	repos   repomanager.Manager
	logger  logging.Logger
	timeout time.Duration

	now func() time.Time
}

func NewService(db *sql.DB, repos repomanager.Manager, logger logging.Logger, timeout time.Duration) *Service {
	return &Service{
		db:      db,
		repos:   repos,
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
	}
}

// NewEntry builds an entry with a fresh id and the current UTC timestamp.
func (s *Service) NewEntry(actorID, action, details, ip, userAgent string) *models.AuditEntry {
	if actorID == "" {
		actorID = common.SystemActor
	}
	return &models.AuditEntry{
		ID:        uuid.NewString(),
		ActorID:   actorID,
		Action:    action,
		Details:   details,
		IPAddress: ip,
		UserAgent: userAgent,
		Timestamp: s.now().UTC(),
	}
}

// Record appends one audit entry. It never returns an error: audit logging
// must not abort the caller's primary operation, so failures are written to
// the operational log and swallowed.
func (s *Service) Record(ctx context.Context, actorID, action, details, ip, userAgent string) {
	e := s.NewEntry(actorID, action, details, ip, userAgent)

	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		return s.repos.Audit(s.db).Insert(ctx, e)
	})
	if err != nil {
		s.logger.Error(ctx, "audit write failed",
			"action", action, "actor", e.ActorID, "error", err)
	}
}

// RecordIn appends an entry through the given handle, which may be a
// transaction. Unlike Record it propagates the error, so a compound
// mutation (account write + audit entry) commits or rolls back as one.
func (s *Service) RecordIn(ctx context.Context, db dbx.DBTX, e *models.AuditEntry) error {
	return s.repos.Audit(db).Insert(ctx, e)
}

// RecordAttempt appends one forensic login-attempt row. Best-effort like
// Record.
func (s *Service) RecordAttempt(ctx context.Context, accountID, ip string, success bool) {
	a := &models.LoginAttempt{
		ID:        uuid.NewString(),
		AccountID: accountID,
		IPAddress: ip,
		Success:   success,
		Timestamp: s.now().UTC(),
	}

	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		return s.repos.Attempts(s.db).Insert(ctx, a)
	})
	if err != nil {
		s.logger.Error(ctx, "login attempt write failed",
			"account", accountID, "error", err)
	}
}

// TrailFor returns the most recent entries for one actor, newest first.
func (s *Service) TrailFor(ctx context.Context, accountID string, limit int) ([]models.AuditEntry, error) {
	var result []models.AuditEntry
	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		var err error
		result, err = s.repos.Audit(s.db).TrailFor(ctx, accountID, normalizeLimit(limit))
		return err
	})
	return result, err
}

// Recent returns the most recent entries across all actors, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	var result []models.AuditEntry
	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		var err error
		result, err = s.repos.Audit(s.db).Recent(ctx, normalizeLimit(limit))
		return err
	})
	return result, err
}

// FailedAttemptCountSince counts failed attempts for an account at or
// after the given instant.
func (s *Service) FailedAttemptCountSince(ctx context.Context, accountID string, since time.Time) (int, error) {
	var n int
	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		var err error
		n, err = s.repos.Attempts(s.db).CountFailedSince(ctx, accountID, since)
		return err
	})
	return n, err
}

// PruneOlderThan trims audit entries and login attempts older than the
// given number of days and returns the total rows removed. Safe to run on
// a periodic schedule concurrently with live logins.
func (s *Service) PruneOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, nil
	}
	cutoff := s.now().UTC().AddDate(0, 0, -days)

	var total int64
	err := dbx.WithTimeout(ctx, s.timeout, func(ctx context.Context) error {
		n, err := s.repos.Audit(s.db).DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return err
		}
		total += n

		n, err = s.repos.Attempts(s.db).DeleteOlderThan(ctx, cutoff)
		if err != nil {
			return err
		}
		total += n
		return nil
	})
	return total, err
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return 100
	}
	return limit
}
