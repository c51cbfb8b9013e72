// Package sessions issues, validates, and revokes the opaque session
// tokens returned on successful login. Tokens are 256-bit random hex
// strings; nothing about the holder can be decoded from one.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/velmaris/votekeep/internal/common"
	"github.com/velmaris/votekeep/internal/dbx"
	"github.com/velmaris/votekeep/internal/logging"
	"github.com/velmaris/votekeep/internal/models"
	"github.com/velmaris/votekeep/internal/repositories/repomanager"
)

const tokenBytes = 32

type Manager struct {
	db      *sql.DB
	repos   repomanager.Manager
	logger  logging.Logger
	ttl     time.Duration
	timeout time.Duration

	now func() time.Time
}

func NewManager(db *sql.DB, repos repomanager.Manager, logger logging.Logger,
	ttl, timeout time.Duration) *Manager {
	return &Manager{
		db:      db,
		repos:   repos,
		logger:  logger,
		ttl:     ttl,
		timeout: timeout,
		now:     time.Now,
	}
}

// Create issues a fresh session bound to the client address and returns
// its token.
func (m *Manager) Create(ctx context.Context, accountID, clientAddr, userAgent string) (string, error) {
	token, err := common.MakeRandHexString(tokenBytes)
	if err != nil {
		return "", err
	}

	now := m.now().UTC()
	s := &models.Session{
		Token:          token,
		AccountID:      accountID,
		ClientAddress:  clientAddr,
		UserAgent:      userAgent,
		IssuedAt:       now,
		LastActivityAt: now,
		ExpiresAt:      now.Add(m.ttl),
	}

	err = dbx.WithTimeout(ctx, m.timeout, func(ctx context.Context) error {
		return m.repos.Sessions(m.db).Create(ctx, s)
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Validate reports whether the token names a live session presented from
// the address it was issued to. A valid check refreshes the activity
// stamp; an expired token is deleted as a side effect. Unknown tokens,
// address mismatches, and storage failures all report false.
func (m *Manager) Validate(ctx context.Context, token, clientAddr string) bool {
	var s *models.Session
	err := dbx.WithTimeout(ctx, m.timeout, func(ctx context.Context) error {
		var err error
		s, err = m.repos.Sessions(m.db).Get(ctx, token)
		return err
	})
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			m.logger.Error(ctx, "session lookup failed", "error", err)
		}
		return false
	}

	now := m.now().UTC()
	if s.Expired(now) {
		m.Invalidate(ctx, token)
		return false
	}
	if s.ClientAddress != clientAddr {
		m.logger.Warn(ctx, "session presented from wrong address",
			"account", s.AccountID, "issued_to", s.ClientAddress, "presented_from", clientAddr)
		return false
	}

	err = dbx.WithTimeout(ctx, m.timeout, func(ctx context.Context) error {
		return m.repos.Sessions(m.db).Touch(ctx, token, now)
	})
	if err != nil {
		m.logger.Error(ctx, "session touch failed", "error", err)
	}
	return true
}

// Resolve returns the session behind a token without validating address
// binding. Callers that need the account id after Validate use it.
func (m *Manager) Resolve(ctx context.Context, token string) (*models.Session, error) {
	var s *models.Session
	err := dbx.WithTimeout(ctx, m.timeout, func(ctx context.Context) error {
		var err error
		s, err = m.repos.Sessions(m.db).Get(ctx, token)
		return err
	})
	return s, err
}

// Invalidate removes the session. Unknown tokens are a no-op.
func (m *Manager) Invalidate(ctx context.Context, token string) {
	err := dbx.WithTimeout(ctx, m.timeout, func(ctx context.Context) error {
		return m.repos.Sessions(m.db).Delete(ctx, token)
	})
	if err != nil {
		m.logger.Error(ctx, "session delete failed", "error", err)
	}
}

// SweepExpired removes every expired session and returns the count.
// Idempotent; meant to run on a periodic ticker.
func (m *Manager) SweepExpired(ctx context.Context) (int64, error) {
	var n int64
	err := dbx.WithTimeout(ctx, m.timeout, func(ctx context.Context) error {
		var err error
		n, err = m.repos.Sessions(m.db).DeleteExpired(ctx, m.now().UTC())
		return err
	})
	return n, err
}
