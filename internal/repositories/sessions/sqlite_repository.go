package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/velmaris/votekeep/internal/common"
	"github.com/velmaris/votekeep/internal/dbx"
	"github.com/velmaris/votekeep/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, s *models.Session) error {
	query := `INSERT INTO sessions (token, account_id, client_address, user_agent,
		issued_at, last_activity_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		s.Token, s.AccountID, s.ClientAddress, s.UserAgent,
		s.IssuedAt, s.LastActivityAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, token string) (*models.Session, error) {
	query := `SELECT token, account_id, client_address, user_agent,
		issued_at, last_activity_at, expires_at
		FROM sessions WHERE token = ?`

	s := &models.Session{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&s.Token, &s.AccountID, &s.ClientAddress, &s.UserAgent,
		&s.IssuedAt, &s.LastActivityAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) Touch(ctx context.Context, token string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET last_activity_at = ? WHERE token = ?`, at, token)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, token string) error {
	// Deleting an already-removed token is not an error.
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
