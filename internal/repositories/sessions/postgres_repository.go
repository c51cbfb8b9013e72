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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Session) error {
	query := `INSERT INTO sessions (token, account_id, client_address, user_agent,
		issued_at, last_activity_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		s.Token, s.AccountID, s.ClientAddress, s.UserAgent,
		s.IssuedAt, s.LastActivityAt, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, token string) (*models.Session, error) {
	query := `SELECT token, account_id, client_address, user_agent,
		issued_at, last_activity_at, expires_at
		FROM sessions WHERE token = $1`

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

func (r *PostgresRepository) Touch(ctx context.Context, token string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET last_activity_at = $1 WHERE token = $2`, at, token)
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

func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
