package attempts

import (
	"context"
	"fmt"
	"time"

	"github.com/velmaris/votekeep/internal/dbx"
	"github.com/velmaris/votekeep/internal/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, a *models.LoginAttempt) error {
	query := `INSERT INTO login_attempts (id, account_id, ip_address, success, ts)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.ExecContext(ctx, query, a.ID, a.AccountID, a.IPAddress, a.Success, a.Timestamp)
	if err != nil {
		return fmt.Errorf("insert login attempt: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CountFailedSince(ctx context.Context, accountID string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM login_attempts WHERE account_id = $1 AND NOT success AND ts >= $2`,
		accountID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count failed attempts: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM login_attempts WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune login attempts: %w", err)
	}
	return res.RowsAffected()
}
