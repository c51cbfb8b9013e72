package attempts

import (
	"context"
	"fmt"
	"time"

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

func (r *SQLiteRepository) Insert(ctx context.Context, a *models.LoginAttempt) error {
	query := `INSERT INTO login_attempts (id, account_id, ip_address, success, ts)
		VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, a.ID, a.AccountID, a.IPAddress, a.Success, a.Timestamp)
	if err != nil {
		return fmt.Errorf("insert login attempt: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CountFailedSince(ctx context.Context, accountID string, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM login_attempts WHERE account_id = ? AND success = 0 AND ts >= ?`,
		accountID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count failed attempts: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM login_attempts WHERE ts < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune login attempts: %w", err)
	}
	return res.RowsAffected()
}
