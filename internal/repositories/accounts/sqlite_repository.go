package accounts

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

const sqliteColumns = `id, display_name, password_digest, salt, role, active,
	needs_password_reset, failed_attempts, locked_until, created_at, last_login_at`

func (r *SQLiteRepository) Insert(ctx context.Context, a *models.Account) error {
	query := `INSERT INTO accounts (` + sqliteColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.DisplayName, a.PasswordDigest, a.Salt, a.Role, a.Active,
		a.NeedsPasswordReset, a.FailedAttempts, a.LockedUntil, a.CreatedAt, a.LastLoginAt)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Replace(ctx context.Context, a *models.Account) error {
	query := `UPDATE accounts SET display_name = ?, password_digest = ?, salt = ?,
		role = ?, active = ?, needs_password_reset = ?, failed_attempts = ?,
		locked_until = ?, created_at = ?, last_login_at = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		a.DisplayName, a.PasswordDigest, a.Salt, a.Role, a.Active,
		a.NeedsPasswordReset, a.FailedAttempts, a.LockedUntil, a.CreatedAt, a.LastLoginAt,
		a.ID)
	if err != nil {
		return fmt.Errorf("replace account: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + sqliteColumns + ` FROM accounts WHERE id = ?`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteRepository) ListActive(ctx context.Context) ([]models.Account, error) {
	query := `SELECT ` + sqliteColumns + ` FROM accounts WHERE active = 1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

func (r *SQLiteRepository) ExistsActive(ctx context.Context, id string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE id = ? AND active = 1`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("exists account: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) UpdatePassword(ctx context.Context, id, digest, salt string, needsReset bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET password_digest = ?, salt = ?, needs_password_reset = ? WHERE id = ?`,
		digest, salt, needsReset, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) UpdateRole(ctx context.Context, id, role string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET role = ? WHERE id = ?`, role, id)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) IncrementFailedAttempts(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`UPDATE accounts SET failed_attempts = failed_attempts + 1 WHERE id = ?
		 RETURNING failed_attempts`, id).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("increment failed attempts: %w", err)
	}
	return count, nil
}

func (r *SQLiteRepository) ResetFailedAttempts(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET failed_attempts = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("reset failed attempts: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) Lock(ctx context.Context, id string, until time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET locked_until = ? WHERE id = ?`, until, id)
	if err != nil {
		return fmt.Errorf("lock account: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) Unlock(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET locked_until = NULL, failed_attempts = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("unlock account: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) RecordLogin(ctx context.Context, id string, at time.Time, clearReset bool) error {
	query := `UPDATE accounts SET last_login_at = ?, failed_attempts = 0, locked_until = NULL
		WHERE id = ?`
	if clearReset {
		query = `UPDATE accounts SET last_login_at = ?, failed_attempts = 0, locked_until = NULL,
			needs_password_reset = 0 WHERE id = ?`
	}

	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*models.Account, error) {
	a := &models.Account{}
	var lockedUntil, lastLogin sql.NullTime

	err := row.Scan(&a.ID, &a.DisplayName, &a.PasswordDigest, &a.Salt, &a.Role,
		&a.Active, &a.NeedsPasswordReset, &a.FailedAttempts, &lockedUntil,
		&a.CreatedAt, &lastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("scan account: %w", err)
	}

	if lockedUntil.Valid {
		t := lockedUntil.Time
		a.LockedUntil = &t
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		a.LastLoginAt = &t
	}
	return a, nil
}

func collectAccounts(rows *sql.Rows) ([]models.Account, error) {
	var result []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
