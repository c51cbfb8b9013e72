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

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const pgColumns = `id, display_name, password_digest, salt, role, active,
	needs_password_reset, failed_attempts, locked_until, created_at, last_login_at`

func (r *PostgresRepository) Insert(ctx context.Context, a *models.Account) error {
	query := `INSERT INTO accounts (` + pgColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.DisplayName, a.PasswordDigest, a.Salt, a.Role, a.Active,
		a.NeedsPasswordReset, a.FailedAttempts, a.LockedUntil, a.CreatedAt, a.LastLoginAt)
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Replace(ctx context.Context, a *models.Account) error {
	query := `UPDATE accounts SET display_name = $1, password_digest = $2, salt = $3,
		role = $4, active = $5, needs_password_reset = $6, failed_attempts = $7,
		locked_until = $8, created_at = $9, last_login_at = $10
		WHERE id = $11`

	res, err := r.db.ExecContext(ctx, query,
		a.DisplayName, a.PasswordDigest, a.Salt, a.Role, a.Active,
		a.NeedsPasswordReset, a.FailedAttempts, a.LockedUntil, a.CreatedAt, a.LastLoginAt,
		a.ID)
	if err != nil {
		return fmt.Errorf("replace account: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Account, error) {
	query := `SELECT ` + pgColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) ListActive(ctx context.Context) ([]models.Account, error) {
	query := `SELECT ` + pgColumns + ` FROM accounts WHERE active ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	return collectAccounts(rows)
}

func (r *PostgresRepository) ExistsActive(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1 AND active)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("exists account: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, digest, salt string, needsReset bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET password_digest = $1, salt = $2, needs_password_reset = $3 WHERE id = $4`,
		digest, salt, needsReset, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) UpdateRole(ctx context.Context, id, role string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET role = $1 WHERE id = $2`, role, id)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) IncrementFailedAttempts(ctx context.Context, id string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`UPDATE accounts SET failed_attempts = failed_attempts + 1 WHERE id = $1
		 RETURNING failed_attempts`, id).Scan(&count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("increment failed attempts: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) ResetFailedAttempts(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET failed_attempts = 0 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("reset failed attempts: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) Lock(ctx context.Context, id string, until time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET locked_until = $1 WHERE id = $2`, until, id)
	if err != nil {
		return fmt.Errorf("lock account: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) Unlock(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET locked_until = NULL, failed_attempts = 0 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("unlock account: %w", err)
	}
	return requireRow(res)
}

func (r *PostgresRepository) RecordLogin(ctx context.Context, id string, at time.Time, clearReset bool) error {
	query := `UPDATE accounts SET last_login_at = $1, failed_attempts = 0, locked_until = NULL
		WHERE id = $2`
	if clearReset {
		query = `UPDATE accounts SET last_login_at = $1, failed_attempts = 0, locked_until = NULL,
			needs_password_reset = FALSE WHERE id = $2`
	}

	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}
	return requireRow(res)
}
