package audit

import (
	"context"
	"database/sql"
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

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.AuditEntry) error {
	query := `INSERT INTO audit_logs (id, actor_id, action, details, ip_address, user_agent, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.ActorID, e.Action, e.Details, e.IPAddress, e.UserAgent, e.Timestamp)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) TrailFor(ctx context.Context, actorID string, limit int) ([]models.AuditEntry, error) {
	query := `SELECT id, actor_id, action, details, ip_address, user_agent, ts
		FROM audit_logs WHERE actor_id = ? ORDER BY ts DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, actorID, limit)
	if err != nil {
		return nil, fmt.Errorf("audit trail: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	query := `SELECT id, actor_id, action, details, ip_address, user_agent, ts
		FROM audit_logs ORDER BY ts DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent audit: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (r *SQLiteRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE ts < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit: %w", err)
	}
	return res.RowsAffected()
}

func collectEntries(rows *sql.Rows) ([]models.AuditEntry, error) {
	var result []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.Details,
			&e.IPAddress, &e.UserAgent, &e.Timestamp); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
