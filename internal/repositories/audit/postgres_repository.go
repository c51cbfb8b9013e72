package audit

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

func (r *PostgresRepository) Insert(ctx context.Context, e *models.AuditEntry) error {
	query := `INSERT INTO audit_logs (id, actor_id, action, details, ip_address, user_agent, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.ActorID, e.Action, e.Details, e.IPAddress, e.UserAgent, e.Timestamp)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *PostgresRepository) TrailFor(ctx context.Context, actorID string, limit int) ([]models.AuditEntry, error) {
	query := `SELECT id, actor_id, action, details, ip_address, user_agent, ts
		FROM audit_logs WHERE actor_id = $1 ORDER BY ts DESC, id DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, actorID, limit)
	if err != nil {
		return nil, fmt.Errorf("audit trail: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	query := `SELECT id, actor_id, action, details, ip_address, user_agent, ts
		FROM audit_logs ORDER BY ts DESC, id DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("recent audit: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE ts < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit: %w", err)
	}
	return res.RowsAffected()
}
