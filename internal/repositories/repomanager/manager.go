// Package repomanager selects the storage backend from the DSN, opens the
// connection, applies schema migrations, and hands out repositories bound
// to either the shared handle or a transaction.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/velmaris/votekeep/internal/dbx"
	"github.com/velmaris/votekeep/internal/repositories/accounts"
	"github.com/velmaris/votekeep/internal/repositories/attempts"
	"github.com/velmaris/votekeep/internal/repositories/audit"
	"github.com/velmaris/votekeep/internal/repositories/sessions"
)

type Manager interface {
	Accounts(db dbx.DBTX) accounts.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Audit(db dbx.DBTX) audit.Repository
	Attempts(db dbx.DBTX) attempts.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}

// New picks a backend from the DSN: postgres:// and postgresql:// DSNs get
// the pgx-backed manager, everything else is treated as a SQLite path.
func New(dsn string) Manager {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return &PostgresManager{}
	}
	return &SQLiteManager{}
}

// Open connects, verifies the connection with a bounded fibonacci-backoff
// retry, and applies pending migrations.
func Open(ctx context.Context, dsn string) (*sql.DB, Manager, error) {
	m := New(dsn)

	driver := "sqlite"
	if _, ok := m.(*PostgresManager); ok {
		driver = "pgx"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows one writer at a time, and an in-memory database exists
	// per connection; a single pooled connection keeps both consistent.
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, m, nil
}
