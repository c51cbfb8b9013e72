package repomanager

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/velmaris/votekeep/internal/dbx"
	sqlitemigrations "github.com/velmaris/votekeep/internal/migrations/sqlite"
	"github.com/velmaris/votekeep/internal/repositories/accounts"
	"github.com/velmaris/votekeep/internal/repositories/attempts"
	"github.com/velmaris/votekeep/internal/repositories/audit"
	"github.com/velmaris/votekeep/internal/repositories/sessions"
)

type SQLiteManager struct{}

func (m *SQLiteManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewSQLiteRepository(db)
}

func (m *SQLiteManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewSQLiteRepository(db)
}

func (m *SQLiteManager) Audit(db dbx.DBTX) audit.Repository {
	return audit.NewSQLiteRepository(db)
}

func (m *SQLiteManager) Attempts(db dbx.DBTX) attempts.Repository {
	return attempts.NewSQLiteRepository(db)
}

func (m *SQLiteManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(sqlitemigrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}
