package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/velmaris/votekeep/internal/dbx"
	pgmigrations "github.com/velmaris/votekeep/internal/migrations/postgres"
	"github.com/velmaris/votekeep/internal/repositories/accounts"
	"github.com/velmaris/votekeep/internal/repositories/attempts"
	"github.com/velmaris/votekeep/internal/repositories/audit"
	"github.com/velmaris/votekeep/internal/repositories/sessions"
)

type PostgresManager struct{}

func (m *PostgresManager) Accounts(db dbx.DBTX) accounts.Repository {
	return accounts.NewPostgresRepository(db)
}

func (m *PostgresManager) Sessions(db dbx.DBTX) sessions.Repository {
	return sessions.NewPostgresRepository(db)
}

func (m *PostgresManager) Audit(db dbx.DBTX) audit.Repository {
	return audit.NewPostgresRepository(db)
}

func (m *PostgresManager) Attempts(db dbx.DBTX) attempts.Repository {
	return attempts.NewPostgresRepository(db)
}

func (m *PostgresManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(pgmigrations.Migrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(ctx, db, ".")
}
