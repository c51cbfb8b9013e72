package repomanager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsBackendFromDSN(t *testing.T) {
	assert.IsType(t, &PostgresManager{}, New("postgres://u:p@localhost:5432/votekeep"))
	assert.IsType(t, &PostgresManager{}, New("postgresql://u:p@localhost:5432/votekeep"))
	assert.IsType(t, &SQLiteManager{}, New("file:votekeep.db"))
	assert.IsType(t, &SQLiteManager{}, New(":memory:"))
}

func TestOpen_SQLiteInMemoryMigrates(t *testing.T) {
	db, m, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	assert.IsType(t, &SQLiteManager{}, m)

	// migrations created the four tables
	for _, table := range []string{"accounts", "sessions", "audit_logs", "login_attempts"} {
		var name string
		err := db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
	}
}
