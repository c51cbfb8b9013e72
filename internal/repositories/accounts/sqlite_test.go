package accounts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velmaris/votekeep/internal/common"
	"github.com/velmaris/votekeep/internal/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE accounts (
  id TEXT PRIMARY KEY,
  display_name TEXT NOT NULL,
  password_digest TEXT NOT NULL,
  salt TEXT NOT NULL,
  role TEXT NOT NULL,
  active INTEGER NOT NULL DEFAULT 1,
  needs_password_reset INTEGER NOT NULL DEFAULT 0,
  failed_attempts INTEGER NOT NULL DEFAULT 0,
  locked_until TIMESTAMP,
  created_at TIMESTAMP NOT NULL,
  last_login_at TIMESTAMP
);
`)
	require.NoError(t, err)

	return db
}

func testAccount(id string) *models.Account {
	return &models.Account{
		ID:             id,
		DisplayName:    "Account " + id,
		PasswordDigest: "digest",
		Salt:           "salt",
		Role:           "operator",
		Active:         true,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLite_InsertAndGet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, testAccount("a1")))

	got, err := r.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, "Account a1", got.DisplayName)
	assert.True(t, got.Active)
	assert.Nil(t, got.LockedUntil)
	assert.Nil(t, got.LastLoginAt)
	assert.Equal(t, 0, got.FailedAttempts)
}

func TestSQLite_GetUnknown(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLite_ExistsActiveRespectsActiveFlag(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, testAccount("a1")))

	ok, err := r.ExistsActive(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, r.SetActive(ctx, "a1", false))

	ok, err = r.ExistsActive(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLite_IncrementAndResetFailedAttempts(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, testAccount("a1")))

	for i := 1; i <= 3; i++ {
		n, err := r.IncrementFailedAttempts(ctx, "a1")
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}

	require.NoError(t, r.ResetFailedAttempts(ctx, "a1"))

	got, err := r.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.FailedAttempts)
}

func TestSQLite_IncrementUnknownAccount(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.IncrementFailedAttempts(context.Background(), "nobody")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSQLite_LockUnlock(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, testAccount("a1")))

	until := time.Now().UTC().Add(15 * time.Minute).Truncate(time.Second)
	require.NoError(t, r.Lock(ctx, "a1", until))

	got, err := r.Get(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, got.LockedUntil)
	assert.WithinDuration(t, until, *got.LockedUntil, time.Second)

	require.NoError(t, r.Unlock(ctx, "a1"))

	got, err = r.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, got.LockedUntil)
	assert.Equal(t, 0, got.FailedAttempts)
}

func TestSQLite_RecordLoginClearsCountersAndResetFlag(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	a := testAccount("a1")
	a.NeedsPasswordReset = true
	require.NoError(t, r.Insert(ctx, a))

	_, err := r.IncrementFailedAttempts(ctx, "a1")
	require.NoError(t, err)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, r.RecordLogin(ctx, "a1", at, true))

	got, err := r.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.FailedAttempts)
	assert.False(t, got.NeedsPasswordReset)
	require.NotNil(t, got.LastLoginAt)
	assert.WithinDuration(t, at, *got.LastLoginAt, time.Second)
}

func TestSQLite_UpdatePasswordSetsResetFlag(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, testAccount("a1")))
	require.NoError(t, r.UpdatePassword(ctx, "a1", "d2", "s2", true))

	got, err := r.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "d2", got.PasswordDigest)
	assert.Equal(t, "s2", got.Salt)
	assert.True(t, got.NeedsPasswordReset)
}

func TestSQLite_ListActiveSkipsDeactivated(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, testAccount("a1")))
	require.NoError(t, r.Insert(ctx, testAccount("a2")))
	require.NoError(t, r.SetActive(ctx, "a2", false))

	list, err := r.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a1", list[0].ID)
}

func TestSQLite_ReplaceReactivatesRow(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, testAccount("a1")))
	require.NoError(t, r.SetActive(ctx, "a1", false))

	fresh := testAccount("a1")
	fresh.DisplayName = "Recreated"
	fresh.Role = "observer"
	require.NoError(t, r.Replace(ctx, fresh))

	got, err := r.Get(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, got.Active)
	assert.Equal(t, "Recreated", got.DisplayName)
	assert.Equal(t, "observer", got.Role)
}
