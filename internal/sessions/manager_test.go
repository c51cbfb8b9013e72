package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velmaris/votekeep/internal/common"
	"github.com/velmaris/votekeep/internal/logging"
	"github.com/velmaris/votekeep/internal/repositories/repomanager"
)

func setupManager(t *testing.T, ttl time.Duration) *Manager {
	t.Helper()
	db, repos, err := repomanager.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := logging.NewDefault()
	return NewManager(db, repos, logger, ttl, 5*time.Second)
}

func TestCreateAndValidate(t *testing.T) {
	m := setupManager(t, 30*time.Minute)
	ctx := context.Background()

	token, err := m.Create(ctx, "a1", "10.0.0.1", "ui/1.0")
	require.NoError(t, err)
	assert.Len(t, token, 64)

	assert.True(t, m.Validate(ctx, token, "10.0.0.1"))

	s, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "a1", s.AccountID)
}

func TestTokensAreUnique(t *testing.T) {
	m := setupManager(t, 30*time.Minute)
	ctx := context.Background()

	t1, err := m.Create(ctx, "a1", "10.0.0.1", "")
	require.NoError(t, err)
	t2, err := m.Create(ctx, "a1", "10.0.0.1", "")
	require.NoError(t, err)
	assert.NotEqual(t, t1, t2)
}

func TestValidate_UnknownToken(t *testing.T) {
	m := setupManager(t, 30*time.Minute)
	assert.False(t, m.Validate(context.Background(), "no-such-token", "10.0.0.1"))
}

func TestValidate_AddressMismatch(t *testing.T) {
	m := setupManager(t, 30*time.Minute)
	ctx := context.Background()

	token, err := m.Create(ctx, "a1", "10.0.0.1", "")
	require.NoError(t, err)

	assert.False(t, m.Validate(ctx, token, "10.0.0.99"))
	// the session itself survives a mismatch
	assert.True(t, m.Validate(ctx, token, "10.0.0.1"))
}

func TestValidate_ExpiredTokenIsDeleted(t *testing.T) {
	m := setupManager(t, 30*time.Minute)
	ctx := context.Background()

	token, err := m.Create(ctx, "a1", "10.0.0.1", "")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
	assert.False(t, m.Validate(ctx, token, "10.0.0.1"))

	// deleted as a side effect, gone even at the original clock
	m.now = time.Now
	_, err = m.Resolve(ctx, token)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestValidate_RefreshesActivity(t *testing.T) {
	m := setupManager(t, 30*time.Minute)
	ctx := context.Background()

	token, err := m.Create(ctx, "a1", "10.0.0.1", "")
	require.NoError(t, err)

	before, err := m.Resolve(ctx, token)
	require.NoError(t, err)

	later := time.Now().Add(5 * time.Minute)
	m.now = func() time.Time { return later }
	require.True(t, m.Validate(ctx, token, "10.0.0.1"))

	after, err := m.Resolve(ctx, token)
	require.NoError(t, err)
	assert.True(t, after.LastActivityAt.After(before.LastActivityAt))
}

func TestInvalidate_Idempotent(t *testing.T) {
	m := setupManager(t, 30*time.Minute)
	ctx := context.Background()

	token, err := m.Create(ctx, "a1", "10.0.0.1", "")
	require.NoError(t, err)

	m.Invalidate(ctx, token)
	assert.False(t, m.Validate(ctx, token, "10.0.0.1"))
	m.Invalidate(ctx, token) // second delete is a no-op
}

func TestSweepExpired(t *testing.T) {
	m := setupManager(t, time.Minute)
	ctx := context.Background()

	_, err := m.Create(ctx, "a1", "10.0.0.1", "")
	require.NoError(t, err)
	_, err = m.Create(ctx, "a2", "10.0.0.2", "")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	n, err := m.SweepExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = m.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
