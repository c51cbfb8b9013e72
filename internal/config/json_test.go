package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_LoadsFromFlagPath(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"database_dsn":         "postgres://vk:vk@db:5432/votekeep",
		"hash_iterations":      20000,
		"lockout_threshold":    3,
		"lockout_duration":     "10m",
		"session_ttl":          "1h",
		"sweep_interval":       "2m",
		"audit_retention_days": 30,
		"storage_timeout":      "3s",
		"backup_dir":           "/var/backups/votekeep",
	})
	os.Args = []string{"testbin", "-config", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "postgres://vk:vk@db:5432/votekeep", cfg.DatabaseDSN)
	assert.Equal(t, 20000, cfg.HashIterations)
	assert.Equal(t, 3, cfg.LockoutThreshold)
	assert.Equal(t, 10*time.Minute, cfg.LockoutDuration)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 2*time.Minute, cfg.SweepInterval)
	assert.Equal(t, 30, cfg.AuditRetentionDays)
	assert.Equal(t, 3*time.Second, cfg.StorageTimeout)
	assert.Equal(t, "/var/backups/votekeep", cfg.BackupDir)
}

func Test_parseJson_PartialFileKeepsDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"lockout_threshold": 7,
	})
	os.Args = []string{"testbin", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, 7, cfg.LockoutThreshold)
	assert.Equal(t, "votekeep.db", cfg.DatabaseDSN)
	assert.Equal(t, 15*time.Minute, cfg.LockoutDuration)
}

func Test_parseJson_NoFlagNoop(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "votekeep.db", cfg.DatabaseDSN)
}
