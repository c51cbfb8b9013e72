// Package config handles configuration for the votekeep service,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the credential and session subsystem.
//
// Fields:
//   - DatabaseDSN: SQLite path or postgres:// DSN (pgx).
//   - HashIterations: iteration count for new password digests.
//   - LockoutThreshold / LockoutDuration: consecutive-failure lockout policy.
//   - SessionTTL: lifetime of an issued session token.
//   - SweepInterval: cadence of the expired-session sweeper.
//   - AuditRetentionDays: audit rows older than this are pruned; 0 disables.
//   - StorageTimeout: per-operation deadline on storage calls.
//   - BackupDir: directory for encrypted pre-migration backups.
type Config struct {
	DatabaseDSN        string
	HashIterations     int
	LockoutThreshold   int
	LockoutDuration    time.Duration
	SessionTTL         time.Duration
	SweepInterval      time.Duration
	AuditRetentionDays int
	StorageTimeout     time.Duration
	BackupDir          string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.DatabaseDSN = "votekeep.db"
	c.HashIterations = 10000
	c.LockoutThreshold = 5
	c.LockoutDuration = 15 * time.Minute
	c.SessionTTL = 30 * time.Minute
	c.SweepInterval = 5 * time.Minute
	c.AuditRetentionDays = 90
	c.StorageTimeout = 5 * time.Second
	c.BackupDir = "backups"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
