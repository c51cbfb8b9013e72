package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/velmaris/votekeep/internal/flagx"
	"github.com/velmaris/votekeep/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct which uses time.Duration.
type JsonConfig struct {
	DatabaseDSN        string         `json:"database_dsn"`
	HashIterations     int            `json:"hash_iterations"`
	LockoutThreshold   int            `json:"lockout_threshold"`
	LockoutDuration    timex.Duration `json:"lockout_duration"`
	SessionTTL         timex.Duration `json:"session_ttl"`
	SweepInterval      timex.Duration `json:"sweep_interval"`
	AuditRetentionDays int            `json:"audit_retention_days"`
	StorageTimeout     timex.Duration `json:"storage_timeout"`
	BackupDir          string         `json:"backup_dir"`
}

// parseJson loads configuration values from a JSON file named by the -c or
// -config command-line flags into the provided Config. When neither flag
// is present, no file is loaded. Unset JSON fields keep the defaults
// already in place; an unreadable or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.HashIterations != 0 {
		config.HashIterations = c.HashIterations
	}
	if c.LockoutThreshold != 0 {
		config.LockoutThreshold = c.LockoutThreshold
	}
	if c.LockoutDuration.Duration != 0 {
		config.LockoutDuration = time.Duration(c.LockoutDuration.Duration)
	}
	if c.SessionTTL.Duration != 0 {
		config.SessionTTL = time.Duration(c.SessionTTL.Duration)
	}
	if c.SweepInterval.Duration != 0 {
		config.SweepInterval = time.Duration(c.SweepInterval.Duration)
	}
	if c.AuditRetentionDays != 0 {
		config.AuditRetentionDays = c.AuditRetentionDays
	}
	if c.StorageTimeout.Duration != 0 {
		config.StorageTimeout = time.Duration(c.StorageTimeout.Duration)
	}
	if c.BackupDir != "" {
		config.BackupDir = c.BackupDir
	}
}
