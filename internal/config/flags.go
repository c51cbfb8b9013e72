package config

import (
	"flag"
	"os"
	"time"

	"github.com/velmaris/votekeep/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   database DSN (SQLite path or postgres:// URL)
//	-i int      hash iterations for new password digests
//	-l int      lockout threshold (consecutive failures)
//	-m int      lockout duration, minutes
//	-t int      session TTL, minutes
//	-w int      expired-session sweep interval, minutes
//	-r int      audit retention, days (0 disables pruning)
//	-b string   backup directory for migration imports
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-i", "-l", "-m", "-t", "-w", "-r", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.HashIterations, "i", config.HashIterations, "hash iterations")
	fs.IntVar(&config.LockoutThreshold, "l", config.LockoutThreshold, "lockout threshold")

	lockoutMinutes := fs.Int("m", int(config.LockoutDuration.Minutes()), "lockout duration (in minutes)")
	sessionMinutes := fs.Int("t", int(config.SessionTTL.Minutes()), "session ttl (in minutes)")
	sweepMinutes := fs.Int("w", int(config.SweepInterval.Minutes()), "sweep interval (in minutes)")

	fs.IntVar(&config.AuditRetentionDays, "r", config.AuditRetentionDays, "audit retention (in days)")
	fs.StringVar(&config.BackupDir, "b", config.BackupDir, "backup directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.LockoutDuration = time.Duration(*lockoutMinutes) * time.Minute
	config.SessionTTL = time.Duration(*sessionMinutes) * time.Minute
	config.SweepInterval = time.Duration(*sweepMinutes) * time.Minute
}
