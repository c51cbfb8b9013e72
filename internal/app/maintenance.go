package app

import (
	"context"
	"time"
)

// runSessionSweeper bulk-deletes expired sessions on the configured
// cadence until the context ends.
func (app *App) runSessionSweeper(ctx context.Context) {
	ticker := time.NewTicker(app.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.Sessions.SweepExpired(ctx)
			if err != nil {
				app.logger.Error(ctx, "session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "expired sessions removed", "count", n)
			}
		}
	}
}

// runAuditPruner trims audit entries and login attempts past the retention
// window once a day. A retention of 0 disables pruning.
func (app *App) runAuditPruner(ctx context.Context) {
	if app.config.AuditRetentionDays <= 0 {
		return
	}

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.Audit.PruneOlderThan(ctx, app.config.AuditRetentionDays)
			if err != nil {
				app.logger.Error(ctx, "audit prune failed", "error", err)
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "aged audit rows removed", "count", n)
			}
		}
	}
}
