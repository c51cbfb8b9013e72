// Package app wires the credential and session subsystem together:
// storage, services, the bootstrap invariant, and the periodic sweepers.
// It exposes the assembled services to the embedding application and runs
// the background maintenance loops until shutdown.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/velmaris/votekeep/internal/accounts"
	"github.com/velmaris/votekeep/internal/audit"
	"github.com/velmaris/votekeep/internal/auth"
	"github.com/velmaris/votekeep/internal/config"
	"github.com/velmaris/votekeep/internal/hashing"
	"github.com/velmaris/votekeep/internal/logging"
	"github.com/velmaris/votekeep/internal/migration"
	"github.com/velmaris/votekeep/internal/repositories/repomanager"
	"github.com/velmaris/votekeep/internal/sessions"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	Auth     *auth.Service
	Accounts *accounts.Store
	Sessions *sessions.Manager
	Audit    *audit.Service
	Importer *migration.Importer
}

// NewApp opens storage, runs migrations, builds every service, and
// enforces the bootstrap invariant (at least one active super admin).
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, repos, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	hasher := hashing.New(cfg.HashIterations)
	auditor := audit.NewService(db, repos, logger, cfg.StorageTimeout)
	store := accounts.NewStore(db, repos, hasher, auditor, logger, cfg.StorageTimeout)
	authSvc := auth.NewService(store, hasher, auditor, logger, cfg.LockoutThreshold, cfg.LockoutDuration)
	sessionMgr := sessions.NewManager(db, repos, logger, cfg.SessionTTL, cfg.StorageTimeout)
	importer := migration.NewImporter(store, auditor, logger, cfg.BackupDir)

	if err := authSvc.BootstrapDefaultSuperAccount(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap error: %w", err)
	}

	return &App{
		config:   cfg,
		logger:   logger,
		db:       db,
		Auth:     authSvc,
		Accounts: store,
		Sessions: sessionMgr,
		Audit:    auditor,
		Importer: importer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run starts the session sweeper and the audit retention pruner and blocks
// until the context is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting votekeep...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runSessionSweeper(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runAuditPruner(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
	app.logger.Info(ctx, "votekeep stopped")
}
