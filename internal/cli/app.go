package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/backend"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/database"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/database/repositories"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/guard"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/metrics"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/session"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/internal/store"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/pkg/config"
	"github.com/sam-thanacare/thanacare-frontend-firefly-sub001/pkg/logger"
)

// app is the wired session core shared by every command.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *sql.DB
	store    *store.Store
	events   *repositories.SessionEventRepository
	backend  *backend.Client
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	manager  *session.Manager
	guard    *guard.Guard
}

type appOptions struct {
	configPath string
	envFile    string
	// quiet keeps log output off the terminal unless it is a warning.
	quiet bool
}

// loadEnv reads a dotenv file into the environment. A missing default
// .env is not an error; a missing explicitly named file is.
func loadEnv(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// newApp wires config, logging, storage, backend client, metrics, the
// session manager and the guard, then rehydrates the session.
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	if err := loadEnv(opts.envFile); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if opts.quiet && level != "debug" {
		level = "warn"
	}
	log := logger.New(logger.Options{
		Level:      level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
		Quiet:      opts.quiet,
	})

	a := &app{cfg: cfg, log: log, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	a.store = a.openStore(ctx)

	a.backend, err = backend.New(cfg.Backend.BaseURL, backend.Options{Timeout: cfg.Backend.Timeout, Logger: log})
	if err != nil {
		a.Close()
		return nil, err
	}

	sessionOpts := session.Options{
		Store:           a.store,
		Authenticator:   a.backend,
		Logger:          log,
		Metrics:         a.metrics,
		SweepInterval:   cfg.Session.SweepInterval,
		ExpiryThreshold: cfg.Session.ExpiryThreshold,
	}
	if a.events != nil {
		sessionOpts.Events = a.events
	}
	a.manager = session.NewManager(sessionOpts)

	a.guard = guard.New(a.manager, guard.Options{
		Routes:        guard.RoutesFromConfig(cfg.Routes),
		RetryAttempts: cfg.Session.GuardRetryAttempts,
		RetryDelay:    cfg.Session.GuardRetryDelay,
		Metrics:       a.metrics,
	})

	if a.manager.Rehydrate(ctx) {
		log.Debug("Session restored from storage")
	}

	return a, nil
}

// openStore connects the durable tier. Any storage failure degrades to an
// unavailable store instead of failing the command.
func (a *app) openStore(ctx context.Context) *store.Store {
	cfg := a.cfg
	if !cfg.Storage.Enabled {
		a.log.Info("Durable storage disabled; sessions last for this process only")
		return store.New(cfg.Storage.TokenKey, store.NoopBackend{}, store.NewMemoryBackend(), a.log)
	}

	db, driver, err := database.NewConnection(ctx, &cfg.Storage)
	if err != nil {
		a.log.Warning("Durable storage unavailable", "type", cfg.Storage.Type, "error", err.Error())
		return store.Unavailable()
	}
	if err := database.RunMigrations(ctx, db, driver); err != nil {
		a.log.Warning("Durable storage migration failed", "error", err.Error())
		db.Close()
		return store.Unavailable()
	}

	a.db = db
	a.events = repositories.NewSessionEventRepository(db, driver)
	return store.New(cfg.Storage.TokenKey, repositories.NewEntryRepository(db, driver), store.NewMemoryBackend(), a.log)
}

// Close stops background work and releases storage. The session itself is
// left in storage.
func (a *app) Close() {
	if a.manager != nil {
		a.manager.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warning("Failed to close storage", "error", err.Error())
		}
	}
	_ = a.log.Close()
}
