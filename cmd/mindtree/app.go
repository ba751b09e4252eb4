package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"mindtree/local-app/internal/config"
	"mindtree/local-app/internal/data"
	"mindtree/local-app/internal/generate"
	"mindtree/local-app/internal/log"
	"mindtree/local-app/internal/model"
	"mindtree/local-app/internal/session"
	"mindtree/local-app/internal/storage"
	"mindtree/local-app/internal/watch"
)

// app holds the components shared by every subcommand
type app struct {
	cfg      *model.Config
	logger   *log.Logger
	store    *storage.Storage
	data     *data.DataManager
	sessions *session.SessionManager
	watcher  *watch.DBWatcher
}

// newApp loads the configuration and initializes logging, storage, generation, data
// and session management, in that order.
func newApp(configPath string) (*app, error) {
	if configPath != "" {
		config.ConfigSetPath(configPath)
	}
	if err := config.ConfigLoad(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := config.ConfigGet()

	logger, err := log.NewLogger(cfg, log.ParseLevel(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	ctx := context.Background()
	logger.Info(ctx, "Application started", log.Fields{"driver": cfg.DatabaseDriver, "database": cfg.DatabaseFile})

	store, err := storage.NewStorage(cfg, logger)
	if err != nil {
		logger.Error(ctx, "Failed to initialize storage", log.Fields{"error": err})
		_ = logger.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	var gen generate.Generator
	client, err := generate.NewAnthropicClient(cfg, logger)
	switch {
	case errors.Is(err, generate.ErrNoAPIKey):
		logger.Warn(ctx, "Generation disabled", log.Fields{"env": cfg.GenerationAPIKeyEnv})
	case err != nil:
		logger.Error(ctx, "Failed to initialize generation client", log.Fields{"error": err})
	default:
		gen = client
	}

	dm, err := data.NewDataManager(store, gen, cfg, logger)
	if err != nil {
		_ = store.Close()
		_ = logger.Close()
		return nil, fmt.Errorf("failed to initialize data manager: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		data:     dm,
		sessions: session.NewSessionManager(dm, logger),
	}, nil
}

// watchDatabase reloads open trees when another process changes the database
func (a *app) watchDatabase(ctx context.Context) error {
	path := filepath.Join(a.cfg.DatabaseDir, a.cfg.DatabaseFile)
	w, err := watch.NewDBWatcher(path, time.Duration(a.cfg.EditDebounceMs)*time.Millisecond, func() {
		a.data.ReloadAll(ctx)
	}, a.logger)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		_ = w.Stop()
		return err
	}
	a.watcher = w
	return nil
}

// close shuts the components down in reverse order of creation
func (a *app) close() {
	ctx := context.Background()
	if a.watcher != nil {
		if err := a.watcher.Stop(); err != nil {
			a.logger.Error(ctx, "Failed to stop database watcher", log.Fields{"error": err})
		}
	}
	a.sessions.Stop(ctx)
	a.data.EventManager.Wait()
	if err := a.store.Close(); err != nil {
		a.logger.Error(ctx, "Failed to close storage", log.Fields{"error": err})
	}
	a.logger.Info(ctx, "Application shutting down", nil)
	if err := a.logger.Close(); err != nil {
		fmt.Printf("Failed to close logger: %v\n", err)
	}
}
