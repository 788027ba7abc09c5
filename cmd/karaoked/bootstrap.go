package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"karaoke/internal/catalog"
	"karaoke/internal/config"
	"karaoke/internal/daemon"
	"karaoke/internal/logging"
	"karaoke/internal/notifications"
	"karaoke/internal/queue"
	"karaoke/internal/storage"
)

// application owns the long-lived resources behind the daemon.
type application struct {
	services daemon.Services
	store    queue.Store
	closers  []func() error
	once     sync.Once
}

// bootstrap opens storage for cfg.Storage.Driver and wires the catalog,
// notifications and queue engine on top of it.
func bootstrap(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{}
	fail := func(err error) (*application, error) {
		app.Close()
		return nil, err
	}

	var repo catalog.Repository
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		app.store = queue.NewMemoryStore()
		repo = catalog.NewMemoryRepository()
		logger.Warn("memory storage selected, queues are lost on restart")
	default:
		db, err := storage.Open(ctx, cfg)
		if err != nil {
			return fail(fmt.Errorf("open storage: %w", err))
		}
		app.closers = append(app.closers, db.Close)
		app.services.DB = db

		store, err := queue.NewSQLStore(db)
		if err != nil {
			return fail(err)
		}
		app.store = store
		sqlRepo, err := catalog.NewSQLRepository(db)
		if err != nil {
			return fail(err)
		}
		repo = sqlRepo
		logger.Info("storage ready",
			logging.String("driver", string(db.Dialect())),
			logging.String("path", db.Path()),
		)
	}

	songs, err := catalog.NewService(repo, logger)
	if err != nil {
		return fail(err)
	}
	app.services.Catalog = songs

	notifier, err := notifications.NewService(cfg, logger)
	if err != nil {
		return fail(fmt.Errorf("notifications: %w", err))
	}
	app.closers = append([]func() error{notifier.Close}, app.closers...)
	app.services.Notifier = notifier

	engine, err := queue.NewEngine(app.store,
		queue.WithSongLookup(songs),
		queue.WithNotifier(notifier),
		queue.WithLogger(logger),
		queue.WithRenumberGap(cfg.Queue.RenumberGap),
	)
	if err != nil {
		return fail(err)
	}
	app.services.Engine = engine
	return app, nil
}

// Close releases resources in reverse dependency order. Safe to call twice.
func (a *application) Close() error {
	var errs []error
	a.once.Do(func() {
		for _, closeFn := range a.closers {
			if err := closeFn(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
