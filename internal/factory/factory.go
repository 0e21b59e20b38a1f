package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/samuel/internal/config"
	"github.com/mcoot/samuel/internal/dependencies/clock"
	"github.com/mcoot/samuel/internal/model"
	"github.com/mcoot/samuel/internal/services/achievements"
	"github.com/mcoot/samuel/internal/services/inventory"
	"github.com/mcoot/samuel/internal/steamapi"
	"github.com/mcoot/samuel/internal/steamworks"
	"github.com/mcoot/samuel/internal/storage"
	boltstorage "github.com/mcoot/samuel/internal/storage/bolt"
	filestorage "github.com/mcoot/samuel/internal/storage/file"
	redisstorage "github.com/mcoot/samuel/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	Config *config.Config
	Logger *slog.Logger

	// Storage
	Store storage.SnapshotStore

	// External dependencies
	Clock clock.Clock

	// Services
	Inventory    *inventory.Service
	Achievements *achievements.Service

	closers []io.Closer
}

// New creates a new application with all dependencies wired
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Use no-op logger if not provided
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	store, err := newStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	fetcher := steamapi.NewClient(cfg.SteamAPIURL, cfg.FetchTimeout, logger)
	runtime := steamworks.New(steamworks.Config{LibraryPath: cfg.SteamworksLib}, logger)

	app := newWithDependencies(cfg, store, fetcher, runtime, clock.New(), logger)
	app.closers = append(app.closers, runtime)
	return app, nil
}

// newStore builds the snapshot store selected by cfg.CacheBackend
func newStore(cfg *config.Config, logger *slog.Logger) (storage.SnapshotStore, error) {
	switch cfg.CacheBackend {
	case config.BackendFile, "":
		return filestorage.New(cfg.CachePath(), logger), nil
	case config.BackendBolt:
		return boltstorage.New(cfg.BoltPath(), logger), nil
	case config.BackendRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		store, err := redisstorage.New(redisCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid REDIS_URL: %v", model.ErrConfig, err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: invalid cache backend %q", model.ErrConfig, cfg.CacheBackend)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	cfg *config.Config,
	store storage.SnapshotStore,
	fetcher inventory.Fetcher,
	runtime achievements.Runtime,
	clk clock.Clock,
	logger *slog.Logger,
) *App {
	return &App{
		Config:       cfg,
		Logger:       logger,
		Store:        store,
		Clock:        clk,
		Inventory:    inventory.New(fetcher, store, clk, cfg.MaxAge, logger),
		Achievements: achievements.New(runtime, cfg.RuntimeTimeout, logger),
		closers:      []io.Closer{store},
	}
}

// Close releases the store and shuts down the local runtime
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
