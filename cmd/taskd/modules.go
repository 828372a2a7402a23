package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-todo-cache/api"
	"github.com/goliatone/go-todo-cache/cache"
	"github.com/goliatone/go-todo-cache/internal/cacheinfra"
	"github.com/goliatone/go-todo-cache/pkg/di"
	"github.com/goliatone/go-todo-cache/storage"
)

var (
	_ mono.Module                = (*storageModule)(nil)
	_ mono.HealthCheckableModule = (*storageModule)(nil)
	_ mono.Module                = (*cacheModule)(nil)
	_ mono.HealthCheckableModule = (*cacheModule)(nil)
	_ mono.Module                = (*apiModule)(nil)
	_ mono.HealthCheckableModule = (*apiModule)(nil)
)

// storageModule owns the database connection and creates the schema.
type storageModule struct {
	cfg    storage.Config
	db     *bun.DB
	logger *slog.Logger
}

func newStorageModule(cfg storage.Config, logger *slog.Logger) *storageModule {
	return &storageModule{cfg: cfg, logger: logger}
}

func (m *storageModule) Name() string { return "storage" }

func (m *storageModule) Start(ctx context.Context) error {
	db, err := storage.Open(ctx, m.cfg)
	if err != nil {
		return err
	}
	if err := storage.CreateSchema(ctx, db); err != nil {
		db.Close()
		return err
	}
	m.db = db
	m.logger.Info("storage ready", "driver", m.cfg.Driver)
	return nil
}

func (m *storageModule) Stop(_ context.Context) error {
	if m.db == nil {
		return nil
	}
	m.logger.Info("closing database")
	return m.db.Close()
}

func (m *storageModule) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{Healthy: false, Message: "database not open"}
	}
	if err := m.db.PingContext(ctx); err != nil {
		return mono.HealthStatus{Healthy: false, Message: err.Error()}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"driver": m.cfg.Driver},
	}
}

// cacheModule owns the cache backend.
type cacheModule struct {
	cfg     cache.Config
	backend cache.Backend
	logger  *slog.Logger
}

func newCacheModule(cfg cache.Config, logger *slog.Logger) *cacheModule {
	return &cacheModule{cfg: cfg, logger: logger}
}

func (m *cacheModule) Name() string { return "cache" }

func (m *cacheModule) Start(ctx context.Context) error {
	backend, err := cacheinfra.New(ctx, m.cfg)
	if err != nil {
		return err
	}
	m.backend = backend
	m.logger.Info("cache ready", "backend", string(m.cfg.Backend))
	return nil
}

func (m *cacheModule) Stop(_ context.Context) error {
	if m.backend == nil {
		return nil
	}
	return m.backend.Close()
}

func (m *cacheModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.backend != nil,
		Message: "operational",
		Details: map[string]any{"backend": string(m.cfg.Backend)},
	}
}

// apiModule serves HTTP over the services assembled from the storage and
// cache modules. It must be registered after both.
type apiModule struct {
	port      int
	cacheCfg  cache.Config
	storeCfg  storage.Config
	storage   *storageModule
	cache     *cacheModule
	container *di.Container
	app       *fiber.App
	logger    *slog.Logger
}

func newAPIModule(cfg config, sm *storageModule, cm *cacheModule, logger *slog.Logger) *apiModule {
	return &apiModule{
		port:     cfg.HTTPPort,
		cacheCfg: cfg.Cache,
		storeCfg: cfg.Storage,
		storage:  sm,
		cache:    cm,
		logger:   logger,
	}
}

func (m *apiModule) Name() string { return "api" }

func (m *apiModule) Start(_ context.Context) error {
	if m.storage.db == nil {
		return errors.New("storage module not started")
	}
	if m.cache.backend == nil {
		return errors.New("cache module not started")
	}

	container, err := di.NewContainer(
		di.Config{Cache: m.cacheCfg, QueryTimeout: m.storeCfg.QueryTimeout},
		m.cache.backend,
		m.storage.db,
		di.WithLogger(m.logger),
	)
	if err != nil {
		return err
	}
	m.container = container

	handlers := api.NewHandlers(container.Tasks(), container.Users(), container.Metrics())
	m.app = api.NewApp(handlers, m.logger)

	go func() {
		addr := fmt.Sprintf(":%d", m.port)
		m.logger.Info("starting HTTP server", "addr", addr)
		if err := m.app.Listen(addr); err != nil {
			m.logger.Error("HTTP server error", "err", err)
		}
	}()

	return nil
}

func (m *apiModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("shutting down HTTP server")
	return m.app.Shutdown()
}

func (m *apiModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{"port": m.port},
	}
}
