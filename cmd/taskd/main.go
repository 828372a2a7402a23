// Command taskd serves the task and user API with a cache-aside layer in
// front of the store.
package main

import (
	"context"
	"log/slog"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := loadConfig()
	logger.Info("starting taskd",
		"http_port", cfg.HTTPPort,
		"cache_backend", string(cfg.Cache.Backend),
		"db_driver", cfg.Storage.Driver,
	)

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		logger.Error("failed to create application", "err", err)
		os.Exit(1)
	}

	// Independent modules first; api reads from both when it starts.
	storageMod := newStorageModule(cfg.Storage, logger)
	cacheMod := newCacheModule(cfg.Cache, logger)
	app.Register(storageMod)
	app.Register(cacheMod)
	app.Register(newAPIModule(cfg, storageMod, cacheMod, logger))

	if err := app.Start(context.Background()); err != nil {
		logger.Error("failed to start application", "err", err)
		os.Exit(1)
	}

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				logger.Info("graceful shutdown initiated")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	logger.Info("application exited", "code", exitCode)
	os.Exit(exitCode)
}
