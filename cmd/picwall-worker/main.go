package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/picwall-dev/picwall/internal/config"
	"github.com/picwall-dev/picwall/internal/logger"
	"github.com/picwall-dev/picwall/internal/setup"
)

// picwall-worker drains the task queue and generates thumbnails. Deliveries
// are at-least-once, so everything it does is idempotent; running several
// workers against the same consumer group is safe.
func main() {
	var configFolder string
	var logLevel string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.StringVar(&logLevel, "log_level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	logger.Initialize(logLevel, true)
	cfg := config.MustLoad(configFolder)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := setup.SetupDependencies(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize dependencies", "error", err.Error())
		os.Exit(1)
	}
	defer deps.Close()

	worker := deps.ThumbnailWorker()
	slog.Info("worker started", "queue", cfg.Public.QueueBackend)

	if err := deps.Consumer.Run(ctx, worker.Handle); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("worker stopped", "error", err.Error())
		os.Exit(1)
	}
	slog.Info("worker stopped")
}
