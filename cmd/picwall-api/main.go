package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/picwall-dev/picwall/internal/config"
	"github.com/picwall-dev/picwall/internal/logger"
	"github.com/picwall-dev/picwall/internal/router"
	"github.com/picwall-dev/picwall/internal/setup"
)

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

	if deps.GC != nil {
		deps.GC.StartBackgroundCleanup(ctx, cfg.GCInterval())
	}

	// The memory queue only works when the consumer runs in the same
	// process; with Redis a separate worker binary drains the stream.
	if cfg.Public.QueueBackend == "" || cfg.Public.QueueBackend == "memory" {
		worker := deps.ThumbnailWorker()
		go func() {
			if err := deps.Consumer.Run(ctx, worker.Handle); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("in-process worker stopped", "error", err.Error())
			}
		}()
	}

	addr := cfg.Public.Address
	if addr == "" {
		addr = ":8080"
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           router.New(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server started", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "error", err.Error())
	}
}
