// @title Student Insights API
// @version 1.0
// @description Descriptive statistics over a student grading dataset.
// @host localhost:8080
// @BasePath /api/v1
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"student-insights/internal/api"
	"student-insights/internal/api/handler"
	"student-insights/internal/config"
	"student-insights/internal/infrastructure"
	"student-insights/internal/pipeline"
	"student-insights/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer infrastructure.CloseLogFile()

	if err := store.InitDB(cfg.Store.DBPath); err != nil {
		return err
	}
	defer store.Close()
	if !store.Enabled() {
		logger.Warn("run history disabled, no database path configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A missing or unreadable dataset stops startup.
	dataset := pipeline.NewDataset(cfg.Data.Path)
	if _, err := dataset.Table(ctx); err != nil {
		return err
	}

	h := handler.New(dataset, pipeline.NewTracker(store.Recorder{}))
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", server.Addr, "dataset", cfg.Data.Path)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
