package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"spacetraveling/pkg/config"
	"spacetraveling/pkg/handlers"
	"spacetraveling/pkg/metrics"
	"spacetraveling/pkg/services"
)

// ServeCmd runs the HTTP server.
type ServeCmd struct {
	Addr string `help:"Listen address, overrides LISTEN_ADDR"`
}

func (s *ServeCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.EnvFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if s.Addr != "" {
		cfg.ListenAddr = s.Addr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var snapshots services.SnapshotStore
	if cfg.SnapshotDB != "" {
		store, err := services.NewSQLiteSnapshotStore(cfg.SnapshotDB)
		if err != nil {
			return fmt.Errorf("open snapshot store: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				slog.Warn("Failed to close snapshot store", "error", err)
			}
		}()
		snapshots = store
	}

	recorder := metrics.NewPrometheusRecorder(nil)
	blog, err := newBlog(cfg, recorder, snapshots)
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}

	revalidator, err := services.NewRevalidator(blog, cfg.RevalidateInterval, cfg.CMSTimeout, slog.Default())
	if err != nil {
		return err
	}
	revalidator.Start()
	defer func() {
		if err := revalidator.Stop(); err != nil {
			slog.Warn("Failed to stop revalidator", "error", err)
		}
	}()

	h := handlers.New(blog, renderer, cfg.RevalidateSecret, slog.Default())
	router := handlers.NewRouter(h, handlers.RouterOptions{
		SessionSecret: cfg.SessionSecret,
		StaticDir:     cfg.StaticDir,
		Metrics:       recorder.Handler(),
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errChan := make(chan error, 1)
	go func() {
		slog.Info("Listening", "addr", cfg.ListenAddr, "cms", cfg.CMSEndpoint)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}
