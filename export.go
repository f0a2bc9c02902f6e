package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"spacetraveling/pkg/config"
	"spacetraveling/pkg/metrics"
	"spacetraveling/pkg/services"
)

// ExportCmd renders every post to a directory of static HTML.
type ExportCmd struct {
	Out string `short:"o" help:"Output directory" default:"public"`
}

func (e *ExportCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.EnvFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	blog, err := newBlog(cfg, metrics.NoopRecorder{}, nil)
	if err != nil {
		return err
	}
	renderer, err := newRenderer(cfg)
	if err != nil {
		return err
	}

	report, err := services.NewExporter(blog, renderer, e.Out, cfg.ExportConcurrency, slog.Default()).Run(ctx)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	slog.Info("Export complete", "out", e.Out, "posts", report.Posts, "skipped", report.Skipped)
	return nil
}
