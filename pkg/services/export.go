package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"spacetraveling/pkg/logfields"
	"spacetraveling/pkg/models"
)

// PageRenderer turns page models into HTML.
type PageRenderer interface {
	RenderListing(w io.Writer, posts []models.PostSummary, nextCursor string) error
	RenderPost(w io.Writer, page models.PostPageModel) error
}

// ExportReport summarises a static export.
type ExportReport struct {
	Posts   int
	Skipped int
}

// Exporter writes the whole blog as static HTML.
type Exporter struct {
	blog        *Blog
	renderer    PageRenderer
	outDir      string
	concurrency int
	logger      *slog.Logger
}

// NewExporter renders at most concurrency posts at a time into outDir.
func NewExporter(blog *Blog, renderer PageRenderer, outDir string, concurrency int, logger *slog.Logger) *Exporter {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{blog: blog, renderer: renderer, outDir: outDir, concurrency: concurrency, logger: logger}
}

// Run exports index.html with every post plus post/<uid>/index.html per post.
func (e *Exporter) Run(ctx context.Context) (ExportReport, error) {
	posts, err := e.blog.AllPosts(ctx)
	if err != nil {
		return ExportReport{}, fmt.Errorf("list posts: %w", err)
	}

	var index bytes.Buffer
	if err := e.renderer.RenderListing(&index, posts, ""); err != nil {
		return ExportReport{}, fmt.Errorf("render listing: %w", err)
	}
	if err := writeFile(filepath.Join(e.outDir, "index.html"), index.Bytes()); err != nil {
		return ExportReport{}, err
	}

	var written, skipped atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, summary := range posts {
		g.Go(func() error {
			dir := SafeJoin(e.outDir, "post", summary.ID)
			if dir == "" {
				e.logger.Warn("Skipping post with unsafe uid", logfields.PostUID(summary.ID))
				skipped.Add(1)
				return nil
			}
			page, err := e.blog.PostPage(gctx, summary.ID, "")
			if errors.Is(err, ErrPostNotFound) {
				// unpublished between listing and fetch
				e.logger.Warn("Post disappeared during export", logfields.PostUID(summary.ID))
				skipped.Add(1)
				return nil
			}
			if err != nil {
				return fmt.Errorf("post %s: %w", summary.ID, err)
			}
			var buf bytes.Buffer
			if err := e.renderer.RenderPost(&buf, page); err != nil {
				return fmt.Errorf("render post %s: %w", summary.ID, err)
			}
			if err := writeFile(filepath.Join(dir, "index.html"), buf.Bytes()); err != nil {
				return err
			}
			written.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ExportReport{}, err
	}

	report := ExportReport{Posts: int(written.Load()), Skipped: int(skipped.Load())}
	e.logger.Info("Static export finished",
		logfields.Path(e.outDir),
		slog.Int("posts", report.Posts),
		slog.Int("skipped", report.Skipped))
	return report, nil
}
