package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"spacetraveling/pkg/config"
	"spacetraveling/pkg/metrics"
	"spacetraveling/pkg/prismic"
	"spacetraveling/pkg/services"
	"spacetraveling/pkg/views"
)

// CLI is the command line of the blog server.
type CLI struct {
	Verbose bool   `short:"v" help:"Enable verbose logging"`
	EnvFile string `name:"env-file" help:"Environment file to load" default:".env"`

	Serve  ServeCmd  `cmd:"" default:"1" help:"Serve the blog over HTTP"`
	Export ExportCmd `cmd:"" help:"Write the whole blog as static HTML"`
}

// AfterApply sets up logging once flags are parsed.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("spacetraveling"),
		kong.Description("A blog front-end over a headless CMS."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&cli); err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}

// newBlog wires the CMS client and the blog service from cfg.
func newBlog(cfg *config.Config, recorder metrics.Recorder, snapshots services.SnapshotStore) (*services.Blog, error) {
	client, err := prismic.New(prismic.Options{
		Endpoint:    cfg.CMSEndpoint,
		AccessToken: cfg.CMSAccessToken,
		Timeout:     cfg.CMSTimeout,
	})
	if err != nil {
		return nil, err
	}
	return services.NewBlog(client, services.BlogOptions{
		DocumentType:    cfg.CMSDocumentType,
		PageSize:        cfg.PageSize,
		CommentsEnabled: cfg.Site.Comments,
		CacheTTL:        cfg.RevalidateInterval,
		Snapshots:       snapshots,
		Recorder:        recorder,
		Logger:          slog.Default(),
	}), nil
}

func newRenderer(cfg *config.Config) (*views.Renderer, error) {
	return views.NewRenderer(views.Site{
		Title:  cfg.Site.Title,
		Logo:   cfg.Site.Logo,
		Locale: cfg.Site.Tag,
	})
}
