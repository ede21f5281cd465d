package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/static"
)

// GenerateCmd implements the 'generate' command for CI/CD pipelines.
type GenerateCmd struct {
	Output           string `short:"o" help:"Output directory for generated site" default:"./public"`
	Strict           bool   `help:"Fail when pages link to site paths that do not exist"`
	FeedbackEndpoint string `name:"feedback-endpoint" help:"Feedback URL for the rating widget (omit to hide it)"`
}

func (g *GenerateCmd) Run(_ *Global, root *CLI) error {
	cfg, logger, err := loadConfig(root)
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Println("Starting static site generation")
	idx, _, err := prepareContent(ctx, cfg, logger)
	if err != nil {
		return err
	}
	shell, err := site.NewShell(siteConfig(cfg, g.FeedbackEndpoint))
	if err != nil {
		return err
	}
	report, err := static.NewGenerator(idx, shell, cfg.Site.URL, logger).Generate(ctx, g.Output)
	if err != nil {
		return err
	}

	fmt.Printf("Generated %d pages (%d files) in %s\n", report.Pages, len(report.Files), g.Output)
	if n := len(report.BrokenLinks); n > 0 {
		fmt.Printf("Found %d broken links\n", n)
		for _, b := range report.BrokenLinks {
			fmt.Printf("  %s -> %s\n", b.Page, b.URL)
		}
		if g.Strict {
			return ferrors.DocsError(fmt.Sprintf("%d broken links", n)).
				WithContext("output", g.Output).
				Build()
		}
	}
	logger.Debug("Static generation finished", logfields.Path(g.Output), slog.Duration("duration", report.Duration))
	return nil
}
