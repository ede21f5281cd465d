package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/gitsource"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// Global carries state shared by every subcommand.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve    ServeCmd    `cmd:"" help:"Serve the documentation site over HTTP"`
	Generate GenerateCmd `cmd:"" help:"Render every page to a static directory"`
	Routes   RoutesCmd   `cmd:"" help:"List the page slugs of the compiled content"`
	Feedback FeedbackCmd `cmd:"" help:"Show ratings recorded by the SQLite feedback sink"`
	Init     InitCmd     `cmd:"" help:"Initialize a new configuration file"`
	Show     VersionCmd  `cmd:"" name:"version" help:"Print version information"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

// loadConfig reads the configuration (or defaults when the file is absent)
// and installs the configured logger as the default.
func loadConfig(root *CLI) (*config.Config, *slog.Logger, error) {
	cfg, found, err := config.LoadOrDefault(root.Config)
	if err != nil {
		return nil, nil, err
	}
	logger := cfg.Monitoring.Logging.NewLogger(os.Stderr, root.Verbose)
	slog.SetDefault(logger)
	if !found {
		logger.Info("No configuration file found, using defaults", logfields.Path(root.Config))
	}
	return cfg, logger, nil
}

// siteConfig maps the configured identity onto the page shell.
func siteConfig(cfg *config.Config, feedbackEndpoint string) site.Config {
	return site.Config{
		Title:            cfg.Site.Title,
		Description:      cfg.Site.Description,
		URL:              cfg.Site.URL,
		Logo:             cfg.Site.Logo,
		SameAs:           cfg.Site.SameAs,
		Organization:     cfg.Site.Title,
		BasePath:         cfg.Site.BasePath,
		FeedbackEndpoint: feedbackEndpoint,
	}
}

func compileOptions(cfg *config.Config, logger *slog.Logger) content.CompileOptions {
	return content.CompileOptions{
		SiteTitle:     cfg.Site.Title,
		BasePath:      cfg.Site.BasePath,
		IncludeDrafts: cfg.Content.IncludeDrafts,
		RootPolicy:    content.RootPolicy(cfg.Content.RootPolicy),
		Logger:        logger,
	}
}

// compiler returns a build function reading the content directory afresh
// on every call.
func compiler(cfg *config.Config, logger *slog.Logger) func(context.Context) (*content.Index, error) {
	opts := compileOptions(cfg, logger)
	dir := cfg.Content.Dir
	return func(context.Context) (*content.Index, error) {
		return content.Compile(os.DirFS(dir), opts)
	}
}

// gitSource returns nil when content is read from a plain directory.
func gitSource(cfg *config.Config, logger *slog.Logger) *gitsource.Source {
	g := cfg.Content.Git
	if g == nil || g.URL == "" {
		return nil
	}
	return gitsource.New(gitsource.Config{
		URL:         g.URL,
		Branch:      g.Branch,
		Path:        g.Path,
		CheckoutDir: g.CheckoutDir,
		Token:       g.Token,
		Depth:       g.Depth,
	}, logger)
}

// prepareContent syncs the git source when configured and compiles the
// first index.
func prepareContent(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*content.Index, *gitsource.Source, error) {
	src := gitSource(cfg, logger)
	if src != nil {
		if _, err := src.Sync(ctx); err != nil {
			return nil, nil, err
		}
	}
	idx, err := compiler(cfg, logger)(ctx)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Content compiled", logfields.Path(cfg.Content.Dir), slog.Int("documents", idx.Len()))
	return idx, src, nil
}
