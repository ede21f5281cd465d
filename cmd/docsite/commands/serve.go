package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/feedback"
	"git.home.luguber.info/inful/docsite/internal/gitsource"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/server"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/watch"
)

const feedbackEndpoint = "/api/feedback"

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port  int  `short:"p" help:"Override the configured listen port"`
	Watch bool `short:"w" help:"Rebuild when files in the content directory change"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, logger, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Port > 0 {
		cfg.Server.Port = s.Port
	}
	if s.Watch {
		cfg.Content.Watch.Enabled = true
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return serve(ctx, cfg, logger)
}

// serve runs until ctx is done. Each resource registers its teardown as soon
// as it exists, so a failed startup step releases what came before it.
// Teardown order: scheduler, HTTP server, feedback dispatcher.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) (err error) {
	stopTimeout := config.Duration(cfg.Server.ShutdownTimeout, 10*time.Second)

	idx, src, err := prepareContent(ctx, cfg, logger)
	if err != nil {
		return err
	}
	store := content.NewStore(idx)

	var (
		rec            metrics.Recorder = metrics.NoopRecorder{}
		metricsHandler http.Handler
	)
	if cfg.Monitoring.Metrics.Enabled {
		reg := metrics.NewRegistry()
		rec = metrics.NewPrometheusRecorder(reg)
		metricsHandler = metrics.HTTPHandler(reg)
	}
	rec.SetIndexedDocuments(idx.Len())

	var (
		dispatcher *feedback.Dispatcher
		endpoint   string
	)
	if cfg.Feedback.IsEnabled() {
		sink, err := buildSink(ctx, cfg, logger)
		if err != nil {
			return err
		}
		dispatcher = feedback.NewDispatcher(sink, feedback.DispatcherOptions{
			QueueSize:       cfg.Feedback.QueueSize,
			Workers:         cfg.Feedback.Workers,
			DeliveryTimeout: config.Duration(cfg.Feedback.DeliveryTimeout, 5*time.Second),
			Recorder:        rec,
			Logger:          logger,
		})
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
			defer cancel()
			if cerr := dispatcher.Close(closeCtx); cerr != nil {
				logger.Warn("Feedback dispatcher did not drain", logfields.Error(cerr))
			}
		}()
		endpoint = feedbackEndpoint
	}

	shell, err := site.NewShell(siteConfig(cfg, endpoint))
	if err != nil {
		return err
	}

	opts := server.Options{
		Addr:           cfg.Server.Addr(),
		ReadTimeout:    config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout:   config.Duration(cfg.Server.WriteTimeout, 30*time.Second),
		Store:          store,
		Shell:          shell,
		Recorder:       rec,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Monitoring.Metrics.Path,
		HealthPath:     cfg.Monitoring.Health.Path,
		Logger:         logger,
	}
	if dispatcher != nil {
		opts.Feedback = dispatcher
	}
	srv := server.New(opts)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if serr := srv.Stop(stopCtx); serr != nil && err == nil {
			err = fmt.Errorf("failed to stop server: %w", serr)
		}
	}()

	reindexer := watch.NewReindexer(store, compiler(cfg, logger), rec, logger)
	trigger := func(ctx context.Context, reason string) {
		_ = reindexer.Reindex(ctx, reason)
	}

	if expr := cfg.Content.Reindex.Schedule; expr != "" {
		scheduler, err := watch.NewScheduler(logger)
		if err != nil {
			return err
		}
		defer func() {
			if serr := scheduler.Stop(); serr != nil {
				logger.Warn("Failed to stop scheduler", logfields.Error(serr))
			}
		}()
		if _, err := scheduler.ScheduleReindex(ctx, expr, scheduledReindex(src, reindexer, logger)); err != nil {
			return err
		}
		scheduler.Start()
	}

	watchErr := make(chan error, 1)
	if cfg.Content.Watch.Enabled {
		w, err := watch.NewWatcher(watch.WatcherConfig{
			Dir:         cfg.Content.Dir,
			QuietWindow: config.Duration(cfg.Content.Watch.Debounce, 300*time.Millisecond),
		}, trigger, logger)
		if err != nil {
			return err
		}
		go func() { watchErr <- w.Run(ctx) }()
	}

	logger.Info("Docs site ready", slog.String("addr", cfg.Server.Addr()), slog.String("base_path", cfg.Site.BasePath))
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, stopping server...")
	case werr := <-watchErr:
		if werr != nil {
			logger.Error("Content watcher stopped", logfields.Error(werr))
		}
		<-ctx.Done()
	}
	return nil
}

// scheduledReindex pulls the git source (when there is one) before
// rebuilding. A failed pull keeps serving the current index.
func scheduledReindex(src *gitsource.Source, r *watch.Reindexer, logger *slog.Logger) func(context.Context) {
	return func(ctx context.Context) {
		if src != nil {
			if _, err := src.Sync(ctx); err != nil {
				logger.Warn("Content sync failed, keeping current index", logfields.Error(err))
				return
			}
		}
		_ = r.Reindex(ctx, "schedule")
	}
}

// buildSink assembles the configured feedback sinks.
func buildSink(ctx context.Context, cfg *config.Config, logger *slog.Logger) (feedback.Sink, error) {
	var sinks []feedback.Sink
	closeAll := func() {
		for _, s := range sinks {
			_ = s.Close()
		}
	}
	for _, kind := range cfg.Feedback.Sinks {
		switch kind {
		case config.SinkLog:
			sinks = append(sinks, feedback.NewLogSink(logger))
		case config.SinkNATS:
			n, err := feedback.NewNATSSink(ctx, feedback.NATSConfig{
				URL:     cfg.Feedback.NATS.URL,
				Subject: cfg.Feedback.NATS.Subject,
				Stream:  cfg.Feedback.NATS.Stream,
				Timeout: config.Duration(cfg.Feedback.DeliveryTimeout, 5*time.Second),
			})
			if err != nil {
				closeAll()
				return nil, err
			}
			sinks = append(sinks, n)
		case config.SinkSQLite:
			s, err := openFeedbackDB(cfg.Feedback.SQLite.Path)
			if err != nil {
				closeAll()
				return nil, err
			}
			sinks = append(sinks, s)
		}
	}
	if len(sinks) == 0 {
		sinks = append(sinks, feedback.NewLogSink(logger))
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return feedback.NewMultiSink(sinks...), nil
}
