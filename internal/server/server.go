// Package server wires the docs HTTP surface: rendered pages, the metadata and
// params API, feedback capture, health probes, metrics and SEO files.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/feedback"
	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/resolver"
	smw "git.home.luguber.info/inful/docsite/internal/server/middleware"
	"git.home.luguber.info/inful/docsite/internal/site"
)

const (
	defaultReadTimeout  = 15 * time.Second
	defaultWriteTimeout = 30 * time.Second
	defaultHealthPath   = "/health"
	defaultMetricsPath  = "/metrics"
)

// FeedbackSubmitter accepts reader feedback without blocking on delivery.
type FeedbackSubmitter interface {
	SubmitFeedback(pageURL string, fb feedback.Payload) error
}

// Options configure the server. Store and Shell are required.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	Store *content.Store
	Shell *site.Shell
	// Feedback is nil when feedback capture is disabled.
	Feedback FeedbackSubmitter

	Recorder metrics.Recorder
	// MetricsHandler is mounted at MetricsPath when non-nil.
	MetricsHandler http.Handler
	MetricsPath    string
	HealthPath     string

	Logger *slog.Logger
}

// Server serves the docs site.
type Server struct {
	opts       Options
	basePath   string
	store      *content.Store
	shell      *site.Shell
	resolver   *resolver.Resolver
	adapter    *ferrors.HTTPErrorAdapter
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
	startedAt  time.Time
}

// New builds the router. It does not listen until Start.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.HealthPath == "" {
		opts.HealthPath = defaultHealthPath
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = defaultMetricsPath
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = defaultWriteTimeout
	}

	s := &Server{
		opts:      opts,
		basePath:  "/" + strings.Trim(opts.Shell.BasePath(), "/"),
		store:     opts.Store,
		shell:     opts.Shell,
		adapter:   ferrors.NewHTTPErrorAdapter(opts.Logger),
		logger:    opts.Logger,
		startedAt: time.Now(),
	}
	s.resolver = resolver.New(opts.Store,
		resolver.WithRecorder(opts.Recorder),
		resolver.WithLogger(opts.Logger))
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(smw.Chain(s.logger, s.adapter, s.opts.Recorder))
	r.Use(chimw.GetHead)
	r.NotFound(s.handleNotFound)

	r.Get(s.opts.HealthPath, s.handleHealth)
	r.Get("/healthz", s.handleHealth)
	r.Get("/ready", s.handleReady)
	if s.opts.MetricsHandler != nil {
		r.Method(http.MethodGet, s.opts.MetricsPath, s.opts.MetricsHandler)
	}
	r.Get("/sitemap.xml", s.handleSitemap)
	r.Get("/robots.txt", s.handleRobots)

	r.Route("/api", func(r chi.Router) {
		r.Get("/docs/metadata", s.handleMetadata)
		r.Get("/docs/params", s.handleParams)
		if s.opts.Feedback != nil {
			r.Post("/feedback", s.handleFeedback)
		}
	})

	if s.basePath == "/" {
		r.Get("/*", s.handleDocs)
	} else {
		r.Get(s.basePath, s.handleDocs)
		r.Get(s.basePath+"/*", s.handleDocs)
	}
	return r
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start binds the listen address and serves in the background. Bind errors
// are returned synchronously.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return ferrors.NetworkError("http listen failed").
			WithCause(err).
			WithContext("addr", s.opts.Addr).
			Build()
	}
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
		IdleTimeout:       2 * s.opts.WriteTimeout,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		if serr := s.httpServer.Serve(ln); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", logfields.Error(serr))
		}
	}()
	s.logger.Info("HTTP server started",
		slog.String("addr", ln.Addr().String()),
		slog.String("base_path", s.basePath))
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
