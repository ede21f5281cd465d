package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// SiteDefaultApplier handles site identity defaults.
type SiteDefaultApplier struct{}

func (SiteDefaultApplier) Domain() string { return "site" }

func (SiteDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Site.Title == "" {
		cfg.Site.Title = "Documentation"
	}
	if cfg.Site.BasePath == "" {
		cfg.Site.BasePath = "/docs"
	}
	cfg.Site.BasePath = "/" + strings.Trim(cfg.Site.BasePath, "/")
	cfg.Site.URL = strings.TrimSuffix(cfg.Site.URL, "/")
	if cfg.Site.Logo == "" && cfg.Site.URL != "" {
		cfg.Site.Logo = cfg.Site.URL + "/logo.png"
	}
	return nil
}

// ContentDefaultApplier handles content source defaults.
type ContentDefaultApplier struct{}

func (ContentDefaultApplier) Domain() string { return "content" }

func (ContentDefaultApplier) ApplyDefaults(cfg *Config) error {
	c := &cfg.Content
	if c.RootPolicy == "" {
		c.RootPolicy = RootPolicyNotFound
	} else {
		rp, err := rootPolicyNormalizer.Parse(string(c.RootPolicy))
		if err != nil {
			return err
		}
		c.RootPolicy = rp
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = "300ms"
	}
	if c.Git != nil {
		if c.Git.Branch == "" {
			c.Git.Branch = "main"
		}
		if c.Git.CheckoutDir == "" {
			c.Git.CheckoutDir = filepath.Join(".docsite", "checkout")
		}
		if c.Git.Depth < 0 {
			c.Git.Depth = 0
		}
		if c.Dir == "" {
			c.Dir = filepath.Join(c.Git.CheckoutDir, c.Git.Path)
		}
	}
	if c.Dir == "" {
		c.Dir = filepath.Join("content", "docs")
	}
	return nil
}

// ServerDefaultApplier handles HTTP listener defaults.
type ServerDefaultApplier struct{}

func (ServerDefaultApplier) Domain() string { return "server" }

func (ServerDefaultApplier) ApplyDefaults(cfg *Config) error {
	s := &cfg.Server
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == "" {
		s.ReadTimeout = "15s"
	}
	if s.WriteTimeout == "" {
		s.WriteTimeout = "30s"
	}
	if s.ShutdownTimeout == "" {
		s.ShutdownTimeout = "10s"
	}
	return nil
}

// FeedbackDefaultApplier handles feedback capture defaults.
type FeedbackDefaultApplier struct{}

func (FeedbackDefaultApplier) Domain() string { return "feedback" }

func (FeedbackDefaultApplier) ApplyDefaults(cfg *Config) error {
	f := &cfg.Feedback
	if f.Enabled == nil {
		f.Enabled = boolPtr(true)
	}
	if len(f.Sinks) == 0 {
		f.Sinks = []SinkKind{SinkLog}
	}
	seen := make(map[SinkKind]bool, len(f.Sinks))
	sinks := f.Sinks[:0]
	for _, raw := range f.Sinks {
		kind, err := sinkKindNormalizer.Parse(string(raw))
		if err != nil {
			return err
		}
		if !seen[kind] {
			seen[kind] = true
			sinks = append(sinks, kind)
		}
	}
	f.Sinks = sinks
	if f.QueueSize <= 0 {
		f.QueueSize = 256
	}
	if f.Workers <= 0 {
		f.Workers = 2
	}
	if f.DeliveryTimeout == "" {
		f.DeliveryTimeout = "5s"
	}
	if f.NATS.Subject == "" {
		f.NATS.Subject = "docs.feedback"
	}
	if f.SQLite.Path == "" {
		f.SQLite.Path = "docsite-feedback.db"
	}
	return nil
}

// MonitoringDefaultApplier handles monitoring defaults.
type MonitoringDefaultApplier struct{}

func (MonitoringDefaultApplier) Domain() string { return "monitoring" }

func (MonitoringDefaultApplier) ApplyDefaults(cfg *Config) error {
	m := &cfg.Monitoring
	if m.Metrics.Path == "" {
		m.Metrics.Path = "/metrics"
	}
	if m.Health.Path == "" {
		m.Health.Path = "/health"
	}
	m.Logging.Level = NormalizeLogLevel(string(m.Logging.Level))
	m.Logging.Format = NormalizeLogFormat(string(m.Logging.Format))
	return nil
}

// CompositeDefaultApplier runs the domain appliers in order.
type CompositeDefaultApplier struct {
	appliers []DefaultApplier
}

// NewDefaultApplier returns the applier for every configuration domain.
func NewDefaultApplier() *CompositeDefaultApplier {
	return &CompositeDefaultApplier{appliers: []DefaultApplier{
		SiteDefaultApplier{},
		ContentDefaultApplier{},
		ServerDefaultApplier{},
		FeedbackDefaultApplier{},
		MonitoringDefaultApplier{},
	}}
}

func (c *CompositeDefaultApplier) ApplyDefaults(cfg *Config) error {
	for _, a := range c.appliers {
		if err := a.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("%s defaults: %w", a.Domain(), err)
		}
	}
	return nil
}
