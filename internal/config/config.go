package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// CurrentVersion is the configuration schema version written by Init.
const CurrentVersion = "1.0"

// Config is the docsite configuration file.
type Config struct {
	Version    string           `yaml:"version"`
	Site       SiteConfig       `yaml:"site"`
	Content    ContentConfig    `yaml:"content"`
	Server     ServerConfig     `yaml:"server"`
	Feedback   FeedbackConfig   `yaml:"feedback"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// SiteConfig holds the identity used in page titles, OpenGraph tags and
// the JSON-LD WebSite/Organization blocks.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	// URL is the public origin, e.g. https://docs.example.com. Logo and
	// sitemap entries are derived from it.
	URL      string   `yaml:"url"`
	Logo     string   `yaml:"logo,omitempty"`
	SameAs   []string `yaml:"same_as,omitempty"`
	BasePath string   `yaml:"base_path"`
}

// ContentConfig describes where documents come from and how they are compiled.
type ContentConfig struct {
	Dir           string           `yaml:"dir"`
	IncludeDrafts bool             `yaml:"include_drafts"`
	RootPolicy    RootPolicy       `yaml:"root_policy"`
	Watch         WatchConfig      `yaml:"watch"`
	Reindex       ReindexConfig    `yaml:"reindex"`
	Git           *GitSourceConfig `yaml:"git,omitempty"`
}

// WatchConfig enables filesystem watching of the content directory.
type WatchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Debounce string `yaml:"debounce"`
}

// ReindexConfig schedules periodic rebuilds (and git pulls when a git source
// is configured). An empty schedule disables it.
type ReindexConfig struct {
	Schedule string `yaml:"schedule"`
}

// GitSourceConfig clones content from a remote repository.
type GitSourceConfig struct {
	URL         string `yaml:"url"`
	Branch      string `yaml:"branch"`
	Path        string `yaml:"path"`
	CheckoutDir string `yaml:"checkout_dir"`
	Token       string `yaml:"token,omitempty"`
	Depth       int    `yaml:"depth"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// FeedbackConfig configures rating capture and its sinks.
type FeedbackConfig struct {
	Enabled         *bool            `yaml:"enabled,omitempty"`
	Sinks           []SinkKind       `yaml:"sinks"`
	QueueSize       int              `yaml:"queue_size"`
	Workers         int              `yaml:"workers"`
	DeliveryTimeout string           `yaml:"delivery_timeout"`
	NATS            NATSSinkConfig   `yaml:"nats"`
	SQLite          SQLiteSinkConfig `yaml:"sqlite"`
}

// NATSSinkConfig configures the JetStream feedback sink.
type NATSSinkConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
	Stream  string `yaml:"stream"`
}

// SQLiteSinkConfig configures the SQLite feedback sink.
type SQLiteSinkConfig struct {
	Path string `yaml:"path"`
}

// MonitoringConfig represents monitoring and observability configuration
type MonitoringConfig struct {
	Metrics MonitoringMetrics `yaml:"metrics"`
	Health  MonitoringHealth  `yaml:"health"`
	Logging MonitoringLogging `yaml:"logging"`
}

// MonitoringMetrics represents metrics configuration
type MonitoringMetrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MonitoringHealth represents health check configuration
type MonitoringHealth struct {
	Path string `yaml:"path"`
}

// MonitoringLogging represents logging configuration
type MonitoringLogging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads, normalizes, defaults and validates a configuration file.
// ${VAR} references are expanded after .env files are loaded.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		slog.Debug("No .env file loaded", slog.String("reason", err.Error()))
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ferrors.ConfigError("configuration file not found").
			WithContext("path", configPath).
			Build()
	}
	if err != nil {
		return nil, ferrors.ConfigError("failed to read config file").WithCause(err).Build()
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, ferrors.ConfigError("failed to parse config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	if cfg.Version != CurrentVersion {
		return nil, ferrors.ConfigError(fmt.Sprintf("unsupported configuration version: %q (expected %s)", cfg.Version, CurrentVersion)).Build()
	}

	if err := finalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configPath when it exists and otherwise returns the
// defaults. found reports whether a file was read.
func LoadOrDefault(configPath string) (cfg *Config, found bool, err error) {
	if _, statErr := os.Stat(configPath); errors.Is(statErr, os.ErrNotExist) {
		cfg, err = Default()
		return cfg, false, err
	}
	cfg, err = Load(configPath)
	return cfg, err == nil, err
}

// Default returns a fully defaulted configuration.
func Default() (*Config, error) {
	cfg := &Config{Version: CurrentVersion}
	if err := finalize(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func finalize(cfg *Config) error {
	if err := NewDefaultApplier().ApplyDefaults(cfg); err != nil {
		return ferrors.ConfigError("failed to apply defaults").WithCause(err).Build()
	}
	if err := ValidateConfig(cfg); err != nil {
		return ferrors.ConfigError("configuration validation failed").WithCause(err).Build()
	}
	return nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	example := Config{
		Version: CurrentVersion,
		Site: SiteConfig{
			Title:       "Acme Docs",
			Description: "Guides and reference for the Acme platform",
			URL:         "https://docs.example.com",
			SameAs:      []string{"https://github.com/example/acme"},
			BasePath:    "/docs",
		},
		Content: ContentConfig{
			Dir:        "./content/docs",
			RootPolicy: RootPolicyNotFound,
			Watch:      WatchConfig{Enabled: false, Debounce: "300ms"},
			Reindex:    ReindexConfig{Schedule: ""},
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     "15s",
			WriteTimeout:    "30s",
			ShutdownTimeout: "10s",
		},
		Feedback: FeedbackConfig{
			Enabled:         boolPtr(true),
			Sinks:           []SinkKind{SinkLog, SinkSQLite},
			QueueSize:       256,
			Workers:         2,
			DeliveryTimeout: "5s",
			NATS:            NATSSinkConfig{URL: "${NATS_URL}", Subject: "docs.feedback", Stream: "DOCS_FEEDBACK"},
			SQLite:          SQLiteSinkConfig{Path: "./docsite-feedback.db"},
		},
		Monitoring: MonitoringConfig{
			Metrics: MonitoringMetrics{Enabled: true, Path: "/metrics"},
			Health:  MonitoringHealth{Path: "/health"},
			Logging: MonitoringLogging{Level: LogLevelInfo, Format: LogFormatText},
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	// #nosec G306 -- example config holds no secrets, only ${VAR} references.
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.FileSystemError("failed to write config file").WithCause(err).Build()
	}
	return nil
}

// Duration parses a configured duration, falling back to def when raw is
// empty. Values have already been validated by Load.
func Duration(raw string, def time.Duration) time.Duration {
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsEnabled reports whether feedback capture is on. It defaults to true.
func (f FeedbackConfig) IsEnabled() bool {
	return f.Enabled == nil || *f.Enabled
}

func boolPtr(b bool) *bool { return &b }

// HasSink reports whether kind is among the configured feedback sinks.
func (f FeedbackConfig) HasSink(kind SinkKind) bool {
	for _, s := range f.Sinks {
		if s == kind {
			return true
		}
	}
	return false
}
