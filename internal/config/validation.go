package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// ValidateConfig validates the defaulted configuration.
func ValidateConfig(cfg *Config) error {
	return newConfigurationValidator(cfg).validate()
}

type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	for _, check := range []func() error{
		cv.validateSite,
		cv.validateContent,
		cv.validateServer,
		cv.validateFeedback,
		cv.validateMonitoring,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (cv *configurationValidator) validateSite() error {
	site := cv.config.Site
	if site.URL != "" {
		u, err := url.Parse(site.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("site.url must be an absolute URL: %q", site.URL)
		}
	}
	for _, s := range site.SameAs {
		if u, err := url.Parse(s); err != nil || u.Scheme == "" {
			return fmt.Errorf("site.same_as entries must be absolute URLs: %q", s)
		}
	}
	return nil
}

func (cv *configurationValidator) validateContent() error {
	c := cv.config.Content
	if err := validateDuration("content.watch.debounce", c.Watch.Debounce); err != nil {
		return err
	}
	if c.Reindex.Schedule != "" {
		if err := validateCron(c.Reindex.Schedule); err != nil {
			return fmt.Errorf("content.reindex.schedule: %w", err)
		}
	}
	if c.Git != nil {
		if c.Git.URL == "" {
			return errors.New("content.git.url is required when a git source is configured")
		}
		if strings.Contains(c.Git.Path, "..") {
			return fmt.Errorf("content.git.path must stay inside the checkout: %q", c.Git.Path)
		}
	}
	return nil
}

func (cv *configurationValidator) validateServer() error {
	s := cv.config.Server
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", s.Port)
	}
	for name, raw := range map[string]string{
		"server.read_timeout":     s.ReadTimeout,
		"server.write_timeout":    s.WriteTimeout,
		"server.shutdown_timeout": s.ShutdownTimeout,
	} {
		if err := validateDuration(name, raw); err != nil {
			return err
		}
	}
	return nil
}

func (cv *configurationValidator) validateFeedback() error {
	f := cv.config.Feedback
	if err := validateDuration("feedback.delivery_timeout", f.DeliveryTimeout); err != nil {
		return err
	}
	if !f.IsEnabled() {
		return nil
	}
	if f.HasSink(SinkNATS) && f.NATS.URL == "" {
		return errors.New("feedback.nats.url is required when the nats sink is enabled")
	}
	return nil
}

func (cv *configurationValidator) validateMonitoring() error {
	m := cv.config.Monitoring
	for name, p := range map[string]string{
		"monitoring.metrics.path": m.Metrics.Path,
		"monitoring.health.path":  m.Health.Path,
	} {
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("%s must start with '/': %q", name, p)
		}
	}
	if m.Metrics.Path == m.Health.Path {
		return errors.New("monitoring.metrics.path and monitoring.health.path must differ")
	}
	return nil
}

func validateDuration(name, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid duration %q: %w", name, raw, err)
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative", name)
	}
	return nil
}

// validateCron checks a cron expression (five fields, or six with leading
// seconds) by building a throwaway gocron job definition.
func validateCron(expr string) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	defer func() { _ = s.Shutdown() }()
	_, err = s.NewJob(gocron.CronJob(expr, len(strings.Fields(expr)) == 6), gocron.NewTask(func() {}))
	return err
}
