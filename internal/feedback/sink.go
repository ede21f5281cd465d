package feedback

import (
	"context"
	"errors"
	"log/slog"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// Sink receives delivered events.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, ev Event) error
	Close() error
}

// LogSink writes events to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink logs through l, or slog.Default when l is nil.
func NewLogSink(l *slog.Logger) *LogSink {
	if l == nil {
		l = slog.Default()
	}
	return &LogSink{logger: l}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Deliver(ctx context.Context, ev Event) error {
	s.logger.InfoContext(ctx, "Docs feedback",
		logfields.EventName(ev.Name),
		logfields.EventID(ev.ID),
		logfields.URL(ev.URL),
		slog.String("opinion", string(ev.Opinion)),
		slog.String("message", ev.Message))
	return nil
}

func (s *LogSink) Close() error { return nil }

// MultiSink fans an event out to every sink. A failing sink does not stop
// delivery to the others; their errors are joined.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink combines sinks. Nil entries are ignored.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiSink) Name() string {
	name := "multi("
	for i, s := range m.sinks {
		if i > 0 {
			name += ","
		}
		name += s.Name()
	}
	return name + ")"
}

func (m *MultiSink) Deliver(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Deliver(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
