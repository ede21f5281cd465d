package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// NATSConfig configures the JetStream sink.
type NATSConfig struct {
	URL     string
	Subject string
	// Stream is created (or updated) to capture Subject when set.
	Stream  string
	Timeout time.Duration
}

// publisher is the slice of jetstream.JetStream the sink needs.
type publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// NATSSink publishes events to a JetStream subject.
type NATSSink struct {
	conn    *nats.Conn
	js      publisher
	subject string
}

// NewNATSSink connects to NATS and, when cfg.Stream is set, makes sure a
// stream captures the subject.
func NewNATSSink(ctx context.Context, cfg NATSConfig) (*NATSSink, error) {
	if cfg.URL == "" || cfg.Subject == "" {
		return nil, ferrors.ConfigError("nats sink requires url and subject").Build()
	}

	conn, err := nats.Connect(cfg.URL, nats.Name("docsite-feedback"), nats.Timeout(cfg.timeout()))
	if err != nil {
		return nil, ferrors.NetworkError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", cfg.URL).
			Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if cfg.Stream != "" {
		sctx, cancel := context.WithTimeout(ctx, cfg.timeout())
		defer cancel()
		if _, err := js.CreateOrUpdateStream(sctx, jetstream.StreamConfig{
			Name:        cfg.Stream,
			Description: "Docs page feedback events",
			Subjects:    []string{cfg.Subject},
			MaxAge:      90 * 24 * time.Hour,
		}); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.Stream, err)
		}
	}

	slog.Info("NATS feedback sink initialized",
		slog.String("url", cfg.URL),
		slog.String("subject", cfg.Subject),
		slog.String("stream", cfg.Stream))

	return &NATSSink{conn: conn, js: js, subject: cfg.Subject}, nil
}

func (c NATSConfig) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 5 * time.Second
	}
	return c.Timeout
}

func (s *NATSSink) Name() string { return "nats" }

func (s *NATSSink) Deliver(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	// The event ID doubles as the JetStream dedup key.
	if _, err := s.js.Publish(ctx, s.subject, data, jetstream.WithMsgID(ev.ID)); err != nil {
		return ferrors.NetworkError("failed to publish feedback event").
			WithCause(err).
			WithContext("subject", s.subject).
			Build()
	}
	return nil
}

func (s *NATSSink) Close() error {
	if s.conn != nil {
		return s.conn.Drain()
	}
	return nil
}
