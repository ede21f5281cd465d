package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// SQLiteSink appends events to a feedback_events table. It also backs the
// `docsite feedback` listing command.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens (or creates) the database at dbPath. Use ":memory:"
// for an in-memory database.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	s := &SQLiteSink{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, ferrors.EventStoreError("initialize feedback schema").WithCause(err).Build()
	}
	return s, nil
}

func (s *SQLiteSink) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS feedback_events (
		id TEXT PRIMARY KEY,
		event_name TEXT NOT NULL,
		url TEXT NOT NULL,
		opinion TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_created_at ON feedback_events(created_at);
	CREATE INDEX IF NOT EXISTS idx_feedback_url ON feedback_events(url);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteSink) Name() string { return "sqlite" }

// Deliver inserts ev. Re-delivering the same ID is a no-op.
func (s *SQLiteSink) Deliver(ctx context.Context, ev Event) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO feedback_events (id, event_name, url, opinion, message, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		ev.ID, ev.Name, ev.URL, string(ev.Opinion), ev.Message, ev.Timestamp.UnixMilli(),
	)
	if err != nil {
		return ferrors.EventStoreError("insert feedback event").WithCause(err).Build()
	}
	return nil
}

// List returns events created at or after since, newest first. A limit of
// zero or less means no limit.
func (s *SQLiteSink) List(ctx context.Context, since time.Time, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, event_name, url, opinion, message, created_at FROM feedback_events WHERE created_at >= ? ORDER BY created_at DESC, id LIMIT ?",
		since.UnixMilli(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query feedback events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev      Event
			opinion string
			created int64
		)
		if err := rows.Scan(&ev.ID, &ev.Name, &ev.URL, &opinion, &ev.Message, &created); err != nil {
			return nil, fmt.Errorf("scan feedback event: %w", err)
		}
		ev.Opinion = Opinion(opinion)
		ev.Timestamp = time.UnixMilli(created).UTC()
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return events, nil
}

// Summary counts events per opinion since the given time.
func (s *SQLiteSink) Summary(ctx context.Context, since time.Time) (map[Opinion]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT opinion, COUNT(*) FROM feedback_events WHERE created_at >= ? GROUP BY opinion",
		since.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("query feedback summary: %w", err)
	}
	defer rows.Close()

	out := map[Opinion]int{}
	for rows.Next() {
		var (
			opinion string
			n       int
		)
		if err := rows.Scan(&opinion, &n); err != nil {
			return nil, fmt.Errorf("scan feedback summary: %w", err)
		}
		out[Opinion(opinion)] = n
	}
	return out, rows.Err()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
