package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/docsite/internal/feedback"
	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

// FeedbackCmd implements the 'feedback' command.
type FeedbackCmd struct {
	Since time.Duration `help:"Only show ratings newer than this" default:"24h"`
	Limit int           `short:"n" help:"Maximum number of ratings to list" default:"50"`
	JSON  bool          `name:"json" help:"Print JSON instead of a table"`
	DB    string        `name:"db" help:"Override the configured SQLite database path"`
}

type feedbackReport struct {
	Since   time.Time                `json:"since"`
	Summary map[feedback.Opinion]int `json:"summary"`
	Events  []feedback.Event         `json:"events"`
}

func (f *FeedbackCmd) Run(_ *Global, root *CLI) error {
	cfg, _, err := loadConfig(root)
	if err != nil {
		return err
	}
	path := cfg.Feedback.SQLite.Path
	if f.DB != "" {
		path = f.DB
	}
	if _, err := os.Stat(path); err != nil {
		return ferrors.NotFoundError("feedback database not found").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	db, err := feedback.NewSQLiteSink(path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	report, err := f.collect(context.Background(), db, time.Now())
	if err != nil {
		return err
	}
	if f.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return writeFeedbackTable(os.Stdout, report)
}

func (f *FeedbackCmd) collect(ctx context.Context, db *feedback.SQLiteSink, now time.Time) (*feedbackReport, error) {
	since := now.Add(-f.Since)
	summary, err := db.Summary(ctx, since)
	if err != nil {
		return nil, err
	}
	events, err := db.List(ctx, since, f.Limit)
	if err != nil {
		return nil, err
	}
	return &feedbackReport{Since: since, Summary: summary, Events: events}, nil
}

func writeFeedbackTable(w io.Writer, r *feedbackReport) error {
	good, bad := r.Summary[feedback.OpinionGood], r.Summary[feedback.OpinionBad]
	if _, err := fmt.Fprintf(w, "Ratings since %s: %d good, %d bad\n\n", r.Since.Format(time.RFC3339), good, bad); err != nil {
		return err
	}
	if len(r.Events) == 0 {
		_, err := fmt.Fprintln(w, "No ratings recorded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tOPINION\tURL\tMESSAGE")
	for _, ev := range r.Events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ev.Timestamp.Format(time.RFC3339), ev.Opinion, ev.URL, oneLine(ev.Message, 60))
	}
	return tw.Flush()
}

func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > limit {
		return string(r[:limit-1]) + "…"
	}
	return s
}

// openFeedbackDB creates the parent directory before opening the database.
func openFeedbackDB(path string) (*feedback.SQLiteSink, error) {
	if dir := filepath.Dir(path); dir != "." && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, ferrors.FileSystemError("create feedback database directory").
				WithCause(err).
				WithContext("path", dir).
				Build()
		}
	}
	return feedback.NewSQLiteSink(path)
}
