// Package watch keeps the published content index fresh: filesystem events
// and cron schedules trigger rebuilds that are swapped into the store.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
)

// BuildFunc compiles a fresh index.
type BuildFunc func(ctx context.Context) (*content.Index, error)

// Reindexer rebuilds the index and publishes it. Rebuilds are serialised; a
// failed rebuild leaves the previous index in place.
type Reindexer struct {
	store  *content.Store
	build  BuildFunc
	rec    metrics.Recorder
	logger *slog.Logger

	mu sync.Mutex
}

// NewReindexer wires a rebuild pipeline around store.
func NewReindexer(store *content.Store, build BuildFunc, rec metrics.Recorder, logger *slog.Logger) *Reindexer {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reindexer{store: store, build: build, rec: rec, logger: logger}
}

// Reindex builds and swaps in a new index.
func (r *Reindexer) Reindex(ctx context.Context, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	idx, err := r.build(ctx)
	elapsed := time.Since(start)
	if err != nil {
		r.rec.ObserveReindex(elapsed, false)
		r.logger.Error("Reindex failed, keeping previous index",
			slog.String("reason", reason),
			logfields.Error(err))
		return err
	}

	r.store.Swap(idx)
	r.rec.ObserveReindex(elapsed, true)
	r.rec.SetIndexedDocuments(idx.Len())
	r.logger.Info("Content reindexed",
		slog.String("reason", reason),
		logfields.Documents(idx.Len()),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return nil
}
