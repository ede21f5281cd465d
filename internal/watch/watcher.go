package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

const (
	defaultQuietWindow = 300 * time.Millisecond
	defaultMaxDelay    = 5 * time.Second
)

// WatcherConfig tunes change coalescing.
type WatcherConfig struct {
	Dir string
	// QuietWindow is how long the tree must stay unchanged before a rebuild.
	QuietWindow time.Duration
	// MaxDelay bounds how long a steady stream of changes can postpone one.
	MaxDelay time.Duration
}

// Watcher triggers a callback after bursts of content changes settle.
type Watcher struct {
	cfg     WatcherConfig
	fsw     *fsnotify.Watcher
	trigger func(ctx context.Context, reason string)
	logger  *slog.Logger

	readyOnce sync.Once
	ready     chan struct{}
}

// NewWatcher watches cfg.Dir and every non-hidden directory beneath it.
func NewWatcher(cfg WatcherConfig, trigger func(ctx context.Context, reason string), logger *slog.Logger) (*Watcher, error) {
	if cfg.QuietWindow <= 0 {
		cfg.QuietWindow = defaultQuietWindow
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = defaultMaxDelay
	}
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, ferrors.FileSystemError("resolve content directory").WithCause(err).Build()
	}
	cfg.Dir = abs

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.FileSystemError("create file watcher").WithCause(err).Build()
	}
	w := &Watcher{cfg: cfg, fsw: fsw, trigger: trigger, logger: logger, ready: make(chan struct{})}
	if err := w.addTree(abs); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Ready is closed once Run is consuming events.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run processes events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.fsw.Close() }()
	w.logger.Info("Watching content directory", logfields.Path(w.cfg.Dir))

	quiet := stoppedTimer()
	maxWait := stoppedTimer()
	var (
		quietC   <-chan time.Time
		maxC     <-chan time.Time
		pending  int
		lastFile string
	)
	fire := func(why string) {
		quietC, maxC = nil, nil
		quiet.Stop()
		maxWait.Stop()
		w.logger.Debug("Content change settled",
			slog.String("trigger", why),
			slog.Int("events", pending),
			logfields.File(lastFile))
		pending = 0
		w.trigger(ctx, "watch")
	}

	w.readyOnce.Do(func() { close(w.ready) })
	for {
		select {
		case <-ctx.Done():
			quiet.Stop()
			maxWait.Stop()
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			lastFile = ev.Name
			pending++
			resetTimer(quiet, w.cfg.QuietWindow)
			quietC = quiet.C
			if maxC == nil {
				resetTimer(maxWait, w.cfg.MaxDelay)
				maxC = maxWait.C
			}
		case <-quietC:
			fire("quiet")
		case <-maxC:
			fire("max_delay")
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Content watcher error", logfields.Error(err))
		}
	}
}

// relevant filters events down to markdown files and directory structure
// changes. New directories are added to the watch set.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	rel, err := filepath.Rel(w.cfg.Dir, ev.Name)
	if err != nil || hidden(rel) {
		return false
	}
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
			}
			return true
		}
	}
	switch strings.ToLower(filepath.Ext(ev.Name)) {
	case ".md", ".mdx":
		return true
	case "":
		// removed or renamed directories
		return ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename)
	}
	return false
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(p); err != nil {
			return ferrors.FileSystemError("watch directory").WithCause(err).WithContext("path", p).Build()
		}
		return nil
	})
}

func hidden(rel string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(seg, ".") && seg != "." && seg != ".." {
			return true
		}
	}
	return false
}

func stoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	t.Stop()
	return t
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
