package watch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/slug"
	helpers "git.home.luguber.info/inful/docsite/internal/testutil/testutils"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type reindexSpy struct {
	metrics.NoopRecorder
	mu        sync.Mutex
	successes int
	failures  int
	documents int
}

func (s *reindexSpy) ObserveReindex(_ time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ok {
		s.successes++
	} else {
		s.failures++
	}
}

func (s *reindexSpy) SetIndexedDocuments(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = n
}

func compileSample(t *testing.T) *content.Index {
	t.Helper()
	idx, err := content.Compile(helpers.SampleContent(), content.CompileOptions{Logger: quietLogger()})
	require.NoError(t, err)
	return idx
}

func TestReindexer_SwapsOnSuccess(t *testing.T) {
	store := content.NewStore(nil)
	spy := &reindexSpy{}
	idx := compileSample(t)
	r := NewReindexer(store, func(context.Context) (*content.Index, error) { return idx, nil }, spy, quietLogger())

	require.NoError(t, r.Reindex(context.Background(), "test"))
	assert.Same(t, idx, store.Current())
	assert.Equal(t, 1, spy.successes)
	assert.Equal(t, 4, spy.documents)

	_, ok := store.GetPage(slug.New("getting-started"))
	assert.True(t, ok)
}

func TestReindexer_KeepsPreviousIndexOnFailure(t *testing.T) {
	prev := compileSample(t)
	store := content.NewStore(prev)
	spy := &reindexSpy{}
	boom := errors.New("boom")
	r := NewReindexer(store, func(context.Context) (*content.Index, error) { return nil, boom }, spy, quietLogger())

	err := r.Reindex(context.Background(), "test")
	require.ErrorIs(t, err, boom)
	assert.Same(t, prev, store.Current())
	assert.Equal(t, 1, spy.failures)
	assert.Equal(t, 0, spy.successes)
}

func startWatcher(t *testing.T, dir string, calls *atomic.Int32) {
	t.Helper()
	w, err := NewWatcher(WatcherConfig{Dir: dir, QuietWindow: 150 * time.Millisecond, MaxDelay: 2 * time.Second},
		func(context.Context, string) { calls.Add(1) }, quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-w.Ready():
	case <-time.After(time.Second):
		t.Fatal("watcher did not become ready")
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.md"), "# Home\n")

	var calls atomic.Int32
	startWatcher(t, dir, &calls)

	for i := range 5 {
		writeFile(t, filepath.Join(dir, "page.md"), "# Page "+string(rune('A'+i))+"\n")
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestWatcher_IgnoresNonMarkdownAndHidden(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))

	var calls atomic.Int32
	startWatcher(t, dir, &calls)

	writeFile(t, filepath.Join(dir, "logo.png"), "png")
	writeFile(t, filepath.Join(dir, ".git", "HEAD.md"), "ref")
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
}

func TestWatcher_FollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()

	var calls atomic.Int32
	startWatcher(t, dir, &calls)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "guide"), 0o755))
	require.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)

	writeFile(t, filepath.Join(dir, "guide", "intro.md"), "# Intro\n")
	require.Eventually(t, func() bool { return calls.Load() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestHidden(t *testing.T) {
	assert.True(t, hidden(".git/HEAD"))
	assert.True(t, hidden("guide/.drafts/x.md"))
	assert.False(t, hidden("guide/intro.md"))
	assert.False(t, hidden("."))
}

func TestScheduler_RunsReindex(t *testing.T) {
	s, err := NewScheduler(quietLogger())
	require.NoError(t, err)

	var calls atomic.Int32
	id, err := s.ScheduleReindex(context.Background(), "* * * * * *", func(context.Context) { calls.Add(1) })
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	s.Start()
	t.Cleanup(func() { _ = s.Stop() })
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_RejectsBadExpression(t *testing.T) {
	s, err := NewScheduler(quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	_, err = s.ScheduleReindex(context.Background(), "every tuesday", func(context.Context) {})
	assert.Error(t, err)
}

func TestScheduler_SkipsAfterContextCancel(t *testing.T) {
	s, err := NewScheduler(quietLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls atomic.Int32
	_, err = s.ScheduleReindex(ctx, "* * * * * *", func(context.Context) { calls.Add(1) })
	require.NoError(t, err)

	s.Start()
	time.Sleep(1500 * time.Millisecond)
	require.NoError(t, s.Stop())
	assert.Equal(t, int32(0), calls.Load())
}
