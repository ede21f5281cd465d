package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/feedback"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/slug"
	"git.home.luguber.info/inful/docsite/internal/watch"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	return cfg
}

func writeDocs(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for rel, body := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}
	return dir
}

func TestSiteConfig(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Site.Title = "Acme Docs"
	cfg.Site.URL = "https://docs.example.com"

	sc := siteConfig(cfg, "/api/feedback")
	assert.Equal(t, "Acme Docs", sc.Title)
	assert.Equal(t, "Acme Docs", sc.Organization)
	assert.Equal(t, "/docs", sc.BasePath)
	assert.Equal(t, "/api/feedback", sc.FeedbackEndpoint)
	assert.Equal(t, "https://docs.example.com", sc.URL)
}

func TestCompileOptions(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Content.RootPolicy = config.RootPolicyIndex
	cfg.Content.IncludeDrafts = true

	opts := compileOptions(cfg, quietLogger())
	assert.Equal(t, content.RootPolicyIndex, opts.RootPolicy)
	assert.True(t, opts.IncludeDrafts)
	assert.Equal(t, "/docs", opts.BasePath)
}

func TestPrepareContent_LocalDirectory(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Content.Dir = writeDocs(t, map[string]string{
		"index.md":       "# Home\n",
		"guide/intro.md": "# Intro\n",
	})

	idx, src, err := prepareContent(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, src)
	assert.Equal(t, 2, idx.Len())
	_, ok := idx.GetPage(slug.New("guide", "intro"))
	assert.True(t, ok)
}

func TestBuildSink(t *testing.T) {
	cfg := defaultConfig(t)

	t.Run("log only", func(t *testing.T) {
		cfg.Feedback.Sinks = []config.SinkKind{config.SinkLog}
		sink, err := buildSink(context.Background(), cfg, quietLogger())
		require.NoError(t, err)
		assert.Equal(t, "log", sink.Name())
	})

	t.Run("log and sqlite", func(t *testing.T) {
		cfg.Feedback.Sinks = []config.SinkKind{config.SinkLog, config.SinkSQLite}
		cfg.Feedback.SQLite.Path = filepath.Join(t.TempDir(), "data", "feedback.db")
		sink, err := buildSink(context.Background(), cfg, quietLogger())
		require.NoError(t, err)
		t.Cleanup(func() { _ = sink.Close() })
		assert.Equal(t, "multi(log,sqlite)", sink.Name())
		assert.FileExists(t, cfg.Feedback.SQLite.Path)
	})

	t.Run("nats misconfigured", func(t *testing.T) {
		cfg.Feedback.Sinks = []config.SinkKind{config.SinkLog, config.SinkNATS}
		cfg.Feedback.NATS.URL = ""
		_, err := buildSink(context.Background(), cfg, quietLogger())
		assert.Error(t, err)
	})
}

func TestWriteRoutes(t *testing.T) {
	params := []slug.Slug{slug.Root, slug.New("guide"), slug.New("guide", "intro")}

	var text bytes.Buffer
	require.NoError(t, writeRoutes(&text, params, "/docs", false))
	assert.Equal(t, "/docs\n/docs/guide\n/docs/guide/intro\n", text.String())

	var js bytes.Buffer
	require.NoError(t, writeRoutes(&js, params, "/docs", true))
	var entries []routeEntry
	require.NoError(t, json.Unmarshal(js.Bytes(), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, []string{}, entries[0].Slug)
	assert.Equal(t, []string{"guide", "intro"}, entries[2].Slug)
	assert.Contains(t, js.String(), `"slug": []`)
}

func TestFeedbackCmd_CollectAndTable(t *testing.T) {
	db, err := feedback.NewSQLiteSink(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	events := []feedback.Event{
		{ID: "old", Name: feedback.EventName, URL: "/docs/old", Opinion: feedback.OpinionBad, Timestamp: now.Add(-48 * time.Hour)},
		{ID: "a", Name: feedback.EventName, URL: "/docs/a", Opinion: feedback.OpinionGood, Message: "clear\nand short", Timestamp: now.Add(-time.Hour)},
		{ID: "b", Name: feedback.EventName, URL: "/docs/b", Opinion: feedback.OpinionBad, Timestamp: now.Add(-2 * time.Hour)},
	}
	for _, ev := range events {
		require.NoError(t, db.Deliver(ctx, ev))
	}

	cmd := &FeedbackCmd{Since: 24 * time.Hour, Limit: 10}
	report, err := cmd.collect(ctx, db, now)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary[feedback.OpinionGood])
	assert.Equal(t, 1, report.Summary[feedback.OpinionBad])
	require.Len(t, report.Events, 2)
	assert.Equal(t, "a", report.Events[0].ID)

	var out bytes.Buffer
	require.NoError(t, writeFeedbackTable(&out, report))
	assert.Contains(t, out.String(), "1 good, 1 bad")
	assert.Contains(t, out.String(), "/docs/a")
	assert.Contains(t, out.String(), "clear and short")
	assert.NotContains(t, out.String(), "/docs/old")
}

func TestWriteFeedbackTable_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeFeedbackTable(&out, &feedbackReport{Summary: map[feedback.Opinion]int{}}))
	assert.Contains(t, out.String(), "No ratings recorded.")
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "a b", oneLine("a\n\tb ", 10))
	assert.Equal(t, "abcd…", oneLine("abcdefgh", 5))
	assert.Equal(t, "", oneLine("", 5))
}

func TestRunInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, RunInit(path, false))
	assert.FileExists(t, path)

	err := RunInit(path, false)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "already exists"))
	require.NoError(t, RunInit(path, true))
}

func TestScheduledReindex_WithoutGitSource(t *testing.T) {
	dir := writeDocs(t, map[string]string{"index.md": "# Home\n"})
	cfg := defaultConfig(t)
	cfg.Content.Dir = dir

	store := content.NewStore(nil)
	r := watch.NewReindexer(store, compiler(cfg, quietLogger()), metrics.NoopRecorder{}, quietLogger())
	scheduledReindex(nil, r, quietLogger())(context.Background())

	require.NotNil(t, store.Current())
	assert.Equal(t, 1, store.Len())
}

func freeAddr(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return "127.0.0.1", port
}

func TestServe_ReleasesResourcesWhenStartupFails(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Content.Dir = writeDocs(t, map[string]string{"index.md": "# Home\n"})
	cfg.Server.Host, cfg.Server.Port = freeAddr(t)
	cfg.Feedback.Sinks = []config.SinkKind{config.SinkLog, config.SinkSQLite}
	cfg.Feedback.SQLite.Path = filepath.Join(t.TempDir(), "feedback.db")
	cfg.Content.Reindex.Schedule = "every tuesday"

	err := serve(context.Background(), cfg, quietLogger())
	require.Error(t, err)

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	require.NoError(t, err, "the HTTP listener is closed after a failed startup")
	require.NoError(t, ln.Close())
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Content.Dir = writeDocs(t, map[string]string{"index.md": "# Home\n"})
	cfg.Server.Host, cfg.Server.Port = freeAddr(t)
	cfg.Feedback.Sinks = []config.SinkKind{config.SinkLog}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, cfg, quietLogger()) }()

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", cfg.Server.Addr())
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
	ln, err := net.Listen("tcp", cfg.Server.Addr())
	require.NoError(t, err)
	require.NoError(t, ln.Close())
}
