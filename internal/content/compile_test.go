package content

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/slug"
	helpers "git.home.luguber.info/inful/docsite/internal/testutil/testutils"
)

func quietOpts() CompileOptions {
	return CompileOptions{SiteTitle: "Acme Docs", Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestCompile_SampleContent(t *testing.T) {
	idx, err := Compile(helpers.SampleContent(), quietOpts())
	require.NoError(t, err)

	keys := make([]string, 0, idx.Len())
	for _, s := range idx.GenerateParams() {
		keys = append(keys, s.Key())
	}
	assert.Equal(t, []string{"", "getting-started", "guide", "guide/deploy-to-prod"}, keys)
}

func TestCompile_DocumentFields(t *testing.T) {
	idx, err := Compile(helpers.SampleContent(), quietOpts())
	require.NoError(t, err)

	doc, ok := idx.GetPage(slug.New("getting-started"))
	require.True(t, ok)
	assert.Equal(t, "Getting Started", doc.Title)
	assert.Equal(t, "Install the CLI and publish your first page.", doc.Description)
	assert.Equal(t, "Rocket", doc.Icon)
	assert.Equal(t, "getting-started.md", doc.SourcePath)
	assert.NotEmpty(t, doc.Fingerprint)
	assert.Equal(t, []TOCItem{
		{Title: "Install", Anchor: "#install", Depth: 2},
		{Title: "Configure", Anchor: "#configure", Depth: 2},
		{Title: "Environment", Anchor: "#environment", Depth: 3},
	}, doc.TOC)

	var buf bytes.Buffer
	require.NoError(t, doc.Body.Render(&buf, nil))
	assert.Contains(t, buf.String(), `<h1 id="welcome">Welcome</h1>`)
}

func TestCompile_TitleFallbacks(t *testing.T) {
	idx, err := Compile(helpers.SampleContent(), quietOpts())
	require.NoError(t, err)

	guide, ok := idx.GetPage(slug.New("guide"))
	require.True(t, ok)
	assert.Equal(t, "Guide", guide.Title, "first H1")

	deploy, ok := idx.GetPage(slug.New("guide", "deploy-to-prod"))
	require.True(t, ok)
	assert.Equal(t, "Deploy To Prod", deploy.Title, "derived from slug")

	idx, err = Compile(fstest.MapFS{"index.md": {Data: []byte("no heading\n")}}, quietOpts())
	require.NoError(t, err)
	root, ok := idx.GetPage(nil)
	require.True(t, ok)
	assert.Equal(t, "Acme Docs", root.Title, "root falls back to site title")
}

func TestCompile_SkipsDraftsHiddenAndPartials(t *testing.T) {
	idx, err := Compile(helpers.SampleContent(), quietOpts())
	require.NoError(t, err)

	for _, s := range []slug.Slug{
		slug.New("guide", "wip"),
		slug.New("guide", "_partial"),
		slug.New(".hidden", "secret"),
	} {
		_, ok := idx.GetPage(s)
		assert.False(t, ok, s.Key())
	}

	opts := quietOpts()
	opts.IncludeDrafts = true
	idx, err = Compile(helpers.SampleContent(), opts)
	require.NoError(t, err)
	wip, ok := idx.GetPage(slug.New("guide", "wip"))
	require.True(t, ok)
	assert.Equal(t, "WIP", wip.Title)
}

func TestCompile_DuplicateSlug(t *testing.T) {
	fsys := fstest.MapFS{
		"guide.md":       {Data: []byte("# One\n")},
		"guide/index.md": {Data: []byte("# Two\n")},
	}

	_, err := Compile(fsys, quietOpts())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateSlug))
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryDocs))
}

func TestCompile_InvalidFrontmatter(t *testing.T) {
	_, err := Compile(fstest.MapFS{"bad.md": {Data: []byte("---\ntitle: x\n")}}, quietOpts())
	require.ErrorIs(t, err, ErrFrontmatter)
}

func TestCompile_RootPolicy(t *testing.T) {
	t.Run("not_found leaves root absent", func(t *testing.T) {
		idx, err := Compile(helpers.SampleContentWithoutRoot(), quietOpts())
		require.NoError(t, err)
		_, ok := idx.GetPage(slug.Root)
		assert.False(t, ok)
	})

	t.Run("index synthesizes a listing", func(t *testing.T) {
		opts := quietOpts()
		opts.RootPolicy = RootPolicyIndex
		idx, err := Compile(helpers.SampleContentWithoutRoot(), opts)
		require.NoError(t, err)

		root, ok := idx.GetPage(slug.Root)
		require.True(t, ok)
		assert.Equal(t, "Acme Docs", root.Title)

		var buf bytes.Buffer
		require.NoError(t, root.Body.Render(&buf, nil))
		assert.Contains(t, buf.String(), `<a href="/docs/getting-started">Getting Started</a>`)
		assert.Contains(t, buf.String(), `<a href="/docs/guide/deploy-to-prod">Deploy To Prod</a>`)
		assert.Equal(t, 4, idx.Len())
	})

	t.Run("compiled root wins over policy", func(t *testing.T) {
		opts := quietOpts()
		opts.RootPolicy = RootPolicyIndex
		idx, err := Compile(helpers.SampleContent(), opts)
		require.NoError(t, err)
		root, ok := idx.GetPage(slug.Root)
		require.True(t, ok)
		assert.Equal(t, "Home", root.Title)
	})
}
