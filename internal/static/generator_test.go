package static

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/slug"
	helpers "git.home.luguber.info/inful/docsite/internal/testutil/testutils"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newGenerator(t *testing.T, fsys fstest.MapFS) *Generator {
	t.Helper()
	idx, err := content.Compile(fsys, content.CompileOptions{SiteTitle: "Acme Docs", Logger: quietLogger()})
	require.NoError(t, err)
	shell, err := site.NewShell(site.Config{
		Title:    "Acme Docs",
		URL:      "https://docs.example.com",
		BasePath: "/docs",
	})
	require.NoError(t, err)
	return NewGenerator(idx, shell, "https://docs.example.com", quietLogger())
}

func TestGenerate_WritesEveryPage(t *testing.T) {
	out := t.TempDir()
	report, err := newGenerator(t, helpers.SampleContent()).Generate(context.Background(), out)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Pages)
	assert.Empty(t, report.BrokenLinks)
	assert.Len(t, report.Files, 7)

	helpers.NewFileAssertions(t, out).
		AssertFileExists("docs/index.html").
		AssertFileContains("docs/index.html", "<title>Home | Acme Docs</title>").
		AssertFileContains("docs/getting-started/index.html", `<span class="image-zoom" data-zoomable="true">`).
		AssertFileExists("docs/guide/index.html").
		AssertFileExists("docs/guide/deploy-to-prod/index.html").
		AssertFileContains("404.html", "Page not found").
		AssertFileContains("sitemap.xml", "<loc>https://docs.example.com/docs/guide</loc>").
		AssertFileContains("robots.txt", "Sitemap: https://docs.example.com/sitemap.xml").
		AssertNoFile("docs/guide/wip/index.html")
}

func TestGenerate_ReportsBrokenLinks(t *testing.T) {
	fsys := fstest.MapFS{
		"index.md": {Data: []byte(strings.Join([]string{
			"# Home",
			"",
			"- [gone](/docs/nowhere)",
			"- [sibling](other)",
			"- [absolute ghost](https://docs.example.com/docs/ghost)",
			"- [external](https://elsewhere.example.org/docs/ghost)",
			"- [anchor](#top)",
			"- [mail](mailto:team@example.com)",
		}, "\n"))},
		"other.md": {Data: []byte("# Other\n")},
	}

	report, err := newGenerator(t, fsys).Generate(context.Background(), t.TempDir())
	require.NoError(t, err)

	require.Len(t, report.BrokenLinks, 2)
	assert.Equal(t, BrokenLink{Page: "/docs", URL: "/docs/nowhere", Text: "gone"}, report.BrokenLinks[0])
	assert.Equal(t, BrokenLink{Page: "/docs", URL: "https://docs.example.com/docs/ghost", Text: "absolute ghost"}, report.BrokenLinks[1])
}

func TestGenerate_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newGenerator(t, helpers.SampleContent()).Generate(ctx, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractLinks(t *testing.T) {
	links, err := ExtractLinks(strings.NewReader(`<html><head><link rel="canonical" href="/docs"></head>
<body><a href="/docs/a">First <em>link</em></a><img src="/img/x.png" alt="X"><a name="no-href">skip</a></body></html>`))
	require.NoError(t, err)

	require.Len(t, links, 3)
	assert.Equal(t, Link{URL: "/docs", Text: "canonical", Tag: "link", Attribute: "href"}, links[0])
	assert.Equal(t, Link{URL: "/docs/a", Text: "First link", Tag: "a", Attribute: "href"}, links[1])
	assert.Equal(t, Link{URL: "/img/x.png", Text: "X", Tag: "img", Attribute: "src"}, links[2])
}

func TestSitePath(t *testing.T) {
	page := &url.URL{Path: "/docs/guide/"}
	siteURL, _ := url.Parse("https://docs.example.com")

	tests := []struct {
		link   string
		want   string
		wantOK bool
	}{
		{"/docs/a", "/docs/a", true},
		{"deploy", "/docs/guide/deploy", true},
		{"../intro?x=1#frag", "/docs/intro", true},
		{"a%2Fb", "/docs/guide/a%2Fb", true},
		{"a%20b", "/docs/guide/a%20b", true},
		{"https://docs.example.com/docs/b", "/docs/b", true},
		{"https://other.example.com/docs/b", "", false},
		{"#local", "", false},
		{"mailto:a@example.com", "", false},
	}
	for _, tt := range tests {
		got, ok := sitePath(tt.link, page, siteURL)
		assert.Equal(t, tt.wantOK, ok, tt.link)
		assert.Equal(t, tt.want, got, tt.link)
	}
}

func TestPageFile(t *testing.T) {
	assert.Equal(t, filepath.Join("docs", "index.html"), pageFile("/docs", nil))
	assert.Equal(t, filepath.Join("docs", "guide", "deploy", "index.html"), pageFile("/docs/", slug.New("guide", "deploy")))
	assert.Equal(t, "index.html", pageFile("/", nil))
}
