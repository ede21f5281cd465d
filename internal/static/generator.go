// Package static renders every page of the content index to files so the
// site can be hosted without the server.
package static

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"git.home.luguber.info/inful/docsite/internal/content"
	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/resolver"
	"git.home.luguber.info/inful/docsite/internal/site"
	"git.home.luguber.info/inful/docsite/internal/slug"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// BrokenLink is an in-site link whose target page does not exist.
type BrokenLink struct {
	Page string
	URL  string
	Text string
}

// Report summarises a generation run.
type Report struct {
	Pages       int
	Files       []string
	BrokenLinks []BrokenLink
	Duration    time.Duration
}

// Generator writes the static site for one index.
type Generator struct {
	index    *content.Index
	shell    *site.Shell
	resolver *resolver.Resolver
	siteURL  *url.URL
	logger   *slog.Logger
}

// NewGenerator prepares a generator. siteURL is used to recognise absolute
// links back into the site and may be empty.
func NewGenerator(idx *content.Index, shell *site.Shell, siteURL string, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{
		index:    idx,
		shell:    shell,
		resolver: resolver.New(idx, resolver.WithLogger(logger)),
		logger:   logger,
	}
	if u, err := url.Parse(siteURL); err == nil && u.Host != "" {
		g.siteURL = u
	}
	return g
}

// Generate writes DIR/<base>/<slug>/index.html for every slug, a 404 page,
// sitemap.xml and robots.txt, then audits in-site links.
func (g *Generator) Generate(ctx context.Context, outDir string) (*Report, error) {
	start := time.Now()
	report := &Report{}
	nav := site.BuildNav(g.index, g.shell.BasePath())
	params := g.resolver.GenerateParams()
	pages := make(map[string][]byte, len(params))

	for _, s := range params {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ri, err := g.resolver.ResolvePage(s)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := g.shell.RenderPage(&buf, ri, nav); err != nil {
			return nil, ferrors.RenderError("page render failed").
				WithCause(err).
				WithContext("slug", s.String()).
				Build()
		}
		rel := pageFile(g.shell.BasePath(), s)
		if err := writeFile(outDir, rel, buf.Bytes()); err != nil {
			return nil, err
		}
		pages[s.URL(g.shell.BasePath())] = buf.Bytes()
		report.Files = append(report.Files, rel)
		report.Pages++
	}

	var notFound bytes.Buffer
	if err := g.shell.RenderNotFound(&notFound, "/404.html", nav); err != nil {
		return nil, ferrors.RenderError("not-found page render failed").WithCause(err).Build()
	}
	var sitemap, robots bytes.Buffer
	if err := g.shell.WriteSitemap(&sitemap, params); err != nil {
		return nil, ferrors.InternalError("sitemap generation failed").WithCause(err).Build()
	}
	if err := g.shell.WriteRobots(&robots); err != nil {
		return nil, ferrors.InternalError("robots generation failed").WithCause(err).Build()
	}
	for _, f := range []struct {
		rel  string
		data []byte
	}{
		{"404.html", notFound.Bytes()},
		{"sitemap.xml", sitemap.Bytes()},
		{"robots.txt", robots.Bytes()},
	} {
		if err := writeFile(outDir, f.rel, f.data); err != nil {
			return nil, err
		}
		report.Files = append(report.Files, f.rel)
	}

	broken, err := g.audit(pages)
	if err != nil {
		return nil, err
	}
	report.BrokenLinks = broken
	report.Duration = time.Since(start)

	for _, b := range broken {
		g.logger.Warn("Broken internal link",
			logfields.Path(b.Page),
			logfields.URL(b.URL),
			logfields.Title(b.Text))
	}
	g.logger.Info("Static site generated",
		logfields.Documents(report.Pages),
		slog.Int("files", len(report.Files)),
		slog.Int("broken_links", len(broken)),
		logfields.DurationMS(float64(report.Duration.Microseconds())/1000))
	return report, nil
}

// audit checks every link under the docs base path against the index.
func (g *Generator) audit(pages map[string][]byte) ([]BrokenLink, error) {
	base := "/" + strings.Trim(g.shell.BasePath(), "/")
	paths := make([]string, 0, len(pages))
	for p := range pages {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var broken []BrokenLink
	for _, pagePath := range paths {
		links, err := ExtractLinks(bytes.NewReader(pages[pagePath]))
		if err != nil {
			return nil, err
		}
		pageURL := &url.URL{Path: strings.TrimSuffix(pagePath, "/") + "/"}
		for _, l := range links {
			target, ok := sitePath(l.URL, pageURL, g.siteURL)
			if !ok {
				continue
			}
			s, inDocs := slug.Parse(target, base)
			if !inDocs {
				continue
			}
			if _, found := g.index.GetPage(s); !found {
				broken = append(broken, BrokenLink{Page: pagePath, URL: l.URL, Text: l.Text})
			}
		}
	}
	return broken, nil
}

// pageFile maps a slug to its output path relative to the output directory.
func pageFile(basePath string, s slug.Slug) string {
	parts := []string{}
	if b := strings.Trim(basePath, "/"); b != "" {
		parts = append(parts, strings.Split(b, "/")...)
	}
	parts = append(parts, s...)
	parts = append(parts, "index.html")
	return filepath.Join(parts...)
}

func writeFile(outDir, rel string, data []byte) error {
	full := filepath.Join(outDir, rel)
	if err := os.MkdirAll(filepath.Dir(full), dirPerm); err != nil {
		return ferrors.FileSystemError("create output directory failed").
			WithCause(err).
			WithContext("path", filepath.Dir(full)).
			Build()
	}
	if err := os.WriteFile(full, data, filePerm); err != nil {
		return ferrors.FileSystemError(fmt.Sprintf("write %s failed", rel)).
			WithCause(err).
			WithContext("path", full).
			Build()
	}
	return nil
}
