package content

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/frontmatter"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/markdown"
	"git.home.luguber.info/inful/docsite/internal/render"
	"git.home.luguber.info/inful/docsite/internal/slug"
)

const (
	defaultSiteTitle = "Documentation"
	defaultBasePath  = "/docs"
	minTOCDepth      = 2
	maxTOCDepth      = 6
)

// CompileOptions control how a content tree is compiled.
type CompileOptions struct {
	// SiteTitle titles the root document when it has no title of its own.
	SiteTitle string
	// BasePath prefixes links in a synthesized root listing.
	BasePath      string
	IncludeDrafts bool
	RootPolicy    RootPolicy
	Logger        *slog.Logger
}

func (o CompileOptions) withDefaults() CompileOptions {
	if o.SiteTitle == "" {
		o.SiteTitle = defaultSiteTitle
	}
	if o.BasePath == "" {
		o.BasePath = defaultBasePath
	}
	if o.RootPolicy == "" {
		o.RootPolicy = RootPolicyNotFound
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Compile walks fsys for .md and .mdx files and builds an Index.
// Hidden files and directories and files starting with "_" are skipped.
func Compile(fsys fs.FS, opts CompileOptions) (*Index, error) {
	opts = opts.withDefaults()
	start := time.Now()
	c := &compiler{opts: opts, md: markdown.New(), docs: make(map[string]*Document)}

	if err := fs.WalkDir(fsys, ".", c.visit(fsys)); err != nil {
		return nil, ferrors.DocsError("content compilation failed").WithCause(err).Build()
	}

	if _, ok := c.docs[slug.Root.Key()]; !ok && opts.RootPolicy == RootPolicyIndex {
		c.docs[slug.Root.Key()] = c.synthesizeRoot()
	}

	idx := newIndex(c.docs)
	opts.Logger.Info("Content compiled",
		logfields.Documents(idx.Len()),
		slog.Int("drafts_skipped", c.drafts),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return idx, nil
}

type compiler struct {
	opts   CompileOptions
	md     goldmark.Markdown
	docs   map[string]*Document
	drafts int
}

func (c *compiler) visit(fsys fs.FS) fs.WalkDirFunc {
	return func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || !isMarkdown(name) {
			return nil
		}

		doc, err := c.compileFile(fsys, p)
		if err != nil {
			return err
		}
		if doc == nil {
			c.drafts++
			c.opts.Logger.Debug("Skipping draft", logfields.File(p))
			return nil
		}

		key := doc.Slug.Key()
		if prev, dup := c.docs[key]; dup {
			return fmt.Errorf("%w: %q from %s and %s", ErrDuplicateSlug, doc.Slug.String(), prev.SourcePath, p)
		}
		c.docs[key] = doc
		return nil
	}
}

// compileFile returns nil without error for drafts that are excluded.
func (c *compiler) compileFile(fsys fs.FS, p string) (*Document, error) {
	raw, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadDocument, p, err)
	}
	fm, body, _, err := frontmatter.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFrontmatter, p, err)
	}
	fields, err := frontmatter.Decode(fm)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFrontmatter, p, err)
	}
	if fields.Draft && !c.opts.IncludeDrafts {
		return nil, nil
	}

	s := slug.FromFile(p)
	tree := markdown.Parse(c.md, body)

	title := fields.Title
	if title == "" {
		title, _ = markdown.FirstTitle(tree, body)
	}
	if title == "" {
		title = c.fallbackTitle(s)
	}

	return &Document{
		Slug:        s,
		Title:       title,
		Description: fields.Description,
		Icon:        fields.Icon,
		Body:        render.NewMarkdownBody(body, tree),
		TOC:         buildTOC(markdown.Headings(tree, body)),
		Full:        fields.Full,
		Fingerprint: frontmatter.Fingerprint(fm, body),
		SourcePath:  p,
	}, nil
}

func (c *compiler) fallbackTitle(s slug.Slug) string {
	if s.IsRoot() {
		return c.opts.SiteTitle
	}
	last := strings.NewReplacer("-", " ", "_", " ").Replace(s[len(s)-1])
	return cases.Title(language.English).String(last)
}

// synthesizeRoot builds a listing page linking every compiled document.
func (c *compiler) synthesizeRoot() *Document {
	idx := newIndex(c.docs)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.opts.SiteTitle)
	for _, s := range idx.slugs {
		doc := idx.docs[s.Key()]
		fmt.Fprintf(&b, "- [%s](%s)", escapeLinkText(doc.Title), s.URL(c.opts.BasePath))
		if doc.Description != "" {
			fmt.Fprintf(&b, ": %s", doc.Description)
		}
		b.WriteByte('\n')
	}
	source := []byte(b.String())
	tree := markdown.Parse(c.md, source)
	return &Document{
		Slug:        slug.Root,
		Title:       c.opts.SiteTitle,
		Body:        render.NewMarkdownBody(source, tree),
		Fingerprint: frontmatter.Fingerprint(nil, source),
		SourcePath:  "",
	}
}

func buildTOC(headings []markdown.Heading) []TOCItem {
	toc := make([]TOCItem, 0, len(headings))
	for _, h := range headings {
		if h.Level < minTOCDepth || h.Level > maxTOCDepth {
			continue
		}
		toc = append(toc, TOCItem{Title: h.Text, Anchor: "#" + h.ID, Depth: h.Level})
	}
	return toc
}

func isMarkdown(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".mdx":
		return true
	}
	return false
}

func escapeLinkText(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}
