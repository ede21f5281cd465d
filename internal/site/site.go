// Package site wraps rendered document bodies in the HTML page shell:
// head metadata, OpenGraph tags, JSON-LD, navigation and the feedback widget.
package site

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/content"
	"git.home.luguber.info/inful/docsite/internal/icons"
	"git.home.luguber.info/inful/docsite/internal/resolver"
	"git.home.luguber.info/inful/docsite/internal/slug"
)

// Config is the site identity.
type Config struct {
	Title        string
	Description  string
	URL          string
	Logo         string
	SameAs       []string
	Organization string
	BasePath     string
	// FeedbackEndpoint enables the rating widget when non-empty.
	FeedbackEndpoint string
}

// NavItem is one sidebar entry.
type NavItem struct {
	Title  string
	URL    string
	Depth  int
	Icon   *icons.Icon
	Active bool
}

type pageData struct {
	Site        Config
	Title       string
	HeadTitle   string
	Description string
	Canonical   string
	Path        string
	Icon        *icons.Icon
	TOC         []content.TOCItem
	Full        bool
	Body        template.HTML
	Nav         []NavItem
	JSONLD      template.JS
	NotFound    bool
}

// Shell renders full HTML pages.
type Shell struct {
	cfg    Config
	tmpl   *template.Template
	jsonLD template.JS
}

// NewShell parses the page template and precomputes the structured data.
func NewShell(cfg Config) (*Shell, error) {
	if cfg.BasePath == "" {
		cfg.BasePath = "/docs"
	}
	cfg.URL = strings.TrimSuffix(cfg.URL, "/")
	tmpl, err := template.New("page").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}
	ld, err := jsonLDScript(cfg)
	if err != nil {
		return nil, fmt.Errorf("build structured data: %w", err)
	}
	return &Shell{cfg: cfg, tmpl: tmpl, jsonLD: ld}, nil
}

// BasePath is the mount point of the docs pages.
func (s *Shell) BasePath() string { return s.cfg.BasePath }

// HeadTitle is "<page> | <site>", or just the site title when they match.
func (s *Shell) HeadTitle(pageTitle string) string {
	if pageTitle == "" || pageTitle == s.cfg.Title {
		return s.cfg.Title
	}
	return pageTitle + " | " + s.cfg.Title
}

// RenderPage renders ri into the shell. The body is rendered first so a
// body error leaves w untouched.
func (s *Shell) RenderPage(w io.Writer, ri *resolver.RenderInstruction, nav []NavItem) error {
	var body bytes.Buffer
	if err := ri.Render(&body); err != nil {
		return fmt.Errorf("render body for %s: %w", ri.Slug.String(), err)
	}
	path := ri.Slug.URL(s.cfg.BasePath)
	data := pageData{
		Site:        s.cfg,
		Title:       ri.Title,
		HeadTitle:   s.HeadTitle(ri.Title),
		Description: ri.Description,
		Canonical:   s.absolute(path),
		Path:        path,
		Icon:        ri.Icon,
		TOC:         ri.TOC,
		Full:        ri.Full,
		// #nosec G203 -- body markup is produced by the markdown renderer from repository content.
		Body:   template.HTML(body.String()),
		Nav:    markActive(nav, path),
		JSONLD: s.jsonLD,
	}
	return s.execute(w, data)
}

// RenderNotFound renders the 404 page.
func (s *Shell) RenderNotFound(w io.Writer, requestPath string, nav []NavItem) error {
	data := pageData{
		Site:        s.cfg,
		Title:       "Page not found",
		HeadTitle:   s.HeadTitle("Page not found"),
		Description: s.cfg.Description,
		Path:        requestPath,
		Nav:         nav,
		JSONLD:      s.jsonLD,
		NotFound:    true,
	}
	return s.execute(w, data)
}

func (s *Shell) execute(w io.Writer, data pageData) error {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute page template: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (s *Shell) absolute(path string) string {
	if s.cfg.URL == "" {
		return ""
	}
	return s.cfg.URL + path
}

// NavSource is the part of the content index the navigation needs.
type NavSource interface {
	GenerateParams() []slug.Slug
	GetPage(s slug.Slug) (*content.Document, bool)
}

// BuildNav lists every document in slug order, indented by depth.
func BuildNav(src NavSource, basePath string) []NavItem {
	params := src.GenerateParams()
	items := make([]NavItem, 0, len(params))
	for _, s := range params {
		doc, ok := src.GetPage(s)
		if !ok {
			continue
		}
		item := NavItem{Title: doc.Title, URL: s.URL(basePath), Depth: len(s)}
		if icon, ok := icons.Resolve(doc.Icon); ok {
			item.Icon = &icon
		}
		items = append(items, item)
	}
	return items
}

func markActive(nav []NavItem, path string) []NavItem {
	out := make([]NavItem, len(nav))
	for i, item := range nav {
		item.Active = item.URL == path
		out[i] = item
	}
	return out
}
