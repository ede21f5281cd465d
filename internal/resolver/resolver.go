// Package resolver maps request slugs to render instructions and head
// metadata for the docs routes.
package resolver

import (
	"io"
	"log/slog"

	"git.home.luguber.info/inful/docsite/internal/content"
	ferrors "git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/icons"
	"git.home.luguber.info/inful/docsite/internal/logfields"
	"git.home.luguber.info/inful/docsite/internal/metrics"
	"git.home.luguber.info/inful/docsite/internal/render"
	"git.home.luguber.info/inful/docsite/internal/slug"
)

// ErrNotFound is returned when no document is compiled for a slug.
// It is a client condition: mapped to 404, never retried.
var ErrNotFound = ferrors.NotFoundError("page not found").Build()

// Source is the read side of the content index. Both *content.Index and
// *content.Store satisfy it.
type Source interface {
	GetPage(s slug.Slug) (*content.Document, bool)
	GenerateParams() []slug.Slug
	ResolveIcon(name string) (icons.Icon, bool)
}

// Metadata is the head metadata for a page.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// RenderInstruction bundles everything the shell needs to produce a page.
type RenderInstruction struct {
	Slug        slug.Slug
	Title       string
	Description string
	TOC         []content.TOCItem
	Full        bool
	// Icon is nil when the document names no icon or an unknown one.
	Icon        *icons.Icon
	Fingerprint string

	body      render.Body
	overrides render.Overrides
}

// Render writes the body using the overrides chosen at resolve time.
func (ri *RenderInstruction) Render(w io.Writer) error {
	return ri.body.Render(w, ri.overrides)
}

// StandardOverrides returns the element overrides used for docs pages:
// zoomable images and highlighted code blocks with their background kept.
// The "ref" prop is stripped before the code renderer sees it.
func StandardOverrides() render.Overrides {
	return render.Overrides{
		render.KindImage: render.ImageZoom,
		render.KindPre:   render.WithoutRef(render.CodeBlock{KeepBackground: true}.Render),
	}
}

// Resolver resolves slugs against a Source.
type Resolver struct {
	source    Source
	overrides render.Overrides
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithOverrides replaces the standard overrides.
func WithOverrides(o render.Overrides) Option {
	return func(r *Resolver) { r.overrides = o }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Resolver) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New builds a Resolver over src.
func New(src Source, opts ...Option) *Resolver {
	r := &Resolver{
		source:    src,
		overrides: StandardOverrides(),
		recorder:  metrics.NoopRecorder{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolvePage returns the render instruction for s, or ErrNotFound.
func (r *Resolver) ResolvePage(s slug.Slug) (*RenderInstruction, error) {
	doc, err := r.lookup(s)
	if err != nil {
		return nil, err
	}
	ri := &RenderInstruction{
		Slug:        doc.Slug,
		Title:       doc.Title,
		Description: doc.Description,
		TOC:         doc.TOC,
		Full:        doc.Full,
		Fingerprint: doc.Fingerprint,
		body:        doc.Body,
		overrides:   r.overrides,
	}
	if icon, ok := r.source.ResolveIcon(doc.Icon); ok {
		ri.Icon = &icon
	}
	return ri, nil
}

// ResolveMetadata returns title and description for s, or ErrNotFound.
// The body is not touched.
func (r *Resolver) ResolveMetadata(s slug.Slug) (Metadata, error) {
	doc, err := r.lookup(s)
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{Title: doc.Title, Description: doc.Description}, nil
}

// GenerateParams lists every resolvable slug.
func (r *Resolver) GenerateParams() []slug.Slug {
	return r.source.GenerateParams()
}

func (r *Resolver) lookup(s slug.Slug) (*content.Document, error) {
	doc, ok := r.source.GetPage(s)
	if !ok {
		r.recorder.IncPageResolve(metrics.ResolveNotFound)
		r.logger.Debug("Page not found", logfields.Slug(s.Key()))
		return nil, ErrNotFound.WithContext("slug", s.String())
	}
	r.recorder.IncPageResolve(metrics.ResolveFound)
	return doc, nil
}
