// Package content compiles source documents into an immutable Content Index
// and publishes indexes to readers through a Store.
package content

import (
	"git.home.luguber.info/inful/docsite/internal/render"
	"git.home.luguber.info/inful/docsite/internal/slug"
)

// TOCItem is one table-of-contents entry.
type TOCItem struct {
	Title  string `json:"title"`
	Anchor string `json:"anchor"`
	Depth  int    `json:"depth"`
}

// Document is a compiled page. Documents are shared between requests and
// must be treated as read-only.
type Document struct {
	Slug        slug.Slug
	Title       string
	Description string
	Icon        string
	Body        render.Body
	TOC         []TOCItem
	// Full requests the full-width layout.
	Full        bool
	Fingerprint string
	SourcePath  string
}

// RootPolicy decides what happens at the docs root when no index document
// was compiled.
type RootPolicy string

const (
	// RootPolicyNotFound leaves the root unresolvable.
	RootPolicyNotFound RootPolicy = "not_found"
	// RootPolicyIndex synthesizes a listing of every page.
	RootPolicyIndex RootPolicy = "index"
)
