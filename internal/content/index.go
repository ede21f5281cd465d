package content

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/icons"
	"git.home.luguber.info/inful/docsite/internal/slug"
)

// Index is the immutable slug → document map produced by Compile.
// It is safe for concurrent use without locking.
type Index struct {
	docs  map[string]*Document
	slugs []slug.Slug
}

func newIndex(docs map[string]*Document) *Index {
	m := make(map[string]*Document, len(docs))
	slugs := make([]slug.Slug, 0, len(docs))
	for k, d := range docs {
		m[k] = d
		slugs = append(slugs, d.Slug)
	}
	slices.SortFunc(slugs, func(a, b slug.Slug) int { return strings.Compare(a.Key(), b.Key()) })
	return &Index{docs: m, slugs: slugs}
}

// GetPage returns the document for s. A nil or empty slug addresses the root.
// Invalid slugs always miss.
func (i *Index) GetPage(s slug.Slug) (*Document, bool) {
	if i == nil || !s.Valid() {
		return nil, false
	}
	d, ok := i.docs[s.Key()]
	return d, ok
}

// GenerateParams lists every slug once, sorted by key. The returned slugs
// are copies.
func (i *Index) GenerateParams() []slug.Slug {
	if i == nil {
		return nil
	}
	out := make([]slug.Slug, len(i.slugs))
	for n, s := range i.slugs {
		out[n] = s.Clone()
	}
	return out
}

// ResolveIcon looks up a named icon. Empty or unknown names return false.
func (i *Index) ResolveIcon(name string) (icons.Icon, bool) {
	return icons.Resolve(name)
}

// Len reports the number of documents.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.docs)
}
