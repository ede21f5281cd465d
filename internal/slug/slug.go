// Package slug models the hierarchical document identifier used by the
// content index and the docs routes.
package slug

import (
	"net/url"
	"path"
	"strings"
)

// Slug is an ordered sequence of path segments. The empty slug identifies
// the root document.
type Slug []string

// Root is the empty slug.
var Root = Slug{}

// New copies segments into a Slug.
func New(segments ...string) Slug {
	out := make(Slug, len(segments))
	copy(out, segments)
	return out
}

// Key joins the segments with "/" and is the index map key. The root key is "".
func (s Slug) Key() string {
	return strings.Join(s, "/")
}

// Valid reports whether every segment is non-empty and free of "/". Only
// valid slugs can be produced by the content compiler, so anything else can
// never match a document.
func (s Slug) Valid() bool {
	for _, seg := range s {
		if seg == "" || strings.Contains(seg, "/") {
			return false
		}
	}
	return true
}

// IsRoot reports whether s is the empty slug.
func (s Slug) IsRoot() bool { return len(s) == 0 }

// Equal compares two slugs segment by segment.
func (s Slug) Equal(other Slug) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not share backing storage with s.
func (s Slug) Clone() Slug { return New(s...) }

// URL renders the slug under base, escaping each segment.
func (s Slug) URL(base string) string {
	base = "/" + strings.Trim(base, "/")
	if s.IsRoot() {
		return base
	}
	escaped := make([]string, len(s))
	for i, seg := range s {
		escaped[i] = url.PathEscape(seg)
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.Join(escaped, "/")
}

func (s Slug) String() string {
	if s.IsRoot() {
		return "/"
	}
	return s.Key()
}

// FromKey splits a "/"-joined key. Empty segments are dropped, the same as
// Parse does for request paths, so "a//b" and "a/b" address one page.
func FromKey(key string) Slug {
	return split(key)
}

// Parse extracts the slug from an escaped request path (url.URL.EscapedPath)
// mounted under base, for example "/docs". Each segment is unescaped once;
// segments that fail to unescape are kept verbatim. An escaped "/" stays
// inside its segment and yields an invalid slug. ok is false when the path
// is outside base.
func Parse(requestPath, base string) (s Slug, ok bool) {
	base = "/" + strings.Trim(base, "/")
	p := "/" + strings.TrimLeft(requestPath, "/")
	if base != "/" {
		if p != base && !strings.HasPrefix(p, base+"/") {
			return nil, false
		}
		p = strings.TrimPrefix(p, base)
	}

	segs := split(p)
	for i, seg := range segs {
		if u, err := url.PathUnescape(seg); err == nil {
			segs[i] = u
		}
	}
	return segs, true
}

// FromFile derives a slug from a content file path relative to the content
// root: the extension is dropped and a trailing "index" segment collapses into
// its directory, so "index.md" is the root and "guide/index.md" is ["guide"].
func FromFile(rel string) Slug {
	rel = strings.ReplaceAll(rel, "\\", "/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	segs := split(rel)
	if n := len(segs); n > 0 && segs[n-1] == "index" {
		segs = segs[:n-1]
	}
	return segs
}

func split(p string) Slug {
	parts := strings.Split(p, "/")
	out := make(Slug, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
