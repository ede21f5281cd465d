// Package render renders parsed document bodies with per-element renderer
// overrides. A Body is immutable and may be rendered concurrently; the
// overrides only exist for the duration of one Render call.
package render

import (
	"io"
	"maps"
	"slices"
)

// Kind names an overridable element.
type Kind string

const (
	// KindImage is an inline image.
	KindImage Kind = "img"
	// KindPre is a fenced or indented code block.
	KindPre Kind = "pre"
)

// Props are the element's properties. For images: src, alt, title. For code
// blocks: language plus any key=value pairs from the fence info string.
type Props map[string]string

// Clone returns an independent copy.
func (p Props) Clone() Props {
	if p == nil {
		return Props{}
	}
	return maps.Clone(p)
}

// Without returns a copy of p with the given keys removed. p is not modified.
func (p Props) Without(keys ...string) Props {
	out := p.Clone()
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// SortedKeys returns the property names in lexical order.
func (p Props) SortedKeys() []string {
	return slices.Sorted(maps.Keys(p))
}

// Element is the node handed to an ElementRenderer.
type Element struct {
	Kind  Kind
	Props Props
	// Text is the raw content: alt text for images, source for code blocks.
	Text string
}

// ElementRenderer writes the markup for one element.
type ElementRenderer func(w io.Writer, el Element) error

// Overrides maps element kinds to the renderer used for them. Kinds without
// an entry fall back to the default HTML rendering.
type Overrides map[Kind]ElementRenderer

// Body is a document body that can be rendered with overrides.
type Body interface {
	Render(w io.Writer, overrides Overrides) error
}

// WithoutRef wraps next so that the "ref" property is stripped from a copy
// of the element's props before forwarding. All other props are unchanged.
func WithoutRef(next ElementRenderer) ElementRenderer {
	return func(w io.Writer, el Element) error {
		el.Props = el.Props.Without("ref")
		return next(w, el)
	}
}
