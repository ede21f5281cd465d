package render

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"

	"git.home.luguber.info/inful/docsite/internal/markdown"
)

// overridePriority sits ahead of the html renderer (1000) and the GFM
// extension renderers (500).
const overridePriority = 100

// MarkdownBody is a Body backed by a goldmark AST and its source.
type MarkdownBody struct {
	source []byte
	doc    gmast.Node
}

// NewMarkdownBody wraps an already parsed document. The caller must not
// modify source or doc afterwards.
func NewMarkdownBody(source []byte, doc gmast.Node) *MarkdownBody {
	return &MarkdownBody{source: source, doc: doc}
}

// ParseMarkdown parses body with the shared engine.
func ParseMarkdown(body []byte) *MarkdownBody {
	return NewMarkdownBody(body, markdown.Parse(markdown.New(), body))
}

// Render implements Body.
func (b *MarkdownBody) Render(w io.Writer, overrides Overrides) error {
	var opts []goldmark.Option
	if len(overrides) > 0 {
		opts = append(opts, goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(&overrideRenderer{overrides: overrides}, overridePriority)),
		))
	}
	md := markdown.New(opts...)
	return md.Renderer().Render(w, b.source, b.doc)
}

// overrideRenderer registers node functions only for the kinds that have an
// override, so everything else keeps goldmark's default output.
type overrideRenderer struct {
	overrides Overrides
}

func (r *overrideRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	if fn, ok := r.overrides[KindImage]; ok && fn != nil {
		reg.Register(gmast.KindImage, r.image(fn))
	}
	if fn, ok := r.overrides[KindPre]; ok && fn != nil {
		reg.Register(gmast.KindFencedCodeBlock, r.code(fn))
		reg.Register(gmast.KindCodeBlock, r.code(fn))
	}
}

func (r *overrideRenderer) image(fn ElementRenderer) renderer.NodeRendererFunc {
	return func(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		n := node.(*gmast.Image)
		props := attributeProps(n)
		props["src"] = string(n.Destination)
		alt := markdown.PlainText(n, source)
		props["alt"] = alt
		if len(n.Title) > 0 {
			props["title"] = string(n.Title)
		}
		if err := fn(w, Element{Kind: KindImage, Props: props, Text: alt}); err != nil {
			return gmast.WalkStop, err
		}
		return gmast.WalkSkipChildren, nil
	}
}

func (r *overrideRenderer) code(fn ElementRenderer) renderer.NodeRendererFunc {
	return func(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		props := attributeProps(node)
		if fenced, ok := node.(*gmast.FencedCodeBlock); ok && fenced.Info != nil {
			lang, rest := splitInfo(string(fenced.Info.Segment.Value(source)))
			for k, v := range parseInfoProps(rest) {
				props[k] = v
			}
			if lang != "" {
				props["language"] = lang
			}
		}
		var code bytes.Buffer
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			code.Write(seg.Value(source))
		}
		if err := fn(w, Element{Kind: KindPre, Props: props, Text: code.String()}); err != nil {
			return gmast.WalkStop, err
		}
		return gmast.WalkSkipChildren, nil
	}
}

func attributeProps(n gmast.Node) Props {
	props := Props{}
	for _, attr := range n.Attributes() {
		switch v := attr.Value.(type) {
		case []byte:
			props[string(attr.Name)] = string(v)
		case string:
			props[string(attr.Name)] = v
		}
	}
	return props
}

// splitInfo separates the language (first word) from the rest of a fence
// info string.
func splitInfo(info string) (lang, rest string) {
	info = strings.TrimSpace(info)
	if info == "" || strings.HasPrefix(info, "{") {
		return "", info
	}
	lang, rest, _ = strings.Cut(info, " ")
	if strings.Contains(lang, "=") {
		return "", info
	}
	return lang, strings.TrimSpace(rest)
}

// parseInfoProps reads key=value, key="quoted value" and bare key tokens,
// optionally wrapped in braces: `title="main.go" ref=intro {lineNumbers}`.
func parseInfoProps(s string) Props {
	props := Props{}
	s = strings.NewReplacer("{", " ", "}", " ").Replace(s)
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			return props
		}
		end := strings.IndexAny(s, " \t=")
		if end < 0 {
			props[s] = "true"
			return props
		}
		key := s[:end]
		if s[end] != '=' {
			props[key] = "true"
			s = s[end:]
			continue
		}
		s = s[end+1:]
		var val string
		if q := firstByte(s); q == '"' || q == '\'' {
			closing := strings.IndexByte(s[1:], q)
			if closing < 0 {
				val, s = s[1:], ""
			} else {
				val, s = s[1:closing+1], s[closing+2:]
			}
		} else {
			stop := strings.IndexAny(s, " \t")
			if stop < 0 {
				val, s = s, ""
			} else {
				val, s = s[:stop], s[stop:]
			}
		}
		if key != "" {
			props[key] = val
		}
	}
}

func firstByte(s string) byte {
	if s == "" {
		return 0
	}
	return s[0]
}
