// Package markdown configures the goldmark engine shared by the content
// compiler and the body renderer, and extracts structure (headings, plain
// text) from parsed documents.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// EngineOptions returns the goldmark options used for both parsing and
// rendering. Extra options are appended after the defaults.
func EngineOptions(extra ...goldmark.Option) []goldmark.Option {
	opts := []goldmark.Option{
		goldmark.WithExtensions(extension.GFM, extension.Footnote),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithAttribute(),
		),
		// Content is authored in-repo and may carry raw HTML, as MDX would.
		goldmark.WithRendererOptions(html.WithUnsafe()),
	}
	return append(opts, extra...)
}

// New builds a goldmark engine with the shared configuration.
func New(extra ...goldmark.Option) goldmark.Markdown {
	return goldmark.New(EngineOptions(extra...)...)
}

// Parse parses a Markdown body (frontmatter already removed) into a goldmark AST.
func Parse(md goldmark.Markdown, body []byte) gmast.Node {
	return md.Parser().Parse(text.NewReader(body))
}

// PlainText concatenates the literal text below n, ignoring markup.
func PlainText(n gmast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *gmast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *gmast.String:
			buf.Write(t.Value)
		case *gmast.CodeSpan:
			for s := t.FirstChild(); s != nil; s = s.NextSibling() {
				if st, ok := s.(*gmast.Text); ok {
					buf.Write(st.Segment.Value(source))
				}
			}
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	return string(bytes.TrimSpace(buf.Bytes()))
}
