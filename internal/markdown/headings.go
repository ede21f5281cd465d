package markdown

import (
	gmast "github.com/yuin/goldmark/ast"
)

// Heading is a heading found in a document body.
type Heading struct {
	Text  string
	ID    string
	Level int
}

// Headings returns every heading in document order. IDs come from the
// auto heading ID parser option or an explicit {#id} attribute.
func Headings(doc gmast.Node, source []byte) []Heading {
	var out []Heading
	_ = gmast.Walk(doc, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		heading := Heading{Text: PlainText(h, source), Level: h.Level}
		if id, found := h.AttributeString("id"); found {
			if b, isBytes := id.([]byte); isBytes {
				heading.ID = string(b)
			}
		}
		out = append(out, heading)
		return gmast.WalkSkipChildren, nil
	})
	return out
}

// FirstTitle returns the text of the first level-1 heading, if any.
func FirstTitle(doc gmast.Node, source []byte) (string, bool) {
	for _, h := range Headings(doc, source) {
		if h.Level == 1 && h.Text != "" {
			return h.Text, true
		}
	}
	return "", false
}
