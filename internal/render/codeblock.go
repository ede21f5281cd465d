package render

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultCodeStyle is the chroma style used when CodeBlock.Style is empty.
const DefaultCodeStyle = "github"

// CodeBlock renders code elements with chroma syntax highlighting.
//
// Props handling: "language" selects the lexer, "title" becomes a caption,
// every other prop is emitted as a data-* attribute on the wrapper.
type CodeBlock struct {
	Style string
	// KeepBackground keeps the style's own background colour on the <pre>
	// instead of leaving it to the site stylesheet.
	KeepBackground bool
}

// Render implements ElementRenderer.
func (c CodeBlock) Render(w io.Writer, el Element) error {
	style := styles.Get(c.styleName())
	lang := el.Props["language"]

	lexer := lexers.Get(lang)
	if lexer == nil && lang == "" {
		lexer = lexers.Analyse(el.Text)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	tokens, err := lexer.Tokenise(nil, el.Text)
	if err != nil {
		return fmt.Errorf("tokenise %s code block: %w", lang, err)
	}

	var code strings.Builder
	formatter := chromahtml.New(chromahtml.WithClasses(false), chromahtml.PreventSurroundingPre(true))
	if err := formatter.Format(&code, style, tokens); err != nil {
		return fmt.Errorf("format code block: %w", err)
	}

	var b strings.Builder
	b.WriteString(`<figure class="code-block"`)
	if lang != "" {
		writeAttr(&b, "data-language", lang)
	}
	for _, k := range el.Props.SortedKeys() {
		if k == "language" || k == "title" {
			continue
		}
		writeAttr(&b, "data-"+k, el.Props[k])
	}
	b.WriteString(">")
	if title := el.Props["title"]; title != "" {
		b.WriteString(`<figcaption>`)
		b.WriteString(html.EscapeString(title))
		b.WriteString(`</figcaption>`)
	}
	b.WriteString(`<pre class="chroma" tabindex="0"`)
	if c.KeepBackground {
		if bg := style.Get(chroma.Background).Background; bg.IsSet() {
			writeAttr(&b, "style", "background-color:"+bg.String())
		}
	}
	b.WriteString("><code>")
	b.WriteString(code.String())
	b.WriteString("</code></pre></figure>")

	_, err = io.WriteString(w, b.String())
	return err
}

func (c CodeBlock) styleName() string {
	if c.Style == "" {
		return DefaultCodeStyle
	}
	return c.Style
}
