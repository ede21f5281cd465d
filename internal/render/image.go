package render

import (
	"html"
	"io"
	"strings"
)

// Image writes a plain <img> element from the element's props.
func Image(w io.Writer, el Element) error {
	_, err := io.WriteString(w, imgTag(el.Props))
	return err
}

// ImageZoom writes the image wrapped in a zoomable container. The client
// script binds to data-zoomable.
func ImageZoom(w io.Writer, el Element) error {
	var b strings.Builder
	b.WriteString(`<span class="image-zoom" data-zoomable="true">`)
	b.WriteString(imgTag(el.Props))
	b.WriteString(`</span>`)
	_, err := io.WriteString(w, b.String())
	return err
}

func imgTag(props Props) string {
	var b strings.Builder
	b.WriteString("<img")
	// src and alt lead for readability; remaining props follow sorted.
	writeAttr(&b, "src", props["src"])
	writeAttr(&b, "alt", props["alt"])
	for _, k := range props.SortedKeys() {
		if k == "src" || k == "alt" {
			continue
		}
		writeAttr(&b, k, props[k])
	}
	if _, ok := props["loading"]; !ok {
		writeAttr(&b, "loading", "lazy")
	}
	b.WriteString(">")
	return b.String()
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteByte(' ')
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteByte('"')
}
