// Package frontmatter splits YAML frontmatter from Markdown documents and
// decodes the fields the portal understands.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Fields are the recognised frontmatter keys. Unknown keys are kept in Extra.
type Fields struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Full        bool   `yaml:"full"`
	Draft       bool   `yaml:"draft"`

	Extra map[string]any `yaml:",inline"`
}

// Split separates YAML frontmatter (`---` delimited) from the Markdown body.
//
// If the document does not start with a delimiter, had is false and body is
// the full input. CRLF documents are handled.
func Split(content []byte) (frontmatter []byte, body []byte, had bool, err error) {
	nl := detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		// A closing delimiter at EOF without a trailing newline.
		if bytes.HasSuffix(content, []byte(nl+"---")) {
			end := len(content) - len("---")
			return content[start:end], []byte{}, true, nil
		}
		return nil, nil, false, ErrMissingClosingDelimiter
	}

	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nil
}

// Decode parses raw frontmatter (without delimiters) into Fields.
func Decode(frontmatter []byte) (Fields, error) {
	var f Fields
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return f, nil
	}
	if err := yaml.Unmarshal(frontmatter, &f); err != nil {
		return Fields{}, fmt.Errorf("decode frontmatter: %w", err)
	}
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.Icon = strings.TrimSpace(f.Icon)
	return f, nil
}

// Fingerprint hashes the frontmatter and body with mdfp. Newlines are
// normalised to LF first so checkouts with different line endings agree.
func Fingerprint(frontmatter, body []byte) string {
	fm := strings.TrimSuffix(normalizeNewlines(string(frontmatter)), "\n")
	return mdfp.CalculateFingerprintFromParts(fm, normalizeNewlines(string(body)))
}

func normalizeNewlines(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
