package content

import "errors"

var (
	ErrDuplicateSlug = errors.New("duplicate slug")
	ErrReadDocument  = errors.New("failed to read document")
	ErrFrontmatter   = errors.New("invalid frontmatter")
)
