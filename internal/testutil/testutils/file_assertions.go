package helpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// FileAssertions checks generated output below one directory. Paths are
// slash-separated and relative to that directory. Calls chain.
type FileAssertions struct {
	t    *testing.T
	root string
}

// NewFileAssertions roots assertions at dir.
func NewFileAssertions(t *testing.T, dir string) *FileAssertions {
	return &FileAssertions{t: t, root: dir}
}

func (fa *FileAssertions) path(rel string) string {
	return filepath.Join(fa.root, filepath.FromSlash(rel))
}

// AssertFileExists fails unless rel is a regular file.
func (fa *FileAssertions) AssertFileExists(rel string) *FileAssertions {
	fa.t.Helper()
	assert.FileExists(fa.t, fa.path(rel))
	return fa
}

// AssertNoFile fails when anything exists at rel.
func (fa *FileAssertions) AssertNoFile(rel string) *FileAssertions {
	fa.t.Helper()
	assert.NoFileExists(fa.t, fa.path(rel))
	return fa
}

// AssertFileContains fails unless rel exists and contains want.
func (fa *FileAssertions) AssertFileContains(rel, want string) *FileAssertions {
	fa.t.Helper()
	// #nosec G304 - test helper, paths are controlled by test code
	data, err := os.ReadFile(fa.path(rel))
	if !assert.NoError(fa.t, err, "read %s", rel) {
		return fa
	}
	assert.Contains(fa.t, string(data), want, "content of %s", rel)
	return fa
}
