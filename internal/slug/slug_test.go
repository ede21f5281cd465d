package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		base   string
		want   Slug
		wantOK bool
	}{
		{"base only is root", "/docs", "/docs", Slug{}, true},
		{"trailing slash is root", "/docs/", "/docs", Slug{}, true},
		{"single segment", "/docs/getting-started", "/docs", Slug{"getting-started"}, true},
		{"nested", "/docs/guide/install/", "/docs", Slug{"guide", "install"}, true},
		{"escaped segment", "/docs/a%20b", "/docs", Slug{"a b"}, true},
		{"unescaped once", "/docs/getting%252Dstarted", "/docs", Slug{"getting%2Dstarted"}, true},
		{"escaped slash stays in segment", "/docs/a%2Fb", "/docs", Slug{"a/b"}, true},
		{"duplicate slashes", "/docs//guide", "/docs", Slug{"guide"}, true},
		{"outside base", "/blog/post", "/docs", nil, false},
		{"prefix lookalike", "/docsify", "/docs", nil, false},
		{"root base", "/guide", "/", Slug{"guide"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.path, tt.base)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
			}
		})
	}
}

func TestFromFile(t *testing.T) {
	assert.True(t, FromFile("index.md").IsRoot())
	assert.Equal(t, Slug{"guide"}, FromFile("guide/index.mdx"))
	assert.Equal(t, Slug{"guide", "install"}, FromFile("guide/install.md"))
	assert.Equal(t, Slug{"getting-started"}, FromFile("getting-started.md"))
	assert.Equal(t, Slug{"a", "b"}, FromFile("a\\b.md"))
}

func TestKeyAndURL(t *testing.T) {
	s := New("guide", "a b")
	assert.Equal(t, "guide/a b", s.Key())
	assert.Equal(t, "/docs/guide/a%20b", s.URL("/docs"))
	assert.Equal(t, "/docs", Root.URL("docs/"))
	assert.Equal(t, "", Root.Key())
	assert.Equal(t, "/", Root.String())
	assert.True(t, FromKey("guide/a b").Equal(s))
}

func TestClone_DoesNotAlias(t *testing.T) {
	s := New("a", "b")
	c := s.Clone()
	c[0] = "z"
	assert.Equal(t, "a", s[0])
}

func TestValid(t *testing.T) {
	assert.True(t, Root.Valid())
	assert.True(t, New("guide", "deploy-to-prod").Valid())
	assert.False(t, Slug{"guide/deploy-to-prod"}.Valid())
	assert.False(t, Slug{"guide", ""}.Valid())
}

func TestFromKey_DropsEmptySegments(t *testing.T) {
	assert.Equal(t, Slug{"a", "b"}, FromKey("a//b"))
	assert.Equal(t, Slug{"a", "b"}, FromKey("/a/b/"))
	assert.True(t, FromKey("").IsRoot())
}
