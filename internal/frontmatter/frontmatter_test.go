package frontmatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	fm, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, fm)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	fm, body, had, err := Split([]byte("---\ntitle: Intro\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Intro\n"), fm)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_CRLF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\r\ntitle: Intro\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Intro\r\n"), fm)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_EmptyBlockAndClosingAtEOF(t *testing.T) {
	fm, body, had, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, fm)
	require.Equal(t, []byte("# Title\n"), body)

	fm, body, had, err = Split([]byte("---\ntitle: Only\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: Only\n"), fm)
	require.Empty(t, body)
}

func TestSplit_MissingClosingDelimiter(t *testing.T) {
	_, _, had, err := Split([]byte("---\ntitle: x\n# Title\n"))
	require.ErrorIs(t, err, ErrMissingClosingDelimiter)
	require.False(t, had)
}

func TestDecode(t *testing.T) {
	f, err := Decode([]byte("title: \" Quick Start \"\ndescription: Set things up\nicon: Rocket\nfull: true\ndraft: false\nauthor: someone\n"))
	require.NoError(t, err)

	assert.Equal(t, "Quick Start", f.Title)
	assert.Equal(t, "Set things up", f.Description)
	assert.Equal(t, "Rocket", f.Icon)
	assert.True(t, f.Full)
	assert.False(t, f.Draft)
	assert.Equal(t, "someone", f.Extra["author"])
}

func TestDecode_EmptyAndInvalid(t *testing.T) {
	f, err := Decode(nil)
	require.NoError(t, err)
	assert.Equal(t, Fields{}, f)

	_, err = Decode([]byte("title: [unclosed\n"))
	require.Error(t, err)
}

func TestFingerprint_StableAcrossLineEndings(t *testing.T) {
	lf := Fingerprint([]byte("title: A\n"), []byte("# A\n\nbody\n"))
	crlf := Fingerprint([]byte("title: A\r\n"), []byte("# A\r\n\r\nbody\r\n"))

	assert.NotEmpty(t, lf)
	assert.Equal(t, lf, crlf)
	assert.NotEqual(t, lf, Fingerprint([]byte("title: B\n"), []byte("# A\n\nbody\n")))
}
