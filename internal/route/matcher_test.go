package route

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExactMatcherMatchesOnlyItself(t *testing.T) {
	assert := require.New(t)

	m, err := CompileMatcher("@/")
	assert.NoError(err)

	_, ok := m.Match("/")
	assert.True(ok)

	_, ok = m.Match("/x")
	assert.False(ok)
}

func TestPrefixMatcherBoundary(t *testing.T) {
	assert := require.New(t)

	m, err := CompileMatcher("/a")
	assert.NoError(err)

	match, ok := m.Match("/a")
	assert.True(ok)
	assert.Equal("", match.Suffix)

	match, ok = m.Match("/a/b")
	assert.True(ok)
	assert.Equal("/b", match.Suffix)

	_, ok = m.Match("/ab")
	assert.False(ok)
}

func TestEmptyMatcherMatchesEverything(t *testing.T) {
	assert := require.New(t)

	m, err := CompileMatcher("")
	assert.NoError(err)

	for _, p := range []string{"/", "/a", "/a/b/c"} {
		_, ok := m.Match(p)
		assert.True(ok, "expected %q to match", p)
	}
}

func TestVariableWithCustomPattern(t *testing.T) {
	assert := require.New(t)

	m, err := CompileMatcher("@/x/{n:[0-9]{3}}")
	assert.NoError(err)

	match, ok := m.Match("/x/113")
	assert.True(ok)
	assert.Equal("113", match.Captures["n"])

	_, ok = m.Match("/x/12")
	assert.False(ok)
	_, ok = m.Match("/x/1234")
	assert.False(ok)
}

func TestDuplicateVariableNameRejected(t *testing.T) {
	assert := require.New(t)
	_, err := CompileMatcher("@/{n}/{n}")
	assert.Error(err)
}

func TestDefaultVariablePatternExcludesSlash(t *testing.T) {
	assert := require.New(t)

	m, err := CompileMatcher("@/files/{name}")
	assert.NoError(err)

	_, ok := m.Match("/files/a/b")
	assert.False(ok)

	match, ok := m.Match("/files/a")
	assert.True(ok)
	assert.Equal("a", match.Captures["name"])
}
