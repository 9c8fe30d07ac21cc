package route

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuleUnresolvedReplacerVariableRejected(t *testing.T) {
	assert := require.New(t)
	_, err := CompileRule("@/x/{n}", "/y/[m]")
	assert.Error(err)
}

func TestRuleAppliesSuffixForPrefixMatcher(t *testing.T) {
	assert := require.New(t)

	_, err := CompileRule("/a", "/b[missing]")
	assert.Error(err)

	rule, err := CompileRule("/a", "/b")
	assert.NoError(err)

	table := &Table{Rules: []*Rule{rule}}
	path, query, matched := table.Rewrite("/a/c")
	assert.True(matched)
	assert.Equal("/b/c", path)
	assert.Equal("", query)
}

func TestTableFirstMatchWins(t *testing.T) {
	assert := require.New(t)

	first, err := CompileRule("@/x", "/one")
	assert.NoError(err)
	second, err := CompileRule("/x", "/two")
	assert.NoError(err)

	table := &Table{Rules: []*Rule{first, second}}
	path, _, matched := table.Rewrite("/x")
	assert.True(matched)
	assert.Equal("/one", path)
}

func TestRewriteSplitsQuery(t *testing.T) {
	assert := require.New(t)

	rule, err := CompileRule("@/is_prime/{n:[0-9]{3}}", "/files/p_cgi.py?n=[n]")
	assert.NoError(err)

	table := &Table{Rules: []*Rule{rule}}
	path, query, matched := table.Rewrite("/is_prime/113")
	assert.True(matched)
	assert.Equal("/files/p_cgi.py", path)
	assert.Equal("n=113", query)
}

func TestEmptyTableLeavesPathUnchanged(t *testing.T) {
	assert := require.New(t)
	table := &Table{}
	path, _, matched := table.Rewrite("/anything")
	assert.False(matched)
	assert.Equal("/anything", path)
}
