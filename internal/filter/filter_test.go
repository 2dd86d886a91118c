package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyChainIncludesAll(t *testing.T) {
	c := NewChain()
	assert.True(t, c.Match("any/file.txt", false))
	assert.True(t, c.Match("any/dir", true))
	assert.True(t, c.Empty())
}

func TestExcludePattern(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddExclude("*.log"))

	assert.False(t, c.Empty())
	assert.False(t, c.Match("app.log", false))
	assert.False(t, c.Match("sub/debug.log", false))
	assert.True(t, c.Match("app.txt", false))
}

func TestIncludeOverridesExclude(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddInclude("important.log"))
	require.NoError(t, c.AddExclude("*.log"))

	assert.True(t, c.Match("important.log", false))
	assert.False(t, c.Match("debug.log", false))
}

func TestExcludeIncludeOrder(t *testing.T) {
	// First match wins, so the later include never applies.
	c := NewChain()
	require.NoError(t, c.AddExclude("*.log"))
	require.NoError(t, c.AddInclude("important.log"))

	assert.False(t, c.Match("important.log", false))
	assert.False(t, c.Match("debug.log", false))
}

func TestDirOnlyPattern(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddExclude("node_modules/"))

	assert.False(t, c.Match("node_modules", true))
	assert.False(t, c.Match("web/node_modules", true))
	assert.True(t, c.Match("node_modules", false))
}

func TestAnchoredPattern(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddExclude("/root.txt"))

	assert.False(t, c.Match("root.txt", false))
	assert.True(t, c.Match("sub/root.txt", false))
}

func TestDoubleStarGo(t *testing.T) {
	c := NewChain()
	require.NoError(t, c.AddInclude("**/*.go"))
	require.NoError(t, c.AddExclude("*"))

	assert.True(t, c.Match("main.go", false))
	assert.True(t, c.Match("internal/engine/engine.go", false))
	assert.False(t, c.Match("readme.md", false))
}

func TestInvalidPattern(t *testing.T) {
	c := NewChain()
	require.Error(t, c.AddExclude("[unclosed"))
	require.Error(t, c.AddInclude("/"))
	assert.True(t, c.Empty())
}
