package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhycn/batool/internal/catalog"
)

type countingIndex struct {
	calls int
}

func (c *countingIndex) Search(q string) []catalog.Item {
	c.calls++
	return []catalog.Item{{Name: q}}
}

func TestCached_MemoizesExactQuery(t *testing.T) {
	inner := &countingIndex{}
	c, err := NewCached(inner, 2)
	require.NoError(t, err)

	c.Search("go")
	c.Search("go")
	c.Search("Go")
	assert.Equal(t, 2, inner.calls)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestCached_Evicts(t *testing.T) {
	inner := &countingIndex{}
	c, err := NewCached(inner, 1)
	require.NoError(t, err)

	c.Search("a")
	c.Search("b")
	c.Search("a")
	assert.Equal(t, 3, inner.calls)
}

func TestCached_InvalidSize(t *testing.T) {
	_, err := NewCached(&countingIndex{}, 0)
	assert.Error(t, err)
}

func TestBuild_RebuildStartsWithEmptyCache(t *testing.T) {
	first, err := Build(EngineFuzzy, corpus(), DefaultOptions())
	require.NoError(t, err)
	first.Search("jq")

	second, err := Build(EngineFuzzy, append(corpus(), catalog.Item{Name: "jqp", URL: "https://jqp.dev"}), DefaultOptions())
	require.NoError(t, err)
	assert.Contains(t, names(second.Search("jq")), "jqp")

	c, ok := second.(*Cached)
	require.True(t, ok)
	hits, misses := c.Stats()
	assert.Equal(t, int64(0), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 6, c.DocCount())
}
