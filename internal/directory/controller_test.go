package directory

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhycn/batool/internal/catalog"
	"github.com/zhycn/batool/internal/filter"
	"github.com/zhycn/batool/internal/pager"
	"github.com/zhycn/batool/internal/search"
)

type recordingSink struct {
	rows     []string
	batches  int
	empties  int
	loadings int
	ends     []pager.EndSignal
}

func (s *recordingSink) RenderBatch(items []catalog.Item, first bool) {
	if first {
		s.rows = nil
	}
	for _, it := range items {
		s.rows = append(s.rows, it.Name)
	}
	s.batches++
}

func (s *recordingSink) ShowEmpty()   { s.rows = nil; s.empties++ }
func (s *recordingSink) ShowLoading() { s.loadings++ }
func (s *recordingSink) ShowEnd(end pager.EndSignal) {
	s.ends = append(s.ends, end)
}

func genItems(n int, category string) []catalog.Item {
	out := make([]catalog.Item, n)
	for i := range out {
		out[i] = catalog.Item{
			Name:     fmt.Sprintf("%s tool %03d", category, i),
			URL:      fmt.Sprintf("https://tools.dev/%s/%d", category, i),
			Category: category,
		}
	}
	return out
}

func smallCorpus() []catalog.Item {
	return []catalog.Item{
		{Name: "Figma", URL: "https://figma.com", Category: "Design"},
		{Name: "jq", URL: "https://jqlang.org", Category: "CLI", Tags: []string{"json"}},
		{Name: "Notes", URL: "https://notes.dev"},
		{Name: "fx", URL: "https://fx.wtf", Category: "CLI", Description: "terminal JSON viewer"},
	}
}

func newController(t *testing.T, items []catalog.Item) (*Controller, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	c, err := New(items, sink, DefaultOptions())
	require.NoError(t, err)
	return c, sink
}

func withIndex(t *testing.T, c *Controller) {
	t.Helper()
	idx, err := search.Build(search.EngineFuzzy, c.State().AllItems, search.DefaultOptions())
	require.NoError(t, err)
	c.SetIndex(idx)
}

func assertConsistent(t *testing.T, c *Controller) {
	t.Helper()
	st := c.State()
	assert.LessOrEqual(t, st.DisplayedCount, len(st.FilteredItems))
	assert.GreaterOrEqual(t, st.DisplayedCount, 0)
	j := 0
	for _, it := range st.AllItems {
		if j < len(st.FilteredItems) && st.FilteredItems[j].Name == it.Name {
			j++
		}
	}
	assert.Equal(t, len(st.FilteredItems), j, "filtered items must follow corpus order")
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, nil, DefaultOptions())
	assert.Error(t, err)

	opts := DefaultOptions()
	opts.InitialLoadDelay = -time.Second
	_, err = New(nil, &recordingSink{}, opts)
	assert.Error(t, err)

	opts = DefaultOptions()
	opts.Pager.BatchSize = 0
	_, err = New(nil, &recordingSink{}, opts)
	assert.Error(t, err)
}

func TestController_InitialState(t *testing.T) {
	c, _ := newController(t, smallCorpus())
	st := c.State()
	assert.Equal(t, filter.All, st.CurrentCategory)
	assert.Empty(t, st.SearchQuery)
	assert.False(t, st.Searching())
	assert.Equal(t, 0, st.DisplayedCount)
	assert.False(t, c.HasIndex())
}

func TestController_FirstLoadRendersFirstBatch(t *testing.T) {
	c, sink := newController(t, genItems(45, "CLI"))

	r := c.Refresh()
	assert.False(t, r.Empty)
	assert.Equal(t, 300*time.Millisecond, r.Delay)
	assert.Equal(t, 1, sink.loadings)
	assert.True(t, c.State().IsLoading)

	require.True(t, c.FirstLoad(r.Generation))
	assert.Len(t, sink.rows, 20)
	assert.False(t, c.State().IsLoading)
	assert.Len(t, c.Displayed(), 20)

	assert.False(t, c.FirstLoad(r.Generation), "first load runs once")
	assertConsistent(t, c)
}

func TestController_NewestResetWins(t *testing.T) {
	c, sink := newController(t, smallCorpus())
	withIndex(t, c)

	r1 := c.SetQuery("j")
	r2 := c.SetQuery("json")
	assert.Greater(t, r2.Generation, r1.Generation)

	assert.False(t, c.FirstLoad(r1.Generation))
	assert.Empty(t, sink.rows)

	require.True(t, c.FirstLoad(r2.Generation))
	assert.Equal(t, []string{"jq", "fx"}, sink.rows)
}

func TestController_LoadsIgnoredWhileFirstLoadPending(t *testing.T) {
	c, sink := newController(t, genItems(60, "CLI"))
	r := c.Refresh()

	assert.False(t, c.LoadNext())
	assert.False(t, c.Observe(pager.Viewport{Offset: 0, Height: 100}, 0))
	assert.Zero(t, sink.batches)

	require.True(t, c.FirstLoad(r.Generation))
	require.True(t, c.LoadNext())
	assert.Len(t, sink.rows, 40)

	require.True(t, c.Observe(pager.Viewport{Offset: 30, Height: 10}, 40))
	assert.Len(t, sink.rows, 60)
	require.Len(t, sink.ends, 1)
	assert.Equal(t, pager.EndSignal{Displayed: 60}, sink.ends[0])
	assert.True(t, c.Exhausted())

	assert.False(t, c.LoadNext())
	assert.Len(t, sink.ends, 1)
}

func TestController_SearchBeforeIndexIsEmpty(t *testing.T) {
	c, sink := newController(t, smallCorpus())
	r := c.SetQuery("figma")
	assert.True(t, r.Empty)
	assert.Zero(t, r.Delay)
	assert.Equal(t, 1, sink.empties)
	assert.False(t, c.FirstLoad(r.Generation))

	withIndex(t, c)
	r = c.Refresh()
	assert.False(t, r.Empty)
	require.True(t, c.FirstLoad(r.Generation))
	assert.Equal(t, []string{"Figma"}, sink.rows)
}

func TestController_BlankQueryIsNoSearch(t *testing.T) {
	c, _ := newController(t, smallCorpus())
	c.SetQuery("   ")
	assert.Len(t, c.State().FilteredItems, 4)
	assert.False(t, c.State().Searching())
}

func TestController_CategoryAndSearchCompose(t *testing.T) {
	c, sink := newController(t, smallCorpus())
	withIndex(t, c)

	c.SetCategory("CLI")
	r := c.SetQuery("json")
	require.True(t, c.FirstLoad(r.Generation))
	assert.Equal(t, []string{"jq", "fx"}, sink.rows)

	r = c.SetCategory("Design")
	assert.True(t, r.Empty)

	r = c.ClearSearch()
	require.True(t, c.FirstLoad(r.Generation))
	assert.Equal(t, []string{"Figma"}, sink.rows)
	assertConsistent(t, c)
}

func TestController_UncategorizedOnlyUnderAll(t *testing.T) {
	c, sink := newController(t, smallCorpus())

	r := c.SetCategory(filter.All)
	require.True(t, c.FirstLoad(r.Generation))
	assert.Contains(t, sink.rows, "Notes")

	for _, cat := range c.Categories()[1:] {
		r = c.SetCategory(cat)
		if !r.Empty {
			require.True(t, c.FirstLoad(r.Generation))
		}
		assert.NotContains(t, sink.rows, "Notes")
	}
	c.SetCategory("")
	assert.Equal(t, filter.All, c.State().CurrentCategory)
}

func TestController_LargeCorpusSuggestsSearch(t *testing.T) {
	c, sink := newController(t, genItems(250, "CLI"))
	r := c.Refresh()
	require.True(t, c.FirstLoad(r.Generation))
	for c.LoadNext() {
	}
	assert.Len(t, sink.rows, 250)
	require.Len(t, sink.ends, 1)
	assert.True(t, sink.ends[0].SuggestSearch)
	assert.True(t, c.SuggestSearch())
}

func TestController_ReplaceCorpusDropsIndex(t *testing.T) {
	c, sink := newController(t, smallCorpus())
	withIndex(t, c)
	c.SetQuery("fx")

	r := c.ReplaceCorpus(append(smallCorpus(), catalog.Item{Name: "fx2", URL: "https://fx2.dev"}))
	assert.False(t, c.HasIndex())
	assert.True(t, r.Empty, "no index yet, so the active query matches nothing")

	withIndex(t, c)
	r = c.Refresh()
	require.True(t, c.FirstLoad(r.Generation))
	assert.Contains(t, sink.rows, "fx2")
	assertConsistent(t, c)
}

func TestController_CycleCategory(t *testing.T) {
	c, _ := newController(t, smallCorpus())
	assert.Equal(t, []string{filter.All, "Design", "CLI"}, c.Categories())

	c.CycleCategory(1)
	assert.Equal(t, "Design", c.State().CurrentCategory)
	c.CycleCategory(2)
	assert.Equal(t, filter.All, c.State().CurrentCategory)
	c.CycleCategory(-1)
	assert.Equal(t, "CLI", c.State().CurrentCategory)
}

func TestController_ConsistentUnderRandomOps(t *testing.T) {
	items := append(genItems(70, "CLI"), genItems(35, "Data")...)
	c, _ := newController(t, items)
	withIndex(t, c)

	ops := []func() Reset{
		func() Reset { return c.SetQuery("tool 0") },
		func() Reset { return c.SetCategory("Data") },
		func() Reset { return c.SetQuery("zzz") },
		func() Reset { return c.ClearSearch() },
		func() Reset { return c.SetCategory(filter.All) },
		func() Reset { return c.SetCategory("Missing") },
	}
	for i := 0; i < 30; i++ {
		r := ops[i%len(ops)]()
		if i%2 == 0 && !r.Empty {
			c.FirstLoad(r.Generation)
			c.LoadNext()
		}
		assertConsistent(t, c)
	}
}
