// Package directory ties the corpus, search index, filter and pager into
// the state machine behind the tool list.
//
// A Controller is not safe for concurrent use. The TUI drives it from
// bubbletea's Update loop, which already serializes every event.
package directory

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zhycn/batool/internal/catalog"
	"github.com/zhycn/batool/internal/debuglog"
	"github.com/zhycn/batool/internal/filter"
	"github.com/zhycn/batool/internal/pager"
	"github.com/zhycn/batool/internal/search"
)

// Sink paints controller output.
type Sink interface {
	// RenderBatch appends items, replacing earlier content when first is set.
	RenderBatch(items []catalog.Item, first bool)
	ShowEmpty()
	ShowLoading()
	ShowEnd(end pager.EndSignal)
}

// State is a snapshot of what the controller is showing.
type State struct {
	AllItems        []catalog.Item
	CurrentCategory string
	SearchQuery     string
	FilteredItems   []catalog.Item
	DisplayedCount  int
	IsLoading       bool
	Generation      uint64
}

// Searching reports whether a non-blank query is active.
func (s State) Searching() bool {
	return strings.TrimSpace(s.SearchQuery) != ""
}

type Options struct {
	Pager pager.Options
	// InitialLoadDelay is how long skeleton rows stay up before the first
	// batch of a generation is painted.
	InitialLoadDelay time.Duration
}

func DefaultOptions() Options {
	return Options{
		Pager:            pager.DefaultOptions(),
		InitialLoadDelay: 300 * time.Millisecond,
	}
}

func (o Options) Validate() error {
	if o.InitialLoadDelay < 0 {
		return fmt.Errorf("initial load delay cannot be negative, got %s", o.InitialLoadDelay)
	}
	return o.Pager.Validate()
}

// Reset describes the generation a state change started. When Empty is
// false the caller schedules FirstLoad(Generation) after Delay.
type Reset struct {
	Generation uint64
	Empty      bool
	Delay      time.Duration
}

type Controller struct {
	opts  Options
	sink  Sink
	pager *pager.Pager
	index search.Index

	all      []catalog.Item
	category string
	query    string
	filtered []catalog.Item
	// pending is the generation waiting for its first load, or 0.
	pending uint64
}

// New builds a controller over items. No index is attached yet, so any
// search before SetIndex finds nothing.
func New(items []catalog.Item, sink Sink, opts Options) (*Controller, error) {
	if sink == nil {
		return nil, errors.New("directory: sink is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("directory: %w", err)
	}
	p, err := pager.New(opts.Pager)
	if err != nil {
		return nil, err
	}
	return &Controller{
		opts:     opts,
		sink:     sink,
		pager:    p,
		all:      append([]catalog.Item(nil), items...),
		category: filter.All,
	}, nil
}

// SetIndex attaches the index for the current corpus. Call Refresh
// afterwards to re-run an active query against it.
func (c *Controller) SetIndex(idx search.Index) {
	c.index = idx
}

func (c *Controller) HasIndex() bool { return c.index != nil }

func (c *Controller) SetQuery(q string) Reset {
	c.query = q
	return c.reset("query")
}

func (c *Controller) SetCategory(category string) Reset {
	if category == "" {
		category = filter.All
	}
	c.category = category
	return c.reset("category")
}

func (c *Controller) ClearSearch() Reset {
	c.query = ""
	return c.reset("clear")
}

// Refresh recomputes the list from unchanged inputs.
func (c *Controller) Refresh() Reset {
	return c.reset("refresh")
}

// ReplaceCorpus swaps in a new corpus and drops the index built for the
// old one. The caller builds and attaches a new index.
func (c *Controller) ReplaceCorpus(items []catalog.Item) Reset {
	c.all = append([]catalog.Item(nil), items...)
	c.index = nil
	return c.reset("corpus")
}

func (c *Controller) reset(reason string) Reset {
	c.filtered = filter.Apply(c.all, c.category, c.matches())
	gen := c.pager.Reset(len(c.filtered))

	debuglog.WithFields(map[string]any{
		"reason":     reason,
		"generation": gen,
		"category":   c.category,
		"query":      c.query,
		"filtered":   len(c.filtered),
	}).Debugf("directory reset")

	if len(c.filtered) == 0 {
		c.pending = 0
		c.sink.ShowEmpty()
		return Reset{Generation: gen, Empty: true}
	}
	c.pending = gen
	c.sink.ShowLoading()
	return Reset{Generation: gen, Delay: c.opts.InitialLoadDelay}
}

// matches returns nil when no search is active.
func (c *Controller) matches() []catalog.Item {
	q := strings.TrimSpace(c.query)
	if q == "" {
		return nil
	}
	if c.index == nil {
		return []catalog.Item{}
	}
	return c.index.Search(q)
}

// FirstLoad paints the first batch of generation gen. Stale generations and
// generations that already have content are ignored.
func (c *Controller) FirstLoad(gen uint64) bool {
	if gen != c.pager.Generation() || gen != c.pending || c.pager.Displayed() > 0 {
		debuglog.Debugf("directory: dropping first load for generation %d", gen)
		return false
	}
	c.pending = 0
	return c.pager.Next(c.render)
}

// LoadNext reveals one more batch on explicit request.
func (c *Controller) LoadNext() bool {
	if c.pending != 0 {
		return false
	}
	return c.pager.Next(c.render)
}

// Observe reveals one more batch when the sentinel at sentinelRow is
// visible in vp.
func (c *Controller) Observe(vp pager.Viewport, sentinelRow int) bool {
	if c.pending != 0 {
		return false
	}
	return c.pager.Observe(vp, sentinelRow, c.render)
}

func (c *Controller) render(b pager.Batch) {
	items := c.filtered[b.Offset : b.Offset+b.Count]
	c.sink.RenderBatch(items, b.First())
	if b.End != nil {
		c.sink.ShowEnd(*b.End)
	}
}

func (c *Controller) State() State {
	return State{
		AllItems:        c.all,
		CurrentCategory: c.category,
		SearchQuery:     c.query,
		FilteredItems:   c.filtered,
		DisplayedCount:  c.pager.Displayed(),
		IsLoading:       c.pending != 0 || c.pager.Loading(),
		Generation:      c.pager.Generation(),
	}
}

// Displayed returns the items currently on screen.
func (c *Controller) Displayed() []catalog.Item {
	return c.filtered[:c.pager.Displayed()]
}

func (c *Controller) SuggestSearch() bool { return c.pager.SuggestSearch() }

func (c *Controller) Exhausted() bool { return c.pager.Phase() == pager.PhaseExhausted }

// Categories lists the selectable categories, All first.
func (c *Controller) Categories() []string {
	return append([]string{filter.All}, filter.Categories(c.all)...)
}

// CycleCategory moves the category selection by delta, wrapping around.
func (c *Controller) CycleCategory(delta int) Reset {
	cats := c.Categories()
	cur := 0
	for i, cat := range cats {
		if cat == c.category {
			cur = i
			break
		}
	}
	next := ((cur+delta)%len(cats) + len(cats)) % len(cats)
	return c.SetCategory(cats[next])
}
