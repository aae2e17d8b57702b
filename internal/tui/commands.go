package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/zhycn/batool/internal/catalog"
	"github.com/zhycn/batool/internal/debuglog"
	"github.com/zhycn/batool/internal/directory"
	"github.com/zhycn/batool/internal/pager"
	"github.com/zhycn/batool/internal/search"
)

const (
	statusTTL = 3 * time.Second
	errorTTL  = 6 * time.Second
)

func (a *App) corpusSource() string {
	if s := strings.TrimSpace(a.cfg.Corpus.Source); s != "" {
		return s
	}
	return catalog.BuiltinSource
}

func (a *App) loadCorpus(reload bool) tea.Cmd {
	source := a.corpusSource()
	timeout := a.cfg.Corpus.HTTPTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		items, err := a.loader.Load(ctx, source)
		return corpusLoadedMsg{items: items, source: source, reload: reload, err: err}
	}
}

func (a *App) buildIndex(items []catalog.Item, version int) tea.Cmd {
	engine := a.cfg.Search.Engine
	opts := a.cfg.SearchOptions()
	return func() tea.Msg {
		start := time.Now()
		idx, err := search.Build(engine, items, opts)
		debuglog.Infof("index: %s built over %d items in %s", engine, len(items), time.Since(start))
		return indexReadyMsg{index: idx, version: version, err: err}
	}
}

// watchCorpus starts watching a local corpus file once. Remote and
// built-in sources are never watched.
func (a *App) watchCorpus() tea.Cmd {
	source := a.corpusSource()
	if a.watcher != nil || !a.cfg.Corpus.Watch || source == catalog.BuiltinSource || catalog.IsRemote(source) {
		return nil
	}
	w, err := catalog.NewWatcher(source)
	if err != nil {
		debuglog.Warnf("watch: %v", err)
		return nil
	}
	a.watcher = w
	return waitForChange(w)
}

func waitForChange(w *catalog.Watcher) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.Changes():
			return corpusChangedMsg{}
		case err := <-w.Errors():
			return watchErrMsg{err: err}
		case <-w.Done():
			return nil
		}
	}
}

func firstLoadAfter(r directory.Reset) tea.Cmd {
	msg := firstLoadMsg{generation: r.Generation}
	if r.Delay <= 0 {
		return func() tea.Msg { return msg }
	}
	return tea.Tick(r.Delay, func(time.Time) tea.Msg { return msg })
}

// applyReset rewinds the list view after the controller started a new
// generation and schedules its first batch.
func (a *App) applyReset(r directory.Reset) tea.Cmd {
	a.cursor = 0
	a.offset = 0
	if r.Empty {
		return nil
	}
	return firstLoadAfter(r)
}

func (a *App) debounceSearch(value string) tea.Cmd {
	a.pendingQuery = sanitizeQuery(value)
	a.searchSeq++
	seq := a.searchSeq
	return tea.Tick(a.cfg.Search.DebounceDelay, func(time.Time) tea.Msg {
		return searchDebounceFireMsg{seq: seq}
	})
}

// clearSearch empties the query right away, cancels any pending debounce
// and leaves the cursor in the search box for the next query.
func (a *App) clearSearch() tea.Cmd {
	a.searchSeq++
	a.pendingQuery = ""
	a.searchInput.SetValue("")
	return tea.Batch(a.searchInput.Focus(), a.applyReset(a.ctrl.ClearSearch()))
}

func (a *App) focusSearch() tea.Cmd {
	return a.searchInput.Focus()
}

func (a *App) observe() tea.Cmd {
	return func() tea.Msg { return observeMsg{} }
}

func (a *App) viewportState() pager.Viewport {
	return pager.Viewport{Offset: a.offset, Height: a.listHeight()}
}

func (a *App) moveCursor(delta int) tea.Cmd {
	rows := a.sink.rowCount()
	if rows == 0 {
		return nil
	}
	a.cursor += delta
	if a.cursor < 0 {
		a.cursor = 0
	}
	if a.cursor >= rows {
		a.cursor = rows - 1
	}

	h := a.listHeight()
	if a.cursor < a.offset {
		a.offset = a.cursor
	}
	if a.cursor >= a.offset+h {
		a.offset = a.cursor - h + 1
	}
	return a.observe()
}

func (a *App) onEndRow() bool {
	return a.sink.end != nil && a.cursor == len(a.sink.items)
}

func (a *App) selected() (catalog.Item, bool) {
	if a.cursor < 0 || a.cursor >= len(a.sink.items) {
		return catalog.Item{}, false
	}
	return a.sink.items[a.cursor], true
}

func (a *App) openSelected() tea.Cmd {
	it, ok := a.selected()
	if !ok {
		return a.setStatus(MsgNoSelection, StatusWarn, statusTTL)
	}
	launcher := a.launcher
	return func() tea.Msg {
		return openedMsg{name: it.Name, err: launcher.Open(it.URL)}
	}
}

func (a *App) toggleTheme() tea.Cmd {
	name, err := a.themes.Toggle()
	a.styles = NewStyles(a.themes.Palette())
	a.renderer = nil
	if err != nil {
		text, kind := userMessage(err)
		return a.setStatus(text, kind, errorTTL)
	}
	return a.setStatus(MsgThemeSwitched(string(name)), StatusSuccess, statusTTL)
}

func (a *App) showDetails() tea.Cmd {
	it, ok := a.selected()
	if !ok {
		return a.setStatus(MsgNoSelection, StatusWarn, statusTTL)
	}
	r, err := a.getRenderer()
	if err != nil {
		text, kind := userMessage(wrapErr("details", err))
		return a.setStatus(text, kind, errorTTL)
	}
	return func() tea.Msg {
		out, err := r.Render(detailsMarkdown(it))
		if err != nil {
			out = detailsMarkdown(it)
		}
		return detailsRenderedMsg{name: it.Name, content: out}
	}
}

func detailsMarkdown(it catalog.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", it.Name)
	if it.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", it.Description)
	}
	fmt.Fprintf(&b, "**Category:** %s\n\n", it.CategoryLabel())
	if len(it.Tags) > 0 {
		tags := make([]string, len(it.Tags))
		for i, t := range it.Tags {
			tags[i] = "`" + t + "`"
		}
		fmt.Fprintf(&b, "**Tags:** %s\n\n", strings.Join(tags, " "))
	}
	fmt.Fprintf(&b, "---\n\n[%s](%s)\n", it.URL, it.URL)
	return b.String()
}

// getRenderer caches a glamour renderer for the current width and theme.
func (a *App) getRenderer() (*glamour.TermRenderer, error) {
	wrap := a.width * 9 / 10
	if wrap > 120 {
		wrap = 120
	}
	if wrap < 20 {
		wrap = 20
	}
	if a.renderer != nil && a.rendererWidth == wrap {
		return a.renderer, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(a.themes.Palette().Glamour),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil, err
	}
	a.renderer = r
	a.rendererWidth = wrap
	return r, nil
}
