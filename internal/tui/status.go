package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	MsgLoadingCorpus = "Loading tools…"
	MsgReloading     = "Reloading…"
	MsgIndexing      = "Indexing…"
	MsgUpToDate      = "Tool list is up to date"
	MsgNoSelection   = "Nothing selected"
)

func MsgLoaded(n int, source string) string {
	return fmt.Sprintf("Loaded %d tools from %s", n, source)
}

func MsgIndexed(engine string, docs int) string {
	return fmt.Sprintf("Search: %s • idx: %d docs", engine, docs)
}

func MsgThemeSwitched(name string) string {
	return "Theme: " + name
}

func MsgOpened(name string) string {
	return "Opened " + strings.TrimSpace(name)
}

// MsgEnd is the footer shown once every item of the list is on screen.
func MsgEnd(displayed int, suggestSearch bool) string {
	if suggestSearch {
		return fmt.Sprintf("%d tools shown, try searching to narrow the list", displayed)
	}
	if displayed == 1 {
		return "All 1 tool loaded"
	}
	return fmt.Sprintf("All %d tools loaded", displayed)
}

func MsgTotal(filtered, total int) string {
	if filtered == total {
		return fmt.Sprintf("%d tools", total)
	}
	return fmt.Sprintf("%d of %d tools", filtered, total)
}

type statusClearMsg struct {
	seq int
}

// setStatus shows text in the status bar. A positive ttl clears it again
// unless a newer status replaced it first.
func (a *App) setStatus(text string, kind StatusKind, ttl time.Duration) tea.Cmd {
	a.statusSeq++
	a.status = text
	a.statusKind = kind
	if ttl <= 0 {
		return nil
	}
	seq := a.statusSeq
	return tea.Tick(ttl, func(time.Time) tea.Msg { return statusClearMsg{seq: seq} })
}

func (a *App) clearStatus(seq int) {
	if seq == a.statusSeq {
		a.status = ""
		a.statusKind = StatusInfo
	}
}
