package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zhycn/batool/internal/config"
)

// KeyMap is the full set of bindings. Configurable actions come from
// config.KeyConfig; list movement is fixed.
type KeyMap struct {
	Search       key.Binding
	Clear        key.Binding
	ToggleTheme  key.Binding
	NextCategory key.Binding
	PrevCategory key.Binding
	Open         key.Binding
	Details      key.Binding
	Reload       key.Binding
	Quit         key.Binding

	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding
	Back     key.Binding
}

// splitKeys turns "ctrl+k, /" into ["ctrl+k", "/"].
func splitKeys(s string) []string {
	var keys []string
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

func binding(keys string, desc string) key.Binding {
	ks := splitKeys(keys)
	helpKey := ""
	if len(ks) > 0 {
		helpKey = ks[0]
	}
	return key.NewBinding(key.WithKeys(ks...), key.WithHelp(helpKey, desc))
}

func NewKeyMap(cfg config.KeyConfig) KeyMap {
	return KeyMap{
		Search:       binding(cfg.Search, "search"),
		Clear:        binding(cfg.Clear, "clear"),
		ToggleTheme:  binding(cfg.ToggleTheme, "theme"),
		NextCategory: binding(cfg.NextCategory, "next category"),
		PrevCategory: binding(cfg.PrevCategory, "prev category"),
		Open:         binding(cfg.Open, "open"),
		Details:      binding(cfg.Details, "details"),
		Reload:       binding(cfg.Reload, "reload"),
		Quit:         binding(cfg.Quit, "quit"),

		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", " "), key.WithHelp("pgdn", "page down")),
		Home:     key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		End:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Back:     key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back")),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.NextCategory, k.Open, k.Details, k.ToggleTheme, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Search, k.Clear, k.NextCategory, k.PrevCategory},
		{k.Open, k.Details, k.Reload, k.ToggleTheme, k.Quit},
	}
}

type KeyHandler struct {
	app  *App
	keys KeyMap
}

func NewKeyHandler(app *App, cfg config.KeyConfig) *KeyHandler {
	return &KeyHandler{app: app, keys: NewKeyMap(cfg)}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, kh.keys.Quit) {
		return kh.app, tea.Quit
	}

	switch {
	case kh.app.view == ViewDetails:
		return kh.handleDetails(msg)
	case kh.app.searchInput.Focused():
		return kh.handleSearchInput(msg)
	default:
		return kh.handleList(msg)
	}
}

// handleGlobal covers actions available from both the list and the search
// box. Only modifier keys and tab live here so typing is never swallowed.
func (kh *KeyHandler) handleGlobal(msg tea.KeyMsg) (tea.Cmd, bool) {
	a := kh.app
	switch {
	case key.Matches(msg, kh.keys.NextCategory):
		return a.applyReset(a.ctrl.CycleCategory(1)), true
	case key.Matches(msg, kh.keys.PrevCategory):
		return a.applyReset(a.ctrl.CycleCategory(-1)), true
	case key.Matches(msg, kh.keys.ToggleTheme):
		return a.toggleTheme(), true
	case key.Matches(msg, kh.keys.Reload):
		return tea.Batch(a.setStatus(MsgReloading, StatusInfo, 0), a.loadCorpus(true)), true
	}
	return nil, false
}

func (kh *KeyHandler) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	if key.Matches(msg, kh.keys.Clear) {
		if a.searchInput.Value() == "" {
			a.searchInput.Blur()
			return a, nil
		}
		return a, a.clearSearch()
	}
	if cmd, ok := kh.handleGlobal(msg); ok {
		return a, cmd
	}

	switch msg.Type {
	case tea.KeyEnter, tea.KeyDown:
		a.searchInput.Blur()
		return a, nil
	}

	prev := a.searchInput.Value()
	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	if a.searchInput.Value() == prev {
		return a, cmd
	}
	return a, tea.Batch(cmd, a.debounceSearch(a.searchInput.Value()))
}

func (kh *KeyHandler) handleList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app

	if cmd, ok := kh.handleGlobal(msg); ok {
		return a, cmd
	}

	switch {
	case key.Matches(msg, kh.keys.Search):
		return a, a.focusSearch()
	case key.Matches(msg, kh.keys.Clear):
		if a.searchInput.Value() != "" {
			return a, a.clearSearch()
		}
		return a, nil
	case key.Matches(msg, kh.keys.Up):
		return a, a.moveCursor(-1)
	case key.Matches(msg, kh.keys.Down):
		return a, a.moveCursor(1)
	case key.Matches(msg, kh.keys.PageUp):
		return a, a.moveCursor(-a.listHeight())
	case key.Matches(msg, kh.keys.PageDown):
		return a, a.moveCursor(a.listHeight())
	case key.Matches(msg, kh.keys.Home):
		return a, a.moveCursor(-a.sink.rowCount())
	case key.Matches(msg, kh.keys.End):
		return a, a.moveCursor(a.sink.rowCount())
	case key.Matches(msg, kh.keys.Open):
		if a.onEndRow() {
			return a, a.focusSearch()
		}
		return a, a.openSelected()
	case key.Matches(msg, kh.keys.Details):
		return a, a.showDetails()
	case msg.String() == "q":
		return a, tea.Quit
	}
	return a, nil
}

func (kh *KeyHandler) handleDetails(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	switch {
	case key.Matches(msg, kh.keys.Back), key.Matches(msg, kh.keys.Details):
		a.view = ViewList
		return a, nil
	case key.Matches(msg, kh.keys.Open):
		return a, a.openSelected()
	case key.Matches(msg, kh.keys.ToggleTheme):
		return a, a.toggleTheme()
	}
	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}
