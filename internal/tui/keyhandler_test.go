package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhycn/batool/internal/config"
)

func TestSplitKeys(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"ctrl+k,/", []string{"ctrl+k", "/"}},
		{" ctrl+k , / ", []string{"ctrl+k", "/"}},
		{"esc", []string{"esc"}},
		{"a,,b", []string{"a", "b"}},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, splitKeys(tt.in))
		})
	}
}

func TestNewKeyMap_FromConfig(t *testing.T) {
	km := NewKeyMap(config.TestConfig().Keys)

	assert.True(t, key.Matches(press("/"), km.Search))
	assert.True(t, key.Matches(tea.KeyMsg{Type: tea.KeyCtrlK}, km.Search))
	assert.True(t, key.Matches(press("tab"), km.NextCategory))
	assert.True(t, key.Matches(press("ctrl+t"), km.ToggleTheme))
	assert.Equal(t, "ctrl+k", km.Search.Help().Key)
	assert.Equal(t, "search", km.Search.Help().Desc)
}

func TestNewKeyMap_Override(t *testing.T) {
	cfg := config.TestConfig()
	cfg.Keys.Search = "ctrl+f"

	app, err := NewApp(cfg, nil)
	require.NoError(t, err)
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	app.Update(press("/"))
	assert.False(t, app.searchInput.Focused())

	app.Update(tea.KeyMsg{Type: tea.KeyCtrlF})
	assert.True(t, app.searchInput.Focused())
}

func TestKeyMap_Help(t *testing.T) {
	km := NewKeyMap(config.TestConfig().Keys)
	assert.NotEmpty(t, km.ShortHelp())

	var n int
	for _, col := range km.FullHelp() {
		n += len(col)
	}
	assert.Equal(t, 15, n)
}

func TestKeyHandler_TypingDoesNotTriggerActions(t *testing.T) {
	app, op := newTestApp(t, 30)
	loadCorpus(t, app, fixtureItems(3))

	app.Update(press("/"))
	for _, s := range []string{"q", "j", "G", "/"} {
		_, _ = app.Update(press(s))
	}
	assert.Equal(t, "qjG/", app.searchInput.Value())
	assert.Equal(t, 0, app.cursor)
	assert.Empty(t, op.opened)
}

func TestKeyHandler_EnterLeavesSearchBox(t *testing.T) {
	app, _ := newTestApp(t, 30)
	app.Update(press("/"))
	app.Update(press("a"))
	app.Update(press("enter"))

	assert.False(t, app.searchInput.Focused())
	assert.Equal(t, "a", app.searchInput.Value())
}

func TestKeyHandler_CategoryFromSearchBox(t *testing.T) {
	app, _ := newTestApp(t, 30)
	loadCorpus(t, app, fixtureItems(6))

	app.Update(press("/"))
	app.Update(press("tab"))
	assert.True(t, app.searchInput.Focused())
	assert.Equal(t, "Develop", app.ctrl.State().CurrentCategory)
}

func TestKeyHandler_ReloadCommand(t *testing.T) {
	app, _ := newTestApp(t, 30)
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	assert.Equal(t, MsgReloading, app.status)
}

func TestKeyHandler_NoSelection(t *testing.T) {
	app, _ := newTestApp(t, 30)

	app.Update(press("enter"))
	assert.Equal(t, MsgNoSelection, app.status)

	app.Update(press("ctrl+d"))
	assert.Equal(t, ViewList, app.view)
}
