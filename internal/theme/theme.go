// Package theme holds the light and dark palettes and remembers which one
// the user picked.
package theme

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhycn/batool/internal/debuglog"
	"github.com/zhycn/batool/internal/storage"
)

type Name string

const (
	Light Name = "light"
	Dark  Name = "dark"
)

func Parse(s string) (Name, error) {
	switch Name(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("unknown theme %q (want light or dark)", s)
}

func (n Name) Other() Name {
	if n == Dark {
		return Light
	}
	return Dark
}

// Palette is the color set every style is derived from.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Highlight  lipgloss.Color
	Error      lipgloss.Color
	Success    lipgloss.Color
	// Glamour is the glamour standard style used for markdown.
	Glamour string
}

var palettes = map[Name]Palette{
	Dark: {
		Primary:    lipgloss.Color("#FF6B6B"),
		Secondary:  lipgloss.Color("#4ECDC4"),
		Accent:     lipgloss.Color("#95E1D3"),
		Background: lipgloss.Color("#1A1A2E"),
		Surface:    lipgloss.Color("#16213E"),
		Text:       lipgloss.Color("#EAEAEA"),
		Muted:      lipgloss.Color("#94A3B8"),
		Highlight:  lipgloss.Color("#FFE66D"),
		Error:      lipgloss.Color("#EF4444"),
		Success:    lipgloss.Color("#10B981"),
		Glamour:    "dark",
	},
	Light: {
		Primary:    lipgloss.Color("#D94848"),
		Secondary:  lipgloss.Color("#1F8A82"),
		Accent:     lipgloss.Color("#2F9E8F"),
		Background: lipgloss.Color("#FAFAFA"),
		Surface:    lipgloss.Color("#E8EEF5"),
		Text:       lipgloss.Color("#1E293B"),
		Muted:      lipgloss.Color("#64748B"),
		Highlight:  lipgloss.Color("#B45309"),
		Error:      lipgloss.Color("#B91C1C"),
		Success:    lipgloss.Color("#047857"),
		Glamour:    "light",
	},
}

func PaletteFor(n Name) Palette {
	if p, ok := palettes[n]; ok {
		return p
	}
	return palettes[Light]
}

// PreferenceStore is the subset of storage.Store the manager needs.
type PreferenceStore interface {
	GetPreference(key string) (string, error)
	SetPreference(key, value string) error
}

// Manager tracks the active theme and persists changes.
type Manager struct {
	store   PreferenceStore
	current Name
}

// NewManager restores the saved theme, falling back to def when nothing
// valid is stored. A nil store keeps the choice in memory only.
func NewManager(store PreferenceStore, def Name) *Manager {
	if _, err := Parse(string(def)); err != nil {
		def = Light
	}
	m := &Manager{store: store, current: def}
	if store == nil {
		return m
	}

	saved, err := store.GetPreference(storage.KeyTheme)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		debuglog.Warnf("theme: reading preference: %v", err)
	default:
		if n, perr := Parse(saved); perr == nil {
			m.current = n
		} else {
			debuglog.Warnf("theme: ignoring stored value: %v", perr)
		}
	}
	return m
}

func (m *Manager) Current() Name { return m.current }

func (m *Manager) Palette() Palette { return PaletteFor(m.current) }

// Set switches to n and saves it. The in-memory theme changes even when
// saving fails.
func (m *Manager) Set(n Name) error {
	m.current = n
	if m.store == nil {
		return nil
	}
	if err := m.store.SetPreference(storage.KeyTheme, string(n)); err != nil {
		return fmt.Errorf("saving theme: %w", err)
	}
	return nil
}

func (m *Manager) Toggle() (Name, error) {
	next := m.current.Other()
	return next, m.Set(next)
}
