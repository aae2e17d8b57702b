package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhycn/batool/internal/theme"
)

const (
	AppName        = "batool"
	AppDescription = "Minimal, private, fast launchpad for developer tools"
	AppURL         = "https://batool-delta.vercel.app/"
	RepoURL        = "https://github.com/zhycn/batool"
)

var LogoLines = []string{
	"█▄▄ ▄▀█ ▀█▀ █▀█ █▀█ █  ",
	"█▄█ █▀█  █  █▄█ █▄█ █▄▄",
}

const CompactLogo = "batool ›"

// Styles is every lipgloss style the UI uses, derived from one palette so
// that a theme switch restyles everything at once.
type Styles struct {
	Palette theme.Palette

	Logo          lipgloss.Style
	Title         lipgloss.Style
	Header        lipgloss.Style
	Item          lipgloss.Style
	SelectedItem  lipgloss.Style
	Description   lipgloss.Style
	Category      lipgloss.Style
	ActiveTab     lipgloss.Style
	InactiveTab   lipgloss.Style
	Skeleton      lipgloss.Style
	Help          lipgloss.Style
	Muted         lipgloss.Style
	Separator     lipgloss.Style
	StatusInfo    lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarn    lipgloss.Style
	StatusError   lipgloss.Style
	End           lipgloss.Style
	Hint          lipgloss.Style
}

func NewStyles(p theme.Palette) Styles {
	return Styles{
		Palette: p,
		Logo:    lipgloss.NewStyle().Foreground(p.Primary).Bold(true),
		Title: lipgloss.NewStyle().
			Foreground(p.Text).
			Background(p.Surface).
			Bold(true).
			Padding(0, 2),
		Header:      lipgloss.NewStyle().Foreground(p.Secondary).Bold(true),
		Item:        lipgloss.NewStyle().Foreground(p.Text),
		Description: lipgloss.NewStyle().Foreground(p.Muted),
		SelectedItem: lipgloss.NewStyle().
			Foreground(p.Background).
			Background(p.Accent).
			Bold(true),
		Category: lipgloss.NewStyle().Foreground(p.Secondary).Faint(true),
		ActiveTab: lipgloss.NewStyle().
			Foreground(p.Background).
			Background(p.Text).
			Bold(true).
			Padding(0, 1),
		InactiveTab:   lipgloss.NewStyle().Foreground(p.Muted).Padding(0, 1),
		Skeleton:      lipgloss.NewStyle().Foreground(p.Surface),
		Help:          lipgloss.NewStyle().Foreground(p.Muted).Italic(true),
		Muted:         lipgloss.NewStyle().Foreground(p.Muted),
		Separator:     lipgloss.NewStyle().Foreground(p.Muted),
		StatusInfo:    lipgloss.NewStyle().Foreground(p.Muted),
		StatusSuccess: lipgloss.NewStyle().Foreground(p.Success),
		StatusWarn:    lipgloss.NewStyle().Foreground(p.Highlight),
		StatusError:   lipgloss.NewStyle().Foreground(p.Error).Bold(true),
		End:           lipgloss.NewStyle().Foreground(p.Muted).Italic(true),
		Hint:          lipgloss.NewStyle().Foreground(p.Highlight),
	}
}

func (s Styles) status(kind StatusKind) lipgloss.Style {
	switch kind {
	case StatusSuccess:
		return s.StatusSuccess
	case StatusWarn:
		return s.StatusWarn
	case StatusError:
		return s.StatusError
	default:
		return s.StatusInfo
	}
}

func (s Styles) CompactBanner(message string) string {
	lines := make([]string, 0, len(LogoLines))
	for _, line := range LogoLines {
		lines = append(lines, s.Logo.Render(line))
	}
	logo := lipgloss.JoinVertical(lipgloss.Center, lines...)
	if message == "" {
		return logo
	}
	return lipgloss.JoinVertical(lipgloss.Center, logo, "", s.Help.Render(message))
}

// VersionTag prefixes version with "v" unless it is empty, "dev" or
// already prefixed.
func VersionTag(version string) string {
	if version == "" || version == "dev" {
		return ""
	}
	if version[0] == 'v' || version[0] == 'V' {
		return version
	}
	return "v" + version
}

// ShowBanner writes the startup banner to w.
func ShowBanner(w io.Writer, version string, p theme.Palette) {
	colors := []lipgloss.Color{p.Primary, p.Secondary, p.Accent}

	lines := make([]string, 0, len(LogoLines)+3)
	for i, line := range LogoLines {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(colors[i%len(colors)]).
			Bold(true).
			Render(line))
	}
	tagline := AppDescription
	if tag := VersionTag(version); tag != "" {
		tagline = fmt.Sprintf("%s %s", tagline, tag)
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(p.Muted).Render(tagline))

	border := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(p.Secondary).
		Padding(1, 3).
		MarginTop(1)

	out := border.Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
	width := max(lipgloss.Width(out), 70)
	fmt.Fprintln(w, lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(out))
	fmt.Fprintln(w, lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		MarginBottom(1).
		Foreground(p.Accent).
		Render(RepoURL))
}
