package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhycn/batool/internal/catalog"
	"github.com/zhycn/batool/internal/filter"
)

const (
	// headerHeight covers the title line, the bordered search box and the
	// category bar.
	headerHeight  = 5
	footerHeight  = 2
	categoryWidth = 14
)

func (a *App) listHeight() int {
	h := a.height - headerHeight - footerHeight
	if h < 1 {
		return 1
	}
	return h
}

func (a *App) renderTitle() string {
	st := a.ctrl.State()
	left := a.styles.Logo.Render(CompactLogo)
	info := MsgTotal(len(st.FilteredItems), len(st.AllItems))
	if a.indexing {
		info += " • " + MsgIndexing
	}
	right := a.styles.Muted.Render(fmt.Sprintf("%s • %s", info, a.themes.Current()))

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

func (a *App) renderSearchBox() string {
	inner := a.width - 6
	if inner < 10 {
		inner = 10
	}
	a.searchInput.Width = inner - 12

	border := a.styles.Palette.Muted
	if a.searchInput.Focused() {
		border = a.styles.Palette.Accent
	}

	content := a.searchInput.View()
	if a.searchInput.Value() != "" {
		hint := a.styles.Muted.Render("esc clear")
		gap := inner - lipgloss.Width(content) - lipgloss.Width(hint)
		if gap > 0 {
			content += strings.Repeat(" ", gap) + hint
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(inner + 2).
		Render(content)
}

func (a *App) renderCategoryBar() string {
	current := a.ctrl.State().CurrentCategory
	var tabs []string
	for _, cat := range a.ctrl.Categories() {
		label := cat
		if cat == filter.All {
			label = "All"
		}
		if cat == current {
			tabs = append(tabs, a.styles.ActiveTab.Render(label))
		} else {
			tabs = append(tabs, a.styles.InactiveTab.Render(label))
		}
	}
	return truncateANSI(strings.Join(tabs, " "), a.width)
}

// truncateANSI cuts styled text to width cells.
func truncateANSI(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}

func (a *App) renderRow(it catalog.Item, selected bool) string {
	width := a.width - 2
	if width < 20 {
		width = 20
	}
	nameWidth := width / 3
	descWidth := width - nameWidth - categoryWidth - 2

	name := it.Name
	if it.Icon != "" && !strings.Contains(it.Icon, "/") {
		name = it.Icon + " " + name
	}
	name = padRight(truncateEnd(name, nameWidth), nameWidth)
	desc := padRight(truncateEnd(it.Description, descWidth), descWidth)
	cat := truncateEnd(it.CategoryLabel(), categoryWidth)

	if selected {
		return a.styles.SelectedItem.Render("› " + name + " " + desc + " " + padRight(cat, categoryWidth))
	}
	return "  " + a.styles.Item.Render(name) + " " +
		a.styles.Description.Render(desc) + " " +
		a.styles.Category.Render(cat)
}

func (a *App) renderSkeleton() []string {
	width := a.width - 4
	if width < 10 {
		width = 10
	}
	rows := make([]string, 0, a.cfg.UI.SkeletonCount)
	for i := 0; i < a.cfg.UI.SkeletonCount; i++ {
		// Vary the bar length so the placeholder reads as a list.
		w := width * (6 + (i*3)%4) / 10
		prefix := "  "
		if i == 0 {
			prefix = a.spinner.View()
		}
		rows = append(rows, prefix+a.styles.Skeleton.Render(strings.Repeat("▆", w)))
	}
	return rows
}

func (a *App) renderEnd(selected bool) string {
	end := a.sink.end
	text := MsgEnd(end.Displayed, end.SuggestSearch)
	if selected {
		return a.styles.SelectedItem.Render("› " + text + " (enter to search)")
	}
	if end.SuggestSearch {
		return "  " + a.styles.Hint.Render(text)
	}
	return "  " + a.styles.End.Render(text)
}

func (a *App) renderEmpty() string {
	msg := a.cfg.UI.Placeholders.EmptyState
	if a.loadErr != nil {
		msg = "Could not load tools: " + a.loadErr.Error()
	}
	return lipgloss.NewStyle().
		Width(a.width).
		Height(a.listHeight()).
		Align(lipgloss.Center, lipgloss.Center).
		Render(a.styles.CompactBanner(msg))
}

// listRows renders every row of the list area before scrolling is applied.
func (a *App) listRows() []string {
	if a.sink.loading {
		return a.renderSkeleton()
	}
	rows := make([]string, 0, len(a.sink.items)+1)
	for i, it := range a.sink.items {
		rows = append(rows, a.renderRow(it, i == a.cursor && !a.searchInput.Focused()))
	}
	switch {
	case a.sink.end != nil:
		rows = append(rows, a.renderEnd(a.cursor == len(a.sink.items) && !a.searchInput.Focused()))
	case len(a.sink.items) > 0:
		rows = append(rows, "  "+a.spinner.View()+a.styles.Muted.Render("Loading more…"))
	}
	return rows
}

func (a *App) renderList() string {
	if a.sink.empty || (!a.sink.loading && len(a.sink.items) == 0) {
		return a.renderEmpty()
	}
	rows := a.listRows()
	h := a.listHeight()
	start := a.offset
	if start > len(rows) {
		start = len(rows)
	}
	end := start + h
	if end > len(rows) {
		end = len(rows)
	}
	visible := rows[start:end]
	for len(visible) < h {
		visible = append(visible, "")
	}
	return strings.Join(visible, "\n")
}

func (a *App) renderFooter() string {
	sep := a.styles.Separator.Render(strings.Repeat("─", max(a.width, 1)))

	var line string
	if a.status != "" {
		line = a.styles.status(a.statusKind).Render(a.status)
	} else {
		line = a.help.View(a.keyHandler.keys)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sep,
		lipgloss.NewStyle().Width(a.width).MaxHeight(1).Padding(0, 1).Render(line))
}
