package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncateEnd fits s into limit terminal cells, ending in an ellipsis when
// it had to cut. Wide (CJK) runes count as two cells.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	return runewidth.Truncate(s, limit, "…")
}

// truncateMiddle keeps both ends of s, which matters for URLs.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= limit {
		return s
	}
	if limit == 1 {
		return "…"
	}
	keep := limit - 1
	left := runewidth.Truncate(s, keep-keep/2, "")
	rest := []rune(s)
	right := ""
	for i := len(rest) - 1; i >= 0; i-- {
		candidate := string(rest[i:])
		if runewidth.StringWidth(candidate) > keep/2 {
			break
		}
		right = candidate
	}
	return left + "…" + right
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// sanitizeQuery drops control characters and collapses runs of whitespace
// so pasted text searches the way it reads.
func sanitizeQuery(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			r = ' '
		}
		if r == ' ' || r == '\t' {
			if space {
				continue
			}
			space = true
			b.WriteRune(' ')
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
