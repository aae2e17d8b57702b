// Package filter derives the visible tool list from the corpus, the selected
// category and the current search result.
package filter

import "github.com/zhycn/batool/internal/catalog"

// All selects every category.
const All = "all"

// Apply returns the items of corpus that belong to category and, when
// matches is non-nil, also appear in matches. A nil matches means no search
// is active; an empty non-nil one means the search found nothing.
// The result is always a fresh slice in corpus order.
func Apply(corpus []catalog.Item, category string, matches []catalog.Item) []catalog.Item {
	var hit map[string]struct{}
	if matches != nil {
		hit = make(map[string]struct{}, len(matches))
		for _, m := range matches {
			hit[m.Name] = struct{}{}
		}
	}

	out := make([]catalog.Item, 0, len(corpus))
	for _, it := range corpus {
		if !InCategory(it, category) {
			continue
		}
		if hit != nil {
			if _, ok := hit[it.Name]; !ok {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

// InCategory reports whether it is selected by category. Uncategorized
// items only show under All.
func InCategory(it catalog.Item, category string) bool {
	if category == All {
		return true
	}
	return it.Category != "" && it.Category == category
}

// Categories lists the distinct non-empty categories in order of first
// appearance.
func Categories(corpus []catalog.Item) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, it := range corpus {
		if it.Category == "" {
			continue
		}
		if _, ok := seen[it.Category]; ok {
			continue
		}
		seen[it.Category] = struct{}{}
		out = append(out, it.Category)
	}
	return out
}

// Counts returns how many items each category holds, keyed like Categories
// plus All.
func Counts(corpus []catalog.Item) map[string]int {
	counts := map[string]int{All: len(corpus)}
	for _, it := range corpus {
		if it.Category != "" {
			counts[it.Category]++
		}
	}
	return counts
}
