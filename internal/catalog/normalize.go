package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zhycn/batool/internal/validation"
)

var (
	// ErrEmptyName is returned for entries without a name.
	ErrEmptyName = errors.New("tool name cannot be empty")
	// ErrDuplicateName is returned when two entries share a name.
	ErrDuplicateName = errors.New("duplicate tool name")
)

// Normalize trims every field, drops blank tags, validates links and checks
// name uniqueness. It returns a fresh slice; the input is not modified.
func Normalize(items []Item) ([]Item, error) {
	validator := validation.NewLinkValidator()
	seen := make(map[string]int, len(items))
	out := make([]Item, 0, len(items))

	for i, raw := range items {
		item := Item{
			Name:        strings.TrimSpace(raw.Name),
			Category:    strings.TrimSpace(raw.Category),
			Description: strings.TrimSpace(raw.Description),
			Icon:        strings.TrimSpace(raw.Icon),
			Tags:        cleanTags(raw.Tags),
		}
		if item.Name == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrEmptyName)
		}
		if prev, dup := seen[item.Name]; dup {
			return nil, fmt.Errorf("entry %d %q (first seen at %d): %w", i, item.Name, prev, ErrDuplicateName)
		}
		link, err := validator.ValidateAndNormalize(raw.URL)
		if err != nil {
			return nil, fmt.Errorf("entry %d %q: %w", i, item.Name, err)
		}
		item.URL = link
		seen[item.Name] = i
		out = append(out, item)
	}

	return out, nil
}

func cleanTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
