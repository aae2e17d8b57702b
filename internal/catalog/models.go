package catalog

import "strings"

// UncategorizedLabel is shown for items that carry no category.
const UncategorizedLabel = "uncategorized"

// Item is a single directory entry. Name is the identity key and is unique
// within a corpus.
type Item struct {
	Name        string   `json:"name" yaml:"name" toml:"name"`
	URL         string   `json:"url" yaml:"url" toml:"url"`
	Category    string   `json:"category,omitempty" yaml:"category,omitempty" toml:"category,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Tags        []string `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty"`
	Icon        string   `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty"`
}

// CategoryLabel returns the category for display, falling back to
// UncategorizedLabel.
func (i Item) CategoryLabel() string {
	if i.Category == "" {
		return UncategorizedLabel
	}
	return i.Category
}

// Uncategorized reports whether the item has no category.
func (i Item) Uncategorized() bool {
	return i.Category == ""
}

// HasTag reports whether the item carries tag, ignoring case.
func (i Item) HasTag(tag string) bool {
	for _, t := range i.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// document is the on-disk shape for object-style corpora:
//
//	{"tools": [...]}
type document struct {
	Tools []Item `json:"tools" yaml:"tools" toml:"tools"`
}
