package filter

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhycn/batool/internal/catalog"
	"github.com/zhycn/batool/internal/search"
)

func tools() []catalog.Item {
	return []catalog.Item{
		{Name: "Figma", URL: "https://figma.com", Category: "Design"},
		{Name: "jq", URL: "https://jqlang.org", Category: "CLI", Tags: []string{"json"}},
		{Name: "Notes", URL: "https://notes.dev"},
		{Name: "JSON Crack", URL: "https://jsoncrack.com", Category: "Data", Description: "visualize JSON"},
		{Name: "fx", URL: "https://fx.wtf", Category: "CLI", Description: "terminal JSON viewer"},
	}
}

func itemNames(items []catalog.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

// isSubsequence reports whether sub appears in full in the same relative order.
func isSubsequence(sub, full []catalog.Item) bool {
	j := 0
	for _, it := range full {
		if j < len(sub) && cmp.Equal(sub[j], it) {
			j++
		}
	}
	return j == len(sub)
}

func TestApply(t *testing.T) {
	tests := []struct {
		name     string
		category string
		matches  []catalog.Item
		want     []string
	}{
		{"all without search", All, nil, []string{"Figma", "jq", "Notes", "JSON Crack", "fx"}},
		{"category without search", "CLI", nil, []string{"jq", "fx"}},
		{"unknown category", "Audio", nil, []string{}},
		{"uncategorized label never selects", catalog.UncategorizedLabel, nil, []string{}},
		{"empty selector never selects", "", nil, []string{}},
		{"empty search result", All, []catalog.Item{}, []string{}},
		{
			name:     "search result reordered to corpus order",
			category: All,
			matches:  []catalog.Item{{Name: "fx"}, {Name: "Notes"}, {Name: "jq"}},
			want:     []string{"jq", "Notes", "fx"},
		},
		{
			name:     "search intersected with category",
			category: "CLI",
			matches:  []catalog.Item{{Name: "JSON Crack"}, {Name: "fx"}},
			want:     []string{"fx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tools(), tt.category, tt.matches)
			require.NotNil(t, got)
			if diff := cmp.Diff(tt.want, itemNames(got)); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_EmptyCorpus(t *testing.T) {
	assert.Empty(t, Apply(nil, All, nil))
	assert.Empty(t, Apply([]catalog.Item{}, "CLI", []catalog.Item{{Name: "jq"}}))
}

func TestApply_DoesNotAliasCorpus(t *testing.T) {
	corpus := tools()
	got := Apply(corpus, All, nil)
	got[0].Name = "changed"
	assert.Equal(t, "Figma", corpus[0].Name)
}

// Every filtered result is a corpus-order subsequence whose members satisfy
// the category predicate, for every category and a range of queries.
func TestApply_SubsequenceProperty(t *testing.T) {
	corpus := tools()
	idx, err := search.Build(search.EngineFuzzy, corpus, search.DefaultOptions())
	require.NoError(t, err)

	categories := append([]string{All, "", "Audio"}, Categories(corpus)...)
	queries := []string{"", "json", "j", "cli", "zzz", "figma", "viewer"}

	for _, cat := range categories {
		for _, q := range queries {
			t.Run(fmt.Sprintf("%s/%s", cat, q), func(t *testing.T) {
				var matches []catalog.Item
				if q != "" {
					matches = idx.Search(q)
				}
				got := Apply(corpus, cat, matches)
				assert.True(t, isSubsequence(got, corpus), "not a corpus subsequence: %v", itemNames(got))
				for _, it := range got {
					assert.True(t, InCategory(it, cat))
				}
			})
		}
	}
}

// Scenario: category then search, and search then category, agree.
func TestApply_OrderOfOperationsAgrees(t *testing.T) {
	corpus := tools()
	idx, err := search.Build(search.EngineFuzzy, corpus, search.DefaultOptions())
	require.NoError(t, err)

	matches := idx.Search("json")
	got := Apply(corpus, "CLI", matches)
	assert.Equal(t, []string{"jq", "fx"}, itemNames(got))

	byCategory := Apply(corpus, "CLI", nil)
	again := Apply(byCategory, "CLI", matches)
	assert.Empty(t, cmp.Diff(got, again))
}

// Scenario: an uncategorized item only shows under All and stays searchable.
func TestApply_UncategorizedItem(t *testing.T) {
	corpus := tools()
	idx, err := search.Build(search.EngineFuzzy, corpus, search.DefaultOptions())
	require.NoError(t, err)

	assert.Contains(t, itemNames(Apply(corpus, All, nil)), "Notes")
	for _, cat := range Categories(corpus) {
		assert.NotContains(t, itemNames(Apply(corpus, cat, nil)), "Notes")
	}
	assert.Equal(t, []string{"Notes"}, itemNames(Apply(corpus, All, idx.Search("notes"))))
}

func TestCategories(t *testing.T) {
	assert.Equal(t, []string{"Design", "CLI", "Data"}, Categories(tools()))
	assert.Nil(t, Categories(nil))
}

func TestCounts(t *testing.T) {
	assert.Equal(t, map[string]int{All: 5, "Design": 1, "CLI": 2, "Data": 1}, Counts(tools()))
}
