package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"

	"github.com/zhycn/batool/internal/catalog"
)

type field int

const (
	fieldName field = iota
	fieldDescription
	fieldCategory
	fieldTags
	fieldCount
)

// fieldSource exposes one field of every item (or every tag) to sahilm/fuzzy.
type fieldSource struct {
	values []string
	owners []int
}

func (s fieldSource) String(i int) string { return s.values[i] }
func (s fieldSource) Len() int            { return len(s.values) }

type fuzzyIndex struct {
	items   []catalog.Item
	fields  [fieldCount]fieldSource
	weights [fieldCount]float64
	total   float64
	opts    Options
}

func newFuzzyIndex(items []catalog.Item, opts Options) *fuzzyIndex {
	idx := &fuzzyIndex{
		items: items,
		opts:  opts,
		weights: [fieldCount]float64{
			opts.Weights.Name,
			opts.Weights.Description,
			opts.Weights.Category,
			opts.Weights.Tags,
		},
		total: opts.Weights.total(),
	}
	for i, it := range items {
		idx.fields[fieldName].add(it.Name, i)
		idx.fields[fieldDescription].add(it.Description, i)
		idx.fields[fieldCategory].add(it.Category, i)
		for _, tag := range it.Tags {
			idx.fields[fieldTags].add(tag, i)
		}
	}
	return idx
}

func (s *fieldSource) add(v string, owner int) {
	if v == "" {
		return
	}
	s.values = append(s.values, v)
	s.owners = append(s.owners, owner)
}

func (f *fuzzyIndex) DocCount() int { return len(f.items) }

func (f *fuzzyIndex) Search(query string) []catalog.Item {
	q, ok := normalizeQuery(query, f.opts.MinMatchCharLength)
	if !ok {
		return []catalog.Item{}
	}
	lowerQ := strings.ToLower(q)

	// best[field][item] is the lowest looseness seen, or -1 for no match.
	var best [fieldCount][]float64
	for fi := range best {
		best[fi] = make([]float64, len(f.items))
		for i := range best[fi] {
			best[fi][i] = -1
		}
		src := f.fields[fi]
		for _, m := range fuzzy.FindFromNoSort(q, src) {
			l := f.looseness(src.values[m.Index], lowerQ, m.MatchedIndexes)
			if l > f.opts.Threshold {
				continue
			}
			owner := src.owners[m.Index]
			if cur := best[fi][owner]; cur < 0 || l < cur {
				best[fi][owner] = l
			}
		}
	}

	type hit struct {
		pos   int
		score float64
	}
	var hits []hit
	for i := range f.items {
		var sum float64
		matched := false
		for fi := range best {
			if l := best[fi][i]; l >= 0 {
				sum += f.weights[fi] * (1 - l)
				matched = true
			}
		}
		if matched {
			hits = append(hits, hit{pos: i, score: sum / f.total})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score > hits[b].score })

	out := make([]catalog.Item, len(hits))
	for i, h := range hits {
		out[i] = f.items[h.pos]
	}
	return out
}

// looseness grades a match from 0 (contiguous) towards 1 (scattered).
// A case-insensitive substring always scores 0 before the location penalty.
func (f *fuzzyIndex) looseness(value, lowerQ string, matched []int) float64 {
	var l float64
	start := 0
	if pos := strings.Index(strings.ToLower(value), lowerQ); pos >= 0 && len(value) == len(strings.ToLower(value)) {
		start = utf8.RuneCountInString(value[:pos])
	} else if len(matched) > 0 {
		first, last := matched[0], matched[len(matched)-1]
		_, size := utf8.DecodeRuneInString(value[last:])
		span := utf8.RuneCountInString(value[first : last+size])
		l = 1 - float64(len(matched))/float64(span)
		start = utf8.RuneCountInString(value[:first])
	}
	if !f.opts.IgnoreLocation {
		l += float64(start) / 100
	}
	if l > 1 {
		l = 1
	}
	return l
}
