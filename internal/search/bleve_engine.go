package search

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/zhycn/batool/internal/catalog"
)

// bleveIndex is an in-memory full-text index. Each item is one document
// keyed by its zero-padded corpus position so that ties sort in corpus order.
type bleveIndex struct {
	items []catalog.Item
	idx   bleve.Index
	opts  Options
}

func newBleveIndex(items []catalog.Item, opts Options) (*bleveIndex, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create bleve index: %w", err)
	}

	batch := idx.NewBatch()
	for i, it := range items {
		if err := batch.Index(docID(i), map[string]any{
			"name":        it.Name,
			"description": it.Description,
			"category":    it.Category,
			"tags":        it.Tags,
		}); err != nil {
			return nil, fmt.Errorf("index %q: %w", it.Name, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		return nil, fmt.Errorf("index corpus: %w", err)
	}
	return &bleveIndex{items: items, idx: idx, opts: opts}, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()
	for _, name := range []string{"name", "description", "category", "tags"} {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		fm.Store = false
		fm.IncludeTermVectors = false
		dm.AddFieldMappingsAt(name, fm)
	}
	im.DefaultMapping = dm
	return im
}

func docID(i int) string { return fmt.Sprintf("item:%06d", i) }

func docPos(id string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "item:"))
	return n, err == nil
}

// fuzziness maps the looseness threshold onto a bleve edit distance.
func fuzziness(threshold float64) int {
	switch {
	case threshold < 0.2:
		return 0
	case threshold < 0.5:
		return 1
	default:
		return 2
	}
}

func (b *bleveIndex) DocCount() int { return len(b.items) }

func (b *bleveIndex) Search(query string) []catalog.Item {
	q, ok := normalizeQuery(query, b.opts.MinMatchCharLength)
	if !ok || len(b.items) == 0 {
		return []catalog.Item{}
	}
	tokens := tokenize(q)
	if len(tokens) == 0 {
		return []catalog.Item{}
	}

	boosts := map[string]float64{
		"name":        b.opts.Weights.Name,
		"description": b.opts.Weights.Description,
		"category":    b.opts.Weights.Category,
		"tags":        b.opts.Weights.Tags,
	}
	fz := fuzziness(b.opts.Threshold)

	var qs []bleveQuery.Query
	for _, tok := range tokens {
		for field, boost := range boosts {
			mq := bleve.NewMatchQuery(tok)
			mq.SetField(field)
			mq.Fuzziness = fz
			mq.SetBoost(boost)
			qs = append(qs, mq)

			pq := bleve.NewPrefixQuery(tok)
			pq.SetField(field)
			pq.SetBoost(boost * 0.9)
			qs = append(qs, pq)
		}
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), len(b.items), 0, false)
	req.SortBy([]string{"-_score", "_id"})
	res, err := b.idx.Search(req)
	if err != nil {
		return []catalog.Item{}
	}

	out := make([]catalog.Item, 0, len(res.Hits))
	for _, h := range res.Hits {
		if pos, ok := docPos(h.ID); ok && pos < len(b.items) {
			out = append(out, b.items[pos])
		}
	}
	return out
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
