// Package search builds query indexes over the tool corpus.
package search

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zhycn/batool/internal/catalog"
)

const (
	EngineFuzzy = "fuzzy"
	EngineBleve = "bleve"
)

var ErrUnknownEngine = errors.New("unknown search engine")

// Index answers free-text queries over a fixed corpus. Search never returns
// nil: an empty, non-nil slice means "searched, nothing matched".
// Returned slices are shared and must not be modified.
type Index interface {
	Search(query string) []catalog.Item
}

// DocCounter is implemented by indexes that can report their size.
type DocCounter interface {
	DocCount() int
}

// Weights are the relative importance of each searchable field.
type Weights struct {
	Name        float64
	Description float64
	Category    float64
	Tags        float64
}

func (w Weights) total() float64 {
	return w.Name + w.Description + w.Category + w.Tags
}

type Options struct {
	Weights Weights
	// Threshold is the loosest accepted field match, 0 exact to 1 anything.
	Threshold          float64
	IgnoreLocation     bool
	MinMatchCharLength int
	// CacheSize bounds the per-build query cache. 0 disables caching.
	CacheSize int
}

func DefaultOptions() Options {
	return Options{
		Weights: Weights{
			Name:        2,
			Description: 1.5,
			Category:    1,
			Tags:        1.2,
		},
		Threshold:          0.4,
		IgnoreLocation:     true,
		MinMatchCharLength: 1,
		CacheSize:          128,
	}
}

func (o Options) Validate() error {
	w := o.Weights
	if w.Name <= 0 || w.Description <= 0 || w.Category <= 0 || w.Tags <= 0 {
		return fmt.Errorf("search weights must be positive: %+v", w)
	}
	if o.Threshold < 0 || o.Threshold > 1 {
		return fmt.Errorf("search threshold must be within [0,1], got %v", o.Threshold)
	}
	if o.MinMatchCharLength < 1 {
		return fmt.Errorf("min match length must be at least 1, got %d", o.MinMatchCharLength)
	}
	if o.CacheSize < 0 {
		return fmt.Errorf("cache size cannot be negative, got %d", o.CacheSize)
	}
	return nil
}

// Build indexes items with the named engine. The items slice is copied.
func Build(engine string, items []catalog.Item, opts Options) (Index, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	corpus := append([]catalog.Item(nil), items...)

	var (
		idx Index
		err error
	)
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineFuzzy:
		idx = newFuzzyIndex(corpus, opts)
	case EngineBleve:
		idx, err = newBleveIndex(corpus, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, engine)
	}
	if err != nil {
		return nil, err
	}

	if opts.CacheSize > 0 {
		return NewCached(idx, opts.CacheSize)
	}
	return idx, nil
}

// ValidEngine reports whether Build accepts name.
func ValidEngine(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", EngineFuzzy, EngineBleve:
		return true
	}
	return false
}

// normalizeQuery trims q and reports whether it is long enough to search.
func normalizeQuery(q string, minLen int) (string, bool) {
	q = strings.TrimSpace(q)
	if q == "" || len([]rune(q)) < minLen {
		return "", false
	}
	return q, true
}
