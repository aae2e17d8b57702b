package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/zhycn/batool/internal/debuglog"
	"github.com/zhycn/batool/internal/validation"
)

// Format identifies a corpus encoding.
type Format int

const (
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
	FormatTOML
	FormatFeed
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatFeed:
		return "feed"
	default:
		return "auto"
	}
}

// DetectFormat guesses the format from a file name or URL path.
func DetectFormat(name string) Format {
	if u, err := url.Parse(name); err == nil && u.Scheme != "" && u.Host != "" {
		name = u.Path
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	case ".xml", ".rss", ".atom":
		return FormatFeed
	default:
		return FormatAuto
	}
}

// formatForContentType maps a response content type, used when the URL path
// carries no extension.
func formatForContentType(contentType string) Format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return FormatAuto
	}
	switch {
	case mediaType == "application/json":
		return FormatJSON
	case strings.Contains(mediaType, "yaml"):
		return FormatYAML
	case strings.Contains(mediaType, "toml"):
		return FormatTOML
	case strings.Contains(mediaType, "xml"), strings.Contains(mediaType, "rss"), strings.Contains(mediaType, "atom"):
		return FormatFeed
	default:
		return FormatAuto
	}
}

// sniff picks a format from the first meaningful byte of data.
func sniff(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return FormatJSON
	}
	// A corpus list is never a JSON array of arrays, so "[[" is TOML.
	if bytes.HasPrefix(trimmed, []byte("[[")) || bytes.Contains(trimmed, []byte("[[tools]]")) {
		return FormatTOML
	}
	switch trimmed[0] {
	case '[', '{':
		return FormatJSON
	case '<':
		return FormatFeed
	}
	return FormatYAML
}

// Decode parses data in the given format. Object-style documents
// ({"tools": [...]}) and bare lists are both accepted for JSON and YAML;
// TOML requires [[tools]] tables.
func Decode(data []byte, format Format) ([]Item, error) {
	if format == FormatAuto {
		format = sniff(data)
	}

	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatTOML:
		var doc document
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding toml corpus: %w", err)
		}
		return doc.Tools, nil
	case FormatFeed:
		return NewFeedParser().Parse(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported corpus format %d", format)
	}
}

func decodeJSON(data []byte) ([]Item, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []Item{}, nil
	}
	if trimmed[0] == '[' {
		var items []Item
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decoding json corpus: %w", err)
		}
		return items, nil
	}
	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decoding json corpus: %w", err)
	}
	return doc.Tools, nil
}

func decodeYAML(data []byte) ([]Item, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decoding yaml corpus: %w", err)
	}
	if len(root.Content) == 0 {
		return []Item{}, nil
	}
	node := root.Content[0]
	if node.Kind == yaml.SequenceNode {
		var items []Item
		if err := node.Decode(&items); err != nil {
			return nil, fmt.Errorf("decoding yaml corpus: %w", err)
		}
		return items, nil
	}
	var doc document
	if err := node.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding yaml corpus: %w", err)
	}
	return doc.Tools, nil
}

// Loader reads a corpus from a local path or an http(s) URL. It remembers
// cache validators per remote source so repeated loads are conditional.
type Loader struct {
	fetcher *Fetcher

	mu      sync.Mutex
	sources map[string]*Source
}

func NewLoader(timeout time.Duration, userAgent string) *Loader {
	return &Loader{
		fetcher: NewFetcher(timeout, userAgent),
		sources: make(map[string]*Source),
	}
}

// IsRemote reports whether location names an http(s) corpus.
func IsRemote(location string) bool {
	return validation.HasHTTPScheme(strings.TrimSpace(location))
}

// Load reads, decodes and normalizes the corpus at location. For remote
// corpora ErrNotModified is returned when the server reports no change.
// BuiltinSource loads the list embedded in the binary.
func (l *Loader) Load(ctx context.Context, location string) ([]Item, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("corpus source cannot be empty")
	}
	if location == BuiltinSource {
		return Builtin()
	}

	var (
		data   []byte
		format Format
		commit func()
		err    error
	)
	if IsRemote(location) {
		data, format, commit, err = l.loadRemote(ctx, location)
	} else {
		data, format, err = loadFile(location)
	}
	if err != nil {
		return nil, err
	}

	raw, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	items, err := Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", location, err)
	}
	if commit != nil {
		commit()
	}

	debuglog.WithFields(map[string]any{"source": location, "format": format.String()}).
		Infof("loaded %d tools", len(items))
	return items, nil
}

func loadFile(location string) ([]byte, Format, error) {
	clean := filepath.Clean(location)
	data, err := os.ReadFile(clean)
	if err != nil {
		return nil, FormatAuto, fmt.Errorf("reading corpus: %w", err)
	}
	return data, DetectFormat(clean), nil
}

// loadRemote fetches location. The returned commit records the response's
// cache validators; call it only once the body decoded cleanly, otherwise a
// bad payload would be answered with 304 forever.
func (l *Loader) loadRemote(ctx context.Context, location string) ([]byte, Format, func(), error) {
	normalized, err := validation.NewSourceValidator().ValidateAndNormalize(location)
	if err != nil {
		return nil, FormatAuto, nil, fmt.Errorf("corpus source: %w", err)
	}

	l.mu.Lock()
	src, ok := l.sources[normalized]
	if !ok {
		src = &Source{URL: normalized}
		l.sources[normalized] = src
	}
	snapshot := *src
	l.mu.Unlock()

	resp, err := l.fetcher.Fetch(ctx, &snapshot)
	if err != nil {
		return nil, FormatAuto, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, FormatAuto, nil, fmt.Errorf("reading corpus body: %w", err)
	}

	format := DetectFormat(normalized)
	if format == FormatAuto {
		format = formatForContentType(resp.Header.Get("Content-Type"))
	}
	commit := func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.fetcher.UpdateSource(src, resp)
	}
	return data, format, commit, nil
}
