package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_CategoryLabel(t *testing.T) {
	assert.Equal(t, "AI", Item{Category: "AI"}.CategoryLabel())
	assert.Equal(t, UncategorizedLabel, Item{}.CategoryLabel())
	assert.True(t, Item{}.Uncategorized())
	assert.False(t, Item{Category: "AI"}.Uncategorized())
}

func TestItem_HasTag(t *testing.T) {
	item := Item{Tags: []string{"CLI", "json"}}
	assert.True(t, item.HasTag("cli"))
	assert.True(t, item.HasTag("JSON"))
	assert.False(t, item.HasTag("yaml"))
}

func TestNormalize(t *testing.T) {
	items, err := Normalize([]Item{
		{Name: "  jq ", URL: "jqlang.org", Category: " CLI ", Tags: []string{" json ", "", "  "}},
		{Name: "Grafana", URL: "http://localhost:3000", Description: " dashboards "},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "jq", items[0].Name)
	assert.Equal(t, "https://jqlang.org", items[0].URL)
	assert.Equal(t, "CLI", items[0].Category)
	assert.Equal(t, []string{"json"}, items[0].Tags)

	assert.Equal(t, "dashboards", items[1].Description)
	assert.Nil(t, items[1].Tags)
	assert.True(t, items[1].Uncategorized())
}

func TestNormalize_Errors(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		is    error
		msg   string
	}{
		{
			name:  "empty name",
			items: []Item{{Name: "  ", URL: "https://go.dev"}},
			is:    ErrEmptyName,
		},
		{
			name:  "duplicate name",
			items: []Item{{Name: "Go", URL: "https://go.dev"}, {Name: "Go", URL: "https://golang.org"}},
			is:    ErrDuplicateName,
		},
		{
			name:  "missing url",
			items: []Item{{Name: "Go"}},
			msg:   "URL cannot be empty",
		},
		{
			name:  "bad scheme",
			items: []Item{{Name: "Go", URL: "ftp://go.dev"}},
			msg:   "http or https",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.items)
			require.Error(t, err)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is), "got %v", err)
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	in := []Item{{Name: " Go ", URL: "go.dev", Tags: []string{" lang "}}}
	_, err := Normalize(in)
	require.NoError(t, err)
	assert.Equal(t, " Go ", in[0].Name)
	assert.Equal(t, " lang ", in[0].Tags[0])
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		want Format
	}{
		{"tools.json", FormatJSON},
		{"tools.YAML", FormatYAML},
		{"tools.yml", FormatYAML},
		{"tools.toml", FormatTOML},
		{"feed.xml", FormatFeed},
		{"feed.rss", FormatFeed},
		{"https://tools.dev/list.json?v=2", FormatJSON},
		{"https://tools.dev/list", FormatAuto},
		{"tools", FormatAuto},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFormat(tt.name), tt.name)
	}
}

func TestFormatForContentType(t *testing.T) {
	assert.Equal(t, FormatJSON, formatForContentType("application/json; charset=utf-8"))
	assert.Equal(t, FormatYAML, formatForContentType("application/yaml"))
	assert.Equal(t, FormatTOML, formatForContentType("application/toml"))
	assert.Equal(t, FormatFeed, formatForContentType("application/rss+xml"))
	assert.Equal(t, FormatAuto, formatForContentType("text/plain"))
	assert.Equal(t, FormatAuto, formatForContentType(""))
}

const rssFixture = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Tools</title>
<item><title>ripgrep</title><link>https://github.com/BurntSushi/ripgrep</link>
<description>&lt;p&gt;fast &lt;b&gt;grep&lt;/b&gt;&lt;/p&gt;</description>
<category>CLI</category><category>search</category></item>
<item><title>ripgrep</title><link>https://example.org/dup</link></item>
<item><title>no link</title></item>
<item><title>fd</title><link>https://github.com/sharkdp/fd</link></item>
</channel></rss>`

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
		want   []string
	}{
		{"json array", `[{"name":"jq","url":"https://jqlang.org"}]`, FormatJSON, []string{"jq"}},
		{"json object", `{"tools":[{"name":"a","url":"https://a.dev"},{"name":"b","url":"https://b.dev"}]}`, FormatJSON, []string{"a", "b"}},
		{"json empty", `  `, FormatJSON, []string{}},
		{"yaml list", "- name: jq\n  url: https://jqlang.org\n  tags: [json]\n", FormatYAML, []string{"jq"}},
		{"yaml doc", "tools:\n  - name: fd\n    url: https://fd.dev\n", FormatYAML, []string{"fd"}},
		{"toml", "[[tools]]\nname = \"fzf\"\nurl = \"https://fzf.dev\"\n", FormatTOML, []string{"fzf"}},
		{"auto json", `[{"name":"x","url":"https://x.dev"}]`, FormatAuto, []string{"x"}},
		{"auto toml", "[[tools]]\nname = \"y\"\nurl = \"https://y.dev\"\n", FormatAuto, []string{"y"}},
		{"auto yaml", "- name: z\n  url: https://z.dev\n", FormatAuto, []string{"z"}},
		{"auto toml after comment", "# tools\n\n[[tools]]\nname = \"w\"\nurl = \"https://w.dev\"\n", FormatAuto, []string{"w"}},
		{"feed", rssFixture, FormatFeed, []string{"ripgrep", "fd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := Decode([]byte(tt.data), tt.format)
			require.NoError(t, err)
			names := make([]string, 0, len(items))
			for _, it := range items {
				names = append(names, it.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		data string
		want Format
	}{
		{`[{"name":"a"}]`, FormatJSON},
		{` {"tools":[]}`, FormatJSON},
		{"[[tools]]\nname = \"jq\"", FormatTOML},
		{"  [[tools]]", FormatTOML},
		{"title = \"x\"\n[[tools]]\n", FormatTOML},
		{"<rss/>", FormatFeed},
		{"- name: a", FormatYAML},
		{"", FormatJSON},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sniff([]byte(tt.data)), "%q", tt.data)
	}
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte(`[{"name":`), FormatJSON)
	assert.Error(t, err)

	_, err = Decode([]byte("tools = 3"), FormatTOML)
	assert.Error(t, err)

	_, err = Decode([]byte("not a feed"), FormatFeed)
	assert.Error(t, err)
}

func TestFeedParser_Mapping(t *testing.T) {
	items, err := Decode([]byte(rssFixture), FormatFeed)
	require.NoError(t, err)
	require.Len(t, items, 2)

	rg := items[0]
	assert.Equal(t, "https://github.com/BurntSushi/ripgrep", rg.URL)
	assert.Equal(t, "fast grep", rg.Description)
	assert.Equal(t, "CLI", rg.Category)
	assert.Equal(t, []string{"search"}, rg.Tags)

	assert.True(t, items[1].Uncategorized())
}

func writeCorpus(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeCorpus(t, "tools.yaml", `
tools:
  - name: jq
    url: jqlang.org
    category: CLI
  - name: Grafana
    url: http://localhost:3000
`)
	items, err := NewLoader(0, "").Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "https://jqlang.org", items[0].URL)
}

func TestLoader_LoadFile_Errors(t *testing.T) {
	l := NewLoader(0, "")

	_, err := l.Load(context.Background(), "")
	assert.Error(t, err)

	_, err = l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	dup := writeCorpus(t, "dup.json", `[{"name":"a","url":"https://a.dev"},{"name":"a","url":"https://b.dev"}]`)
	_, err = l.Load(context.Background(), dup)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestLoader_LoadRemote_Conditional(t *testing.T) {
	var hits, conditional int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Contains(t, r.Header.Get("User-Agent"), "batool-test")
		if r.Header.Get("If-None-Match") == `"v1"` {
			conditional++
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tools":[{"name":"jq","url":"https://jqlang.org"}]}`))
	}))
	defer srv.Close()

	l := NewLoader(0, "batool-test/1.0")
	items, err := l.Load(context.Background(), srv.URL+"/tools")
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = l.Load(context.Background(), srv.URL+"/tools")
	assert.ErrorIs(t, err, ErrNotModified)
	assert.Equal(t, 2, hits)
	assert.Equal(t, 1, conditional)
}

func TestLoader_LoadRemote_TOMLAsPlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("[[tools]]\nname = \"jq\"\nurl = \"https://jqlang.org\"\n"))
	}))
	defer srv.Close()

	items, err := NewLoader(0, "").Load(context.Background(), srv.URL+"/list")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "jq", items[0].Name)
}

func TestLoader_LoadRemote_InvalidPayloadNotCached(t *testing.T) {
	var conditional int
	payload := `[{"name":"jq","url":"ftp://bad"}]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			conditional++
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	l := NewLoader(0, "batool-test/1.0")
	_, err := l.Load(context.Background(), srv.URL+"/tools")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotModified))

	// The rejected body must not be vouched for on the next request.
	_, err = l.Load(context.Background(), srv.URL+"/tools")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotModified))
	assert.Zero(t, conditional)

	payload = `[{"name":"jq","url":"https://jqlang.org"}]`
	items, err := l.Load(context.Background(), srv.URL+"/tools")
	require.NoError(t, err)
	require.Len(t, items, 1)

	_, err = l.Load(context.Background(), srv.URL+"/tools")
	assert.ErrorIs(t, err, ErrNotModified)
	assert.Equal(t, 1, conditional)
}

func TestLoader_LoadRemote_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewLoader(0, "").Load(context.Background(), srv.URL+"/tools.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://tools.dev/list.json"))
	assert.True(t, IsRemote("  http://tools.dev "))
	assert.False(t, IsRemote("tools.json"))
}

func TestBuiltin(t *testing.T) {
	items, err := Builtin()
	require.NoError(t, err)
	require.NotEmpty(t, items)

	seen := map[string]bool{}
	uncategorized := 0
	for _, it := range items {
		assert.False(t, seen[it.Name], "duplicate %s", it.Name)
		seen[it.Name] = true
		assert.Contains(t, it.URL, "https://")
		if it.Uncategorized() {
			uncategorized++
		}
	}
	assert.Equal(t, 1, uncategorized)
}

func TestLoader_LoadBuiltin(t *testing.T) {
	items, err := NewLoader(0, "").Load(context.Background(), BuiltinSource)
	require.NoError(t, err)
	assert.NotEmpty(t, items)
}
