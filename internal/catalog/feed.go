package catalog

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/zhycn/batool/internal/debuglog"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// FeedParser turns an RSS/Atom/JSON feed into directory entries: the entry
// title becomes the tool name, the first entry category becomes the tool
// category and the remaining categories become tags.
type FeedParser struct {
	parser *gofeed.Parser
}

func NewFeedParser() *FeedParser {
	return &FeedParser{parser: gofeed.NewParser()}
}

func (p *FeedParser) Parse(r io.Reader) ([]Item, error) {
	feed, err := p.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	seen := make(map[string]bool, len(feed.Items))
	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		name := strings.TrimSpace(entry.Title)
		if name == "" || entry.Link == "" {
			continue
		}
		if seen[name] {
			debuglog.Warnf("feed %q: skipping duplicate entry %q", feed.Title, name)
			continue
		}
		seen[name] = true

		item := Item{
			Name:        name,
			URL:         entry.Link,
			Description: plainText(entry.Description),
		}
		if len(entry.Categories) > 0 {
			item.Category = entry.Categories[0]
			item.Tags = append([]string(nil), entry.Categories[1:]...)
		}
		if entry.Image != nil {
			item.Icon = entry.Image.URL
		}
		items = append(items, item)
	}

	return items, nil
}

func plainText(s string) string {
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}
