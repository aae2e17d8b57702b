package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	defaultUserAgent = "batool/1.0 (tool directory; github.com/zhycn/batool)"
	defaultTimeout   = 30 * time.Second
)

// ErrNotModified is returned when a remote corpus has not changed since the
// last fetch.
var ErrNotModified = errors.New("corpus not modified")

// Source tracks a remote corpus location and its cache validators.
type Source struct {
	URL          string
	ETag         string
	LastModified string
	LastFetched  time.Time
}

type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch performs a conditional GET for src. The caller owns the response
// body. ErrNotModified is returned on 304.
func (f *Fetcher) Fetch(ctx context.Context, src *Source) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json, application/yaml, application/toml, application/rss+xml, application/atom+xml, text/xml;q=0.9, */*;q=0.5")

	if src.ETag != "" {
		req.Header.Set("If-None-Match", src.ETag)
	}
	if src.LastModified != "" {
		req.Header.Set("If-Modified-Since", src.LastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching corpus: %w", err)
	}

	if resp.StatusCode == http.StatusNotModified {
		resp.Body.Close()
		return nil, ErrNotModified
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	return resp, nil
}

// UpdateSource records the cache validators of a successful response.
func (f *Fetcher) UpdateSource(src *Source, resp *http.Response) {
	if etag := resp.Header.Get("ETag"); etag != "" {
		src.ETag = etag
	}
	if lastMod := resp.Header.Get("Last-Modified"); lastMod != "" {
		src.LastModified = lastMod
	}
	src.LastFetched = time.Now()
}
