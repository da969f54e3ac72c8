package playlist

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const defaultFetchTimeout = 60 * time.Second

// Fetcher downloads the upstream playlist. A failed fetch is fatal to the
// whole sync pass: reconciling against an empty index would mark every item
// inactive.
type Fetcher struct {
	url    string
	client *http.Client
}

// NewFetcher creates a fetcher for the configured playlist URL.
func NewFetcher(url string, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Fetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch downloads and parses the playlist into an Index.
func (f *Fetcher) Fetch(ctx context.Context) (*Index, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build playlist request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch playlist: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read playlist body: %w", err)
	}

	idx := Parse(string(body))
	log.Printf("[playlist] parsed %d entries from upstream", idx.Len())
	return idx, nil
}
