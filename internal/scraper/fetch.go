package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/unive-tools/schedule-sync/internal/logger"
)

// Fetcher retrieves a document by URL. The caller closes the returned body.
type Fetcher interface {
	FetchDocument(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher is the Fetcher used against the live site.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher with the given request timeout and User-Agent.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = Timeout
	}
	if userAgent == "" {
		userAgent = UserAgent
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// FetchDocument performs one GET and returns the body of a 200 response.
func (f *HTTPFetcher) FetchDocument(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	logger.IncrCounter("http.requests")
	logger.RecordTiming("scrape.fetch", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	logger.Debug("fetched schedule page", logger.Fields{
		"url":    url,
		"status": resp.StatusCode,
	})
	return resp.Body, nil
}
