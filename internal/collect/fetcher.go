// Package collect implements the collection stage: issuer-site
// discovery, fund-page enrichment, batch price quotes, and assembly of
// the day's snapshot records.
package collect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	apperrors "weekly-etf-dashboard/internal/errors"
	"weekly-etf-dashboard/pkg/utils"
)

// maxBodyBytes caps a single fetched document. The product-guide PDF is
// the largest thing we pull and sits well under this.
const maxBodyBytes = 32 << 20

// Fetcher is the shared HTTP collaborator for the raw-document sources:
// one client, one politeness limiter, and a per-run URL cache so no page
// is hit twice within a run.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	retry   utils.RetryConfig
	ua      string

	mu    sync.Mutex
	cache map[string][]byte
}

// NewFetcher creates a fetcher. minInterval is the politeness delay
// between requests across all sources sharing this fetcher.
func NewFetcher(ua string, minInterval, timeout time.Duration) *Fetcher {
	if minInterval <= 0 {
		minInterval = 350 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
		retry:   utils.DefaultRetryConfig(),
		ua:      ua,
		cache:   make(map[string][]byte),
	}
}

// Get fetches a URL with throttling and retry, serving repeats from the
// per-run cache.
func (f *Fetcher) Get(ctx context.Context, source, url string) ([]byte, error) {
	f.mu.Lock()
	if body, ok := f.cache[url]; ok {
		f.mu.Unlock()
		return body, nil
	}
	f.mu.Unlock()

	body, err := utils.RetryWithResult(ctx, f.retry, func() ([]byte, error) {
		return f.fetch(ctx, url)
	})
	if err != nil {
		return nil, apperrors.NewScrapeError(source, url, err)
	}

	f.mu.Lock()
	f.cache[url] = body
	f.mu.Unlock()
	return body, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.ua)
	req.Header.Set("Accept", "text/html,application/json,application/pdf,*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}
