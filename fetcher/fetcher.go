package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	ierrors "github.com/cnosuke/sheet-gallery/internal/errors"
	"github.com/cnosuke/sheet-gallery/types"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

type Config struct {
	Timeout    int
	UserAgent  string
	MaxWorkers int
}

// Fetcher defines the interface for retrieving the gallery endpoint and its images.
type Fetcher interface {
	// Fetch issues a GET request to urlStr and returns the body.
	// A non-2xx status is reported as *HTTPStatusError.
	Fetch(ctx context.Context, urlStr string) (*types.FetchResponse, error)

	// Probe checks whether each image URL can be loaded.
	// Results are returned in the order of urls.
	Probe(ctx context.Context, urls []string) []*types.ProbeResult
}

// HTTPStatusError is returned when the server answers with a non-2xx status.
type HTTPStatusError struct {
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP error! Status: %d", e.StatusCode)
}

// httpFetcher implements the Fetcher interface using HTTP.
type httpFetcher struct {
	client     *http.Client
	userAgent  string
	maxWorkers int
}

// NewHTTPFetcher creates a new httpFetcher.
func NewHTTPFetcher(cfg *Config) (Fetcher, error) {
	zap.S().Infow("creating new HTTP fetcher",
		"timeout", cfg.Timeout,
		"user_agent", cfg.UserAgent,
		"max_workers", cfg.MaxWorkers)

	if cfg.Timeout < 0 {
		return nil, errors.Newf("timeout must not be negative: %d", cfg.Timeout)
	}

	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	// Timeout 0 means the request may wait indefinitely.
	client := &http.Client{
		Timeout: time.Duration(cfg.Timeout) * time.Second,
	}

	return &httpFetcher{
		client:     client,
		userAgent:  cfg.UserAgent,
		maxWorkers: maxWorkers,
	}, nil
}

func (f *httpFetcher) do(ctx context.Context, method, urlStr string) (*http.Response, []string, error) {
	req, err := http.NewRequestWithContext(ctx, method, urlStr, nil)
	if err != nil {
		return nil, nil, ierrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", f.userAgent)

	// Track the redirect chain on a per-request copy of the client so
	// concurrent probes do not race on CheckRedirect.
	var redirectChain []string
	client := *f.client
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) == 1 {
			redirectChain = append(redirectChain, via[0].URL.String())
		}
		redirectChain = append(redirectChain, req.URL.String())
		// Images are requested without referrer information, also across redirects.
		req.Header.Del("Referer")
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		return nil
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, ierrors.Wrap(err, "failed to execute request")
	}
	return resp, redirectChain, nil
}

// Fetch fetches the raw body of a single URL.
func (f *httpFetcher) Fetch(ctx context.Context, urlStr string) (*types.FetchResponse, error) {
	zap.S().Debugw("fetching URL", "url", urlStr)

	resp, redirectChain, err := f.do(ctx, http.MethodGet, urlStr)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode}
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ierrors.Wrap(err, "failed to read response body")
	}

	zap.S().Debugw(
		"response received",
		"url", urlStr,
		"status", resp.StatusCode,
		"content-length", resp.ContentLength,
		"bytes", len(bodyBytes),
		"content_type", resp.Header.Get("Content-Type"),
	)

	originalURL := ""
	if len(redirectChain) > 0 && redirectChain[0] != resp.Request.URL.String() {
		originalURL = urlStr
	}

	return &types.FetchResponse{
		URL:         resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        bodyBytes,
		StatusCode:  resp.StatusCode,
		OriginalURL: originalURL,
	}, nil
}

func (f *httpFetcher) probe(ctx context.Context, urlStr string) *types.ProbeResult {
	if urlStr == "" {
		return &types.ProbeResult{URL: urlStr, Err: errors.New("empty image URL")}
	}

	status, err := f.status(ctx, http.MethodHead, urlStr)
	// Some image hosts refuse HEAD, so the check is repeated with GET.
	if err == nil && status == http.StatusMethodNotAllowed {
		status, err = f.status(ctx, http.MethodGet, urlStr)
	}
	if err != nil {
		return &types.ProbeResult{URL: urlStr, Err: err}
	}
	return &types.ProbeResult{URL: urlStr, StatusCode: status}
}

func (f *httpFetcher) status(ctx context.Context, method, urlStr string) (int, error) {
	resp, _, err := f.do(ctx, method, urlStr)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// Probe checks image URLs with a bounded pool of workers.
func (f *httpFetcher) Probe(ctx context.Context, urls []string) []*types.ProbeResult {
	zap.S().Debugw("probing image URLs", "count", len(urls), "workers", f.maxWorkers)

	results := make([]*types.ProbeResult, len(urls))
	if len(urls) == 0 {
		return results
	}

	type job struct {
		index int
		url   string
	}

	wg := &sync.WaitGroup{}
	jobs := make(chan job, len(urls))

	nWorkers := f.maxWorkers
	if nWorkers > len(urls) {
		nWorkers = len(urls)
	}

	for w := 1; w <= nWorkers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range jobs {
				res := f.probe(ctx, j.url)
				// Each worker writes only its own index.
				results[j.index] = res
				zap.S().Debugw("probe finished",
					"worker_id", workerID,
					"url", j.url,
					"status", res.StatusCode,
					"ok", res.OK())
			}
		}(w)
	}

	for i, u := range urls {
		jobs <- job{index: i, url: u}
	}
	close(jobs)

	wg.Wait()

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	zap.S().Infow("completed probing image URLs",
		"total", len(urls),
		"failed", failed)

	return results
}
