// Package discovery performs live office lookup when the semantic index
// cannot answer a query. It queries a place-search API first and falls back
// to scraping a government directory page, validating and cleaning every
// record before the pipeline sees it.
package discovery

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/corpix/uarand"

	"github.com/janseva-labs/janseva-bot-go/internal/ratelimit"
)

// httpClient wraps net/http with rate limiting, retries, and rotating
// User-Agent headers. Public data sources throttle aggressively.
type httpClient struct {
	client      *http.Client
	rateLimiter *ratelimit.Limiter
	maxRetries  int
}

func newHTTPClient(timeout time.Duration, requestsPerMinute float64, maxRetries int) *httpClient {
	return &httpClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		rateLimiter: ratelimit.NewPerMinute(requestsPerMinute),
		maxRetries:  maxRetries,
	}
}

// get performs a GET with rate limiting and retries. The caller closes the
// response body.
func (c *httpClient) get(ctx context.Context, url string) (*http.Response, error) {
	var resp *http.Response

	err := RetryWithBackoff(ctx, c.maxRetries, time.Second, func() error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return &permanentError{err: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return &permanentError{err: fmt.Errorf("failed to create request: %w", err)}
		}

		req.Header.Set("User-Agent", uarand.GetRandom())
		req.Header.Set("Accept", "application/json,text/html;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Encoding", "gzip")

		resp, err = c.client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_ = resp.Body.Close()

			statusErr := fmt.Errorf("unexpected status for %s: %d", url, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return &permanentError{err: statusErr}
			}
			return statusErr
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// getJSON performs a GET and decodes the JSON body into out.
func (c *httpClient) getJSON(ctx context.Context, url string, out any) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	reader, err := decodeBody(resp)
	if err != nil {
		return err
	}

	if err := json.NewDecoder(reader).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// getDocument performs a GET and parses the body as HTML.
func (c *httpClient) getDocument(ctx context.Context, url string) (*goquery.Document, error) {
	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

func decodeBody(resp *http.Response) (io.Reader, error) {
	if resp.Header.Get("Content-Encoding") != "gzip" {
		return resp.Body, nil
	}
	gzipReader, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress gzip: %w", err)
	}
	return gzipReader, nil
}
