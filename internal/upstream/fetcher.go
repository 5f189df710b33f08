// Package upstream talks to the third-party product catalog API.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rogerio-castellano/catalog-proxy/internal/logger"
	"github.com/rogerio-castellano/catalog-proxy/internal/models"
	"github.com/rogerio-castellano/catalog-proxy/internal/repo"
)

const (
	DefaultTimeout    = 15 * time.Second
	DefaultRetries    = 2
	DefaultRetryDelay = 2 * time.Second
)

// ErrUnexpectedStatus is returned for any non-2xx upstream response.
var ErrUnexpectedStatus = errors.New("unexpected upstream status")

// Recorder receives fetch outcomes. repo.StatsRepository satisfies it.
type Recorder interface {
	Incr(ctx context.Context, key repo.StatsKey) error
	MarkSuccess(ctx context.Context, at time.Time) error
}

type Options struct {
	BaseURL string
	// Timeout bounds each attempt of FetchAll.
	Timeout time.Duration
	// Retries is the number of additional FetchAll attempts after the first one fails.
	Retries    int
	RetryDelay time.Duration
	Client     *http.Client
	Stats      Recorder
}

// Fetcher is safe for concurrent use. It keeps no cache.
type Fetcher struct {
	baseURL    string
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	client     *http.Client
	stats      Recorder
}

func New(opts Options) *Fetcher {
	f := &Fetcher{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		timeout:    opts.Timeout,
		retries:    opts.Retries,
		retryDelay: opts.RetryDelay,
		client:     opts.Client,
		stats:      opts.Stats,
	}
	if f.timeout <= 0 {
		f.timeout = DefaultTimeout
	}
	if f.retries < 0 {
		f.retries = 0
	}
	if f.retryDelay < 0 {
		f.retryDelay = 0
	}
	if f.client == nil {
		f.client = &http.Client{}
	}
	if f.stats == nil {
		f.stats = nopRecorder{}
	}
	return f
}

// FetchAll returns the upstream product list. Failed attempts are retried
// after a fixed delay; once every attempt has failed the failure is logged and
// an empty list is returned.
func (f *Fetcher) FetchAll(ctx context.Context) []models.Product {
	attempts := f.retries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		products, err := f.fetchAllOnce(ctx)
		if err == nil {
			f.markSuccess(ctx)
			return products
		}

		lastErr = err
		f.incr(ctx, repo.StatUpstreamFailures)
		logger.WarnLog(ctx, "upstream fetch attempt %d/%d failed: %v", attempt, attempts, err)

		if attempt == attempts {
			break
		}
		if !wait(ctx, f.retryDelay) {
			lastErr = ctx.Err()
			break
		}
	}

	f.incr(ctx, repo.StatUpstreamFallbacks)
	logger.ErrorLog(ctx, lastErr, "upstream unavailable after %d attempts, serving empty product list", attempts)
	return []models.Product{}
}

func (f *Fetcher) fetchAllOnce(ctx context.Context) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var products []models.Product
	if err := f.getJSON(ctx, f.baseURL, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// FetchByID returns a single upstream product, or nil on any failure.
// It is attempted once and bounded only by ctx.
func (f *Fetcher) FetchByID(ctx context.Context, id string) models.Product {
	endpoint := f.baseURL + "/" + url.PathEscape(id)

	var product models.Product
	if err := f.getJSON(ctx, endpoint, &product); err != nil {
		f.incr(ctx, repo.StatUpstreamFailures)
		logger.WarnLog(ctx, "upstream fetch of product %q failed: %v", id, err)
		return nil
	}
	f.markSuccess(ctx)
	return product
}

func (f *Fetcher) getJSON(ctx context.Context, endpoint string, out any) error {
	f.incr(ctx, repo.StatUpstreamAttempts)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (f *Fetcher) incr(ctx context.Context, key repo.StatsKey) {
	if err := f.stats.Incr(context.WithoutCancel(ctx), key); err != nil {
		logger.DebugLog(ctx, "stats: incr %s: %v", key, err)
	}
}

func (f *Fetcher) markSuccess(ctx context.Context) {
	if err := f.stats.MarkSuccess(context.WithoutCancel(ctx), time.Now()); err != nil {
		logger.DebugLog(ctx, "stats: mark success: %v", err)
	}
}

// wait sleeps for d and reports false if ctx ended first.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

type nopRecorder struct{}

func (nopRecorder) Incr(context.Context, repo.StatsKey) error    { return nil }
func (nopRecorder) MarkSuccess(context.Context, time.Time) error { return nil }
