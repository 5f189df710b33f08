package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rogerio-castellano/catalog-proxy/internal/models"
	"github.com/rogerio-castellano/catalog-proxy/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var catalog = []models.Product{
	{"id": 1.0, "title": "Shoe", "slug": "shoe-1", "price": 10.0},
	{"id": 2.0, "title": "Hat", "slug": "hat-1", "price": 50.0},
}

// flakyUpstream fails the first failures calls with a 503 and then serves catalog.
func flakyUpstream(t *testing.T, failures int32) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= failures {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(catalog)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestFetcher(baseURL string, stats Recorder) *Fetcher {
	return New(Options{
		BaseURL:    baseURL,
		Timeout:    time.Second,
		Retries:    DefaultRetries,
		RetryDelay: 10 * time.Millisecond,
		Stats:      stats,
	})
}

func TestFetchAll_Success(t *testing.T) {
	srv, calls := flakyUpstream(t, 0)
	stats := repo.NewInMemoryStatsRepository()

	products := newTestFetcher(srv.URL, stats).FetchAll(context.Background())

	require.Len(t, products, 2)
	assert.Equal(t, "Shoe", products[0].Title())
	assert.EqualValues(t, 1, calls.Load())

	s, _ := stats.Snapshot(context.Background())
	assert.EqualValues(t, 1, s.UpstreamAttempts)
	assert.Zero(t, s.UpstreamFailures)
	assert.NotNil(t, s.LastSuccessAt)
}

func TestFetchAll_SucceedsOnThirdAttempt(t *testing.T) {
	srv, calls := flakyUpstream(t, 2)
	stats := repo.NewInMemoryStatsRepository()

	products := newTestFetcher(srv.URL, stats).FetchAll(context.Background())

	require.Len(t, products, 2)
	assert.Equal(t, "Hat", products[1].Title())
	assert.EqualValues(t, 3, calls.Load())

	s, _ := stats.Snapshot(context.Background())
	assert.EqualValues(t, 3, s.UpstreamAttempts)
	assert.EqualValues(t, 2, s.UpstreamFailures)
	assert.Zero(t, s.UpstreamFallbacks)
}

func TestFetchAll_ExhaustedReturnsEmptyList(t *testing.T) {
	srv, calls := flakyUpstream(t, 3)
	stats := repo.NewInMemoryStatsRepository()

	products := newTestFetcher(srv.URL, stats).FetchAll(context.Background())

	require.NotNil(t, products)
	assert.Empty(t, products)
	assert.EqualValues(t, 3, calls.Load())

	s, _ := stats.Snapshot(context.Background())
	assert.EqualValues(t, 3, s.UpstreamFailures)
	assert.EqualValues(t, 1, s.UpstreamFallbacks)
	assert.Nil(t, s.LastSuccessAt)
}

func TestFetchAll_WaitsBetweenAttempts(t *testing.T) {
	srv, _ := flakyUpstream(t, 3)
	f := New(Options{BaseURL: srv.URL, Timeout: time.Second, Retries: 2, RetryDelay: 40 * time.Millisecond})

	start := time.Now()
	f.FetchAll(context.Background())

	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestFetchAll_AttemptTimeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	f := New(Options{BaseURL: srv.URL, Timeout: 30 * time.Millisecond, Retries: 1, RetryDelay: time.Millisecond})

	start := time.Now()
	products := f.FetchAll(context.Background())

	assert.Empty(t, products)
	assert.EqualValues(t, 2, calls.Load())
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetchAll_MalformedBodyIsAFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "a list"}`))
	}))
	t.Cleanup(srv.Close)

	products := New(Options{BaseURL: srv.URL, Retries: 0}).FetchAll(context.Background())
	assert.Empty(t, products)
}

func TestFetchAll_NullBodyIsEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	t.Cleanup(srv.Close)

	products := New(Options{BaseURL: srv.URL}).FetchAll(context.Background())
	require.NotNil(t, products)
	assert.Empty(t, products)
}

func TestFetchAll_CancelledContextStopsRetrying(t *testing.T) {
	srv, calls := flakyUpstream(t, 10)
	f := New(Options{BaseURL: srv.URL, Timeout: time.Second, Retries: 2, RetryDelay: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	products := f.FetchAll(ctx)

	assert.Empty(t, products)
	assert.EqualValues(t, 1, calls.Load())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestFetchByID(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Path {
		case "/products/1":
			json.NewEncoder(w).Encode(catalog[0])
		case "/products/with space":
			json.NewEncoder(w).Encode(models.Product{"id": "with space"})
		case "/products/boom":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"not found"}`))
		}
	}))
	t.Cleanup(srv.Close)

	f := newTestFetcher(srv.URL+"/products/", nil)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		p := f.FetchByID(ctx, "1")
		require.NotNil(t, p)
		assert.Equal(t, "shoe-1", p.Slug())
	})

	t.Run("Escapes id", func(t *testing.T) {
		p := f.FetchByID(ctx, "with space")
		require.NotNil(t, p)
		assert.Equal(t, "with space", p["id"])
	})

	t.Run("Not found", func(t *testing.T) {
		assert.Nil(t, f.FetchByID(ctx, "999"))
	})

	t.Run("Server error is not retried", func(t *testing.T) {
		before := calls.Load()
		assert.Nil(t, f.FetchByID(ctx, "boom"))
		assert.EqualValues(t, 1, calls.Load()-before)
	})
}

func TestFetchByID_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	assert.Nil(t, New(Options{BaseURL: url}).FetchByID(context.Background(), "1"))
}

func TestNew_Defaults(t *testing.T) {
	f := New(Options{BaseURL: "http://example.com/products/", Retries: -3})

	assert.Equal(t, "http://example.com/products", f.baseURL)
	assert.Equal(t, DefaultTimeout, f.timeout)
	assert.Equal(t, 0, f.retries)
	assert.NotNil(t, f.client)
}
