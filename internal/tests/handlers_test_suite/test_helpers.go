package handlers_test_suite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rogerio-castellano/catalog-proxy/internal/auth"
	handler "github.com/rogerio-castellano/catalog-proxy/internal/http/handlers"
	mw "github.com/rogerio-castellano/catalog-proxy/internal/http/middleware"
	"github.com/rogerio-castellano/catalog-proxy/internal/models"
	"github.com/rogerio-castellano/catalog-proxy/internal/repo"
	"github.com/rogerio-castellano/catalog-proxy/internal/upstream"
)

var (
	statsRepo   *repo.InMemoryStatsRepository
	upstreamSrv *httptest.Server

	// upstreamFailures makes the fake upstream answer 503 for that many requests.
	upstreamFailures atomic.Int32
	upstreamCalls    atomic.Int32
	// upstreamPath is the escaped path of the last upstream request.
	upstreamPath atomic.Value

	catalog = []models.Product{
		{"id": 1.0, "title": "Shoe", "slug": "shoe-1", "price": 10.0, "images": []any{"https://img/shoe.png"}},
		{"id": 2.0, "title": "Hat", "slug": "hat-1", "price": 50.0},
		{"id": 3.0, "title": "Snowshoe", "slug": "snowshoe", "price": 120.0},
	}
)

func init() {
	upstreamSrv = httptest.NewServer(http.HandlerFunc(fakeUpstream))
	setupTestDeps("secret")
}

func fakeUpstream(w http.ResponseWriter, r *http.Request) {
	upstreamCalls.Add(1)
	upstreamPath.Store(r.URL.EscapedPath())
	if upstreamFailures.Load() > 0 {
		upstreamFailures.Add(-1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/products")
	if id == "" || id == "/" {
		json.NewEncoder(w).Encode(catalog)
		return
	}
	for _, p := range catalog {
		if fmt.Sprint(p["id"]) == strings.TrimPrefix(id, "/") {
			json.NewEncoder(w).Encode(p)
			return
		}
	}
	w.WriteHeader(http.StatusBadRequest)
	w.Write([]byte(`{"message":"Could not find any entity"}`))
}

func setupTestDeps(password string) {
	statsRepo = repo.NewInMemoryStatsRepository()
	handler.SetStatsRepo(statsRepo)

	handler.SetFetcher(upstream.New(upstream.Options{
		BaseURL:    upstreamSrv.URL + "/api/v1/products",
		Timeout:    time.Second,
		Retries:    2,
		RetryDelay: time.Millisecond,
		Stats:      statsRepo,
	}))

	hash, _ := auth.HashPassword(password)
	authService := auth.NewService("admin", hash, "test-secret", time.Minute)
	handler.SetAuthService(authService)
	mw.SetAuthService(authService)
	mw.SetRateLimiter(nil)
}

func resetState() {
	upstreamFailures.Store(0)
	upstreamCalls.Store(0)
	upstreamPath.Store("")
	mw.SetTrustProxy(false)
	statsRepo.Reset(context.Background())
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(r http.Handler, username, password string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(handler.CredentialsRequest{Username: username, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func generateToken(r http.Handler, username, password string) (string, error) {
	w := login(r, username, password)

	var resp handler.LoginResult
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		return "", fmt.Errorf("token decoding failed: %v", err)
	}
	return resp.Token, nil
}

func decodeProducts(w *httptest.ResponseRecorder) ([]models.Product, error) {
	var products []models.Product
	err := json.NewDecoder(w.Body).Decode(&products)
	return products, err
}
