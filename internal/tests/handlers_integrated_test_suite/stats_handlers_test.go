package handlers_integrated_test_suite

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rogerio-castellano/catalog-proxy/internal/http/router"
	"github.com/rogerio-castellano/catalog-proxy/internal/repo"
)

func exerciseStats(t *testing.T) {
	t.Helper()
	r := router.NewRouter()

	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/api/products?minPrice=20", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 OK, got %d", w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var s repo.Stats
	if err := json.NewDecoder(w.Body).Decode(&s); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if s.ProductListRequests != 2 {
		t.Errorf("expected 2 list requests, got %d", s.ProductListRequests)
	}
	if s.UpstreamAttempts != 2 {
		t.Errorf("expected 2 upstream attempts, got %d", s.UpstreamAttempts)
	}
	if s.LastSuccessAt == nil {
		t.Error("expected last_success_at to be set")
	}
}

func TestStats_Postgres(t *testing.T) {
	wire(t, setupPostgres(t))
	exerciseStats(t)
}

func TestStats_Redis(t *testing.T) {
	wire(t, setupRedis(t))
	exerciseStats(t)
}
