package handlers_integrated_test_suite

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/rogerio-castellano/catalog-proxy/internal/db"
	handler "github.com/rogerio-castellano/catalog-proxy/internal/http/handlers"
	"github.com/rogerio-castellano/catalog-proxy/internal/redissvc"
	"github.com/rogerio-castellano/catalog-proxy/internal/repo"
	"github.com/rogerio-castellano/catalog-proxy/internal/upstream"
)

const catalogJSON = `[
	{"id": 1, "title": "Shoe", "slug": "shoe-1", "price": 10},
	{"id": 2, "title": "Hat", "slug": "hat-1", "price": 50}
]`

func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(catalogJSON))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// setupPostgres wires the handlers to a postgres stats store, or skips when DATABASE_URL is unset.
func setupPostgres(t *testing.T) *repo.PostgresStatsRepository {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	database, err := db.Connect(context.Background(), dbURL)
	if err != nil {
		t.Fatalf("could not connect to database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	statsRepo := repo.NewPostgresStatsRepository(database)
	if err := statsRepo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("schema: %v", err)
	}
	return statsRepo
}

// setupRedis wires the handlers to a redis stats store, or skips when REDIS_ADDR is unset.
func setupRedis(t *testing.T) *repo.RedisStatsRepository {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	rs, err := redissvc.Connect(context.Background(), addr, "", 0)
	if err != nil {
		t.Fatalf("could not connect to redis: %v", err)
	}
	t.Cleanup(func() { rs.Close() })
	return repo.NewRedisStatsRepository(rs.Rdb(), "catalog:stats:test")
}

func wire(t *testing.T, statsRepo repo.StatsRepository) {
	t.Helper()
	if err := statsRepo.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	t.Cleanup(func() { statsRepo.Reset(context.Background()) })

	handler.SetStatsRepo(statsRepo)
	handler.SetFetcher(upstream.New(upstream.Options{
		BaseURL:    newUpstream(t).URL,
		Timeout:    time.Second,
		RetryDelay: time.Millisecond,
		Stats:      statsRepo,
	}))
}
