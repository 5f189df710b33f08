package handlers

import (
	"context"

	"github.com/rogerio-castellano/catalog-proxy/internal/auth"
	"github.com/rogerio-castellano/catalog-proxy/internal/models"
	repo "github.com/rogerio-castellano/catalog-proxy/internal/repo"
)

// ProductFetcher is the upstream catalog as seen by the handlers.
type ProductFetcher interface {
	FetchAll(ctx context.Context) []models.Product
	FetchByID(ctx context.Context, id string) models.Product
}

var (
	fetcher     ProductFetcher
	statsRepo   repo.StatsRepository
	authService *auth.Service
	homePage    = "/dashboard"
)

func SetFetcher(f ProductFetcher) {
	fetcher = f
}

func SetStatsRepo(r repo.StatsRepository) {
	statsRepo = r
}

func SetAuthService(s *auth.Service) {
	authService = s
}

// SetHomePage sets where GET / redirects to.
func SetHomePage(path string) {
	if path != "" {
		homePage = path
	}
}
