package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	repo "github.com/rogerio-castellano/catalog-proxy/internal/repo"
)

// GetProductsHandler godoc
// @Summary List upstream products
// @Description Fetches the upstream catalog and narrows it by the optional filters. Upstream failures yield an empty list.
// @Tags products
// @Produce json
// @Param title query string false "Case-insensitive title substring"
// @Param slug query string false "Exact slug"
// @Param minPrice query number false "Minimum price (inclusive)"
// @Param maxPrice query number false "Maximum price (inclusive)"
// @Success 200 {array} object
// @Router /api/products [get]
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordStat(ctx, repo.StatProductListRequests)

	products := fetcher.FetchAll(ctx)
	filtered := repo.FilterProducts(products, repo.ProductFilterFromQuery(r.URL.Query()))

	respond(ctx, w, http.StatusOK, filtered)
}

// GetProductByIDHandler godoc
// @Summary Get an upstream product by ID
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} object
// @Failure 404 {object} ErrorResponse
// @Router /api/products/{id} [get]
func GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recordStat(ctx, repo.StatProductItemRequests)

	id := productID(r)
	if id != "" {
		if product := fetcher.FetchByID(ctx, id); product != nil {
			respond(ctx, w, http.StatusOK, product)
			return
		}
	}

	recordStat(ctx, repo.StatProductNotFound)
	respond(ctx, w, http.StatusNotFound, ErrorResponse{Error: "Product not found"})
}

// productID returns the decoded {id} segment. chi matches on RawPath when the
// request carried escaped characters, so the param may still be escaped.
func productID(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(id)
		if err != nil {
			return ""
		}
		id = unescaped
	}
	return strings.TrimSpace(id)
}
