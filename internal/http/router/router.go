package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/rogerio-castellano/catalog-proxy/docs"
	"github.com/rogerio-castellano/catalog-proxy/internal/http/handlers"
	mw "github.com/rogerio-castellano/catalog-proxy/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

func NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mw.RealIP)
	r.Use(mw.RequestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/", handlers.RootHandler)
	r.Get("/dashboard", handlers.DashboardPageHandler)
	r.Get("/product", handlers.ProductPageHandler)
	r.Get("/healthz", handlers.HealthHandler)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api", func(r chi.Router) {
		r.Use(mw.RateLimitMiddleware)

		r.Get("/products", handlers.GetProductsHandler)
		r.Get("/products/{id}", handlers.GetProductByIDHandler)
		r.Get("/stats", handlers.GetStatsHandler)

		r.Post("/admin/login", handlers.LoginHandler)
		r.With(mw.AuthMiddleware).Delete("/admin/stats", handlers.ResetStatsHandler)
	})

	return r
}
