package handlers

import (
	"net/http"

	"github.com/rogerio-castellano/catalog-proxy/internal/web"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, homePage, http.StatusFound)
}

func DashboardPageHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, web.Pages, web.DashboardPage)
}

func ProductPageHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, web.Pages, web.ProductPage)
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
