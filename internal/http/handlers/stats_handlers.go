package handlers

import (
	"net/http"

	mw "github.com/rogerio-castellano/catalog-proxy/internal/http/middleware"
	"github.com/rogerio-castellano/catalog-proxy/internal/logger"
)

// GetStatsHandler godoc
// @Summary Proxy and upstream counters for the dashboard
// @Tags stats
// @Produce json
// @Success 200 {object} repo.Stats
// @Failure 500 {object} ErrorResponse
// @Router /api/stats [get]
func GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, err := statsRepo.Snapshot(ctx)
	if err != nil {
		logger.ErrorLog(ctx, err, "failed to read stats")
		respond(ctx, w, http.StatusInternalServerError, ErrorResponse{Error: "failed to fetch stats"})
		return
	}
	respond(ctx, w, http.StatusOK, s)
}

// ResetStatsHandler godoc
// @Summary Reset all counters
// @Tags admin
// @Security BearerAuth
// @Success 204 "Reset"
// @Failure 401 {string} string "Unauthorized"
// @Failure 500 {object} ErrorResponse
// @Router /api/admin/stats [delete]
func ResetStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := statsRepo.Reset(ctx); err != nil {
		logger.ErrorLog(ctx, err, "failed to reset stats")
		respond(ctx, w, http.StatusInternalServerError, ErrorResponse{Error: "failed to reset stats"})
		return
	}
	logger.InfoLog(ctx, "stats reset by admin %q", mw.GetAdmin(r))
	w.WriteHeader(http.StatusNoContent)
}
