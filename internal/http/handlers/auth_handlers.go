package handlers

import (
	"net/http"

	"github.com/rogerio-castellano/catalog-proxy/internal/logger"
)

// LoginHandler godoc
// @Summary Authenticate the admin and return a JWT token
// @Tags admin
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "username and password"
// @Success 200 {object} LoginResult
// @Failure 400 {string} string "Invalid input"
// @Failure 401 {string} string "Unauthorized"
// @Failure 503 {string} string "Admin access not configured"
// @Router /api/admin/login [post]
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	if authService == nil {
		http.Error(w, "admin access is not configured", http.StatusServiceUnavailable)
		return
	}

	var credentials CredentialsRequest
	if err := readJSON(w, r, &credentials); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	if err := authService.Authenticate(credentials.Username, credentials.Password); err != nil {
		logger.WarnLog(r.Context(), "failed admin login for %q", credentials.Username)
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := authService.GenerateToken(credentials.Username)
	if err != nil {
		logger.ErrorLog(r.Context(), err, "could not generate token")
		http.Error(w, "could not generate token", http.StatusInternalServerError)
		return
	}

	respond(r.Context(), w, http.StatusOK, LoginResult{Token: token})
}
