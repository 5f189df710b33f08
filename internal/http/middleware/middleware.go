package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rogerio-castellano/catalog-proxy/internal/auth"
	rl "github.com/rogerio-castellano/catalog-proxy/internal/http/rate_limiter"
	"github.com/rogerio-castellano/catalog-proxy/internal/logger"
)

type contextKey string

const adminKey = contextKey("admin")

var (
	authService *auth.Service
	limiter     *rl.Limiter
	trustProxy  bool
)

func SetAuthService(s *auth.Service) {
	authService = s
}

func SetRateLimiter(l *rl.Limiter) {
	limiter = l
}

func SetTrustProxy(trusted bool) {
	trustProxy = trusted
}

// RealIP rewrites RemoteAddr from proxy headers, but only when the proxy is trusted.
// Otherwise clients could pick their own rate limit bucket.
func RealIP(next http.Handler) http.Handler {
	fromHeaders := chimw.RealIP(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if trustProxy {
			fromHeaders.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware requires a valid admin bearer token.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, "missing or invalid token", http.StatusUnauthorized)
			return
		}
		if authService == nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		subject, err := authService.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			logger.WarnLog(r.Context(), "rejected admin token: %v", err)
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), adminKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAdmin returns the admin subject stored by AuthMiddleware, or "".
func GetAdmin(r *http.Request) string {
	if val, ok := r.Context().Value(adminKey).(string); ok {
		return val
	}
	return ""
}

// RateLimitMiddleware answers 429 once a client exceeds its token bucket.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limiter != nil && !limiter.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger attaches a request-scoped logger to the context and logs each request once it completes.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := logger.WithLogger(r.Context(), map[string]interface{}{
			"request_id": chimw.GetReqID(r.Context()),
		})
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		logger.InfoLog(ctx, "%s %s -> %d (%d bytes) in %s",
			r.Method, r.URL.RequestURI(), ww.Status(), ww.BytesWritten(), time.Since(start))
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
