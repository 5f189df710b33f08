package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rogerio-castellano/catalog-proxy/internal/auth"
	"github.com/rogerio-castellano/catalog-proxy/internal/config"
	"github.com/rogerio-castellano/catalog-proxy/internal/db"
	"github.com/rogerio-castellano/catalog-proxy/internal/http/handlers"
	mw "github.com/rogerio-castellano/catalog-proxy/internal/http/middleware"
	rl "github.com/rogerio-castellano/catalog-proxy/internal/http/rate_limiter"
	"github.com/rogerio-castellano/catalog-proxy/internal/http/router"
	"github.com/rogerio-castellano/catalog-proxy/internal/logger"
	"github.com/rogerio-castellano/catalog-proxy/internal/redissvc"
	"github.com/rogerio-castellano/catalog-proxy/internal/repo"
	"github.com/rogerio-castellano/catalog-proxy/internal/upstream"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "catalog-proxy",
	Short:        "Product catalog proxy with dashboard",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Read a password from stdin and print its bcrypt hash for admin.password_hash",
	RunE: func(cmd *cobra.Command, args []string) error {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		hash, err := auth.HashPassword(strings.TrimRight(line, "\r\n"))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ./config.yaml)")
	rootCmd.AddCommand(hashPasswordCmd)
}

// @title Catalog Proxy API
// @version 1.0
// @description Proxies the upstream product catalog with filtering, and serves the dashboard and product browser.
// @host localhost:3000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger.InitLogging(cfg.Log.Level, cfg.Log.File)

	statsRepo, closeStats, err := newStatsRepository(ctx, cfg)
	if err != nil {
		logger.ErrorLog(ctx, err, "could not initialise stats store")
		return err
	}
	defer closeStats()

	handlers.SetStatsRepo(statsRepo)
	handlers.SetHomePage(cfg.Server.HomePage)
	handlers.SetFetcher(upstream.New(upstream.Options{
		BaseURL:    cfg.Upstream.BaseURL,
		Timeout:    cfg.Upstream.Timeout,
		Retries:    cfg.Upstream.Retries,
		RetryDelay: cfg.Upstream.RetryDelay,
		Stats:      statsRepo,
	}))

	if cfg.Admin.Enabled() {
		authService := auth.NewService(cfg.Admin.Username, cfg.Admin.PasswordHash, cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
		handlers.SetAuthService(authService)
		mw.SetAuthService(authService)
	} else {
		logger.WarnLog(ctx, "admin.password_hash or admin.jwt_secret not set, admin endpoints disabled")
	}

	limiter := rl.NewLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	mw.SetRateLimiter(limiter)
	mw.SetTrustProxy(cfg.Server.TrustProxy)
	go limiter.StartVisitorCleanupLoop(ctx, time.Minute, 5*time.Minute)

	httpServer := &http.Server{
		Addr:              ":" + strings.TrimSpace(cfg.Server.Port),
		Handler:           router.NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.ErrorLog(shutdownCtx, err, "shutdown error")
		}
	}()

	logger.InfoLog(ctx, "catalog proxy listening on %s (upstream %s, stats backend %s)",
		httpServer.Addr, cfg.Upstream.BaseURL, cfg.Stats.Backend)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.ErrorLog(ctx, err, "server failed")
		return err
	}
	logger.InfoLog(context.Background(), "server stopped")
	return nil
}

func newStatsRepository(ctx context.Context, cfg config.Config) (repo.StatsRepository, func(), error) {
	switch cfg.Stats.Backend {
	case config.StatsBackendRedis:
		rs, err := redissvc.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return repo.NewRedisStatsRepository(rs.Rdb(), cfg.Stats.RedisKey), func() { rs.Close() }, nil

	case config.StatsBackendPostgres:
		database, err := db.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		r := repo.NewPostgresStatsRepository(database)
		if err := r.EnsureSchema(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		return r, closeDB(database), nil
	}

	return repo.NewInMemoryStatsRepository(), func() {}, nil
}

func closeDB(database *sql.DB) func() {
	return func() { database.Close() }
}
