package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elisa-renault/Galactia/internal/config"
	"github.com/elisa-renault/Galactia/internal/database"
	"github.com/elisa-renault/Galactia/internal/logging"
	"github.com/elisa-renault/Galactia/internal/metrics"
	"github.com/elisa-renault/Galactia/internal/panel"
	"github.com/elisa-renault/Galactia/internal/premium"
	"github.com/elisa-renault/Galactia/internal/redis"
	"github.com/elisa-renault/Galactia/internal/version"
)

func setupConfig() *config.Config {
	cfg, err := config.LoadPanel()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	// Both binaries run migrations; the advisory lock serializes them.
	if err := database.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config) *redis.Client {
	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func main() {
	cfg := setupConfig()

	logFile, err := logging.InitWithFile(cfg.LogLevel, cfg.LogFormat, cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	if logFile != nil {
		defer func() { _ = logFile.Close() }()
	}
	slog.Info("Panel starting", "env", cfg.EnvMode, "host", cfg.PanelHost, "port", cfg.PanelPort)

	metrics.BuildInfo.WithLabelValues(version.Version, version.Commit, version.BuildTime, runtime.Version()).Set(1)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(cfg)
	defer func() { _ = redisClient.Close() }()

	userRepo := database.NewUserRepo(pool)
	guildRepo := database.NewGuildRepo(pool)
	featureRepo := database.NewFeatureRepo(pool)
	premiumRepo := database.NewPremiumRepo(pool)
	auditRepo := database.NewAuditRepo(pool)
	tokenStore := redis.NewTokenStore(redisClient.Underlying())

	premiumChecker := premium.NewChecker(premiumRepo, cfg.PremiumGuildIDs)

	srv, err := panel.NewServer(cfg, panel.Deps{
		Users:       userRepo,
		Guilds:      guildRepo,
		Features:    featureRepo,
		Premium:     premiumRepo,
		PremiumGate: premiumChecker,
		Audit:       auditRepo,
		Tokens:      tokenStore,
		Invalidator: redisClient,
		HealthChecks: []panel.HealthCheck{
			{Name: "postgres", Check: pool.Ping},
			{Name: "redis", Check: redisClient.Ping},
		},
	})
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}

func runGracefulShutdown(srv *panel.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}
