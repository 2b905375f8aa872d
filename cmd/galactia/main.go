package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/elisa-renault/Galactia/internal/ai"
	"github.com/elisa-renault/Galactia/internal/bot"
	"github.com/elisa-renault/Galactia/internal/config"
	"github.com/elisa-renault/Galactia/internal/database"
	"github.com/elisa-renault/Galactia/internal/discord"
	"github.com/elisa-renault/Galactia/internal/features"
	"github.com/elisa-renault/Galactia/internal/logging"
	"github.com/elisa-renault/Galactia/internal/metrics"
	"github.com/elisa-renault/Galactia/internal/premium"
	"github.com/elisa-renault/Galactia/internal/redis"
	"github.com/elisa-renault/Galactia/internal/twitch"
	"github.com/elisa-renault/Galactia/internal/version"
	"github.com/elisa-renault/Galactia/internal/youtube"
)

func setupConfig() *config.Config {
	cfg, err := config.LoadBot()
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
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logFile, err := logging.InitWithFile(cfg.LogLevel, cfg.LogFormat, cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	if logFile != nil {
		defer func() { _ = logFile.Close() }()
	}
	slog.Info("Galactia starting", "env", cfg.EnvMode, "version", version.Version)

	metrics.BuildInfo.WithLabelValues(version.Version, version.Commit, version.BuildTime, runtime.Version()).Set(1)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(cfg)
	defer func() { _ = redisClient.Close() }()

	twitchFollows := database.NewTwitchFollowRepo(pool)
	ytFollows := database.NewYouTubeFollowRepo(pool)
	featureRepo := database.NewFeatureRepo(pool)
	premiumRepo := database.NewPremiumRepo(pool)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seedCtx, seedCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := featureRepo.Seed(seedCtx, features.Defaults()); err != nil {
		slog.Error("Failed to seed features", "error", err)
		os.Exit(1)
	}
	seedCancel()

	flagCache := features.NewCache(featureRepo, clock)
	if err := flagCache.Refresh(ctx, "startup"); err != nil {
		slog.Warn("Initial feature flag refresh failed, flags default to disabled", "error", err)
	}
	go flagCache.Run(ctx)
	go flagCache.Listen(ctx, redisClient)

	premiumChecker := premium.NewChecker(premiumRepo, cfg.PremiumGuildIDs)

	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		slog.Error("Failed to create Discord session", "error", err)
		os.Exit(1)
	}

	var twitchPoller *twitch.Poller
	if cfg.TwitchClientID != "" {
		api, err := twitch.NewClient(cfg.TwitchClientID, cfg.TwitchClientSecret, clock)
		if err != nil {
			slog.Error("Failed to create Twitch client", "error", err)
			os.Exit(1)
		}
		twitchPoller = twitch.NewPoller(api, twitchFollows, session, flagCache, clock, cfg.TwitchCheckInterval)
		twitchPoller.FallbackChannelID = cfg.TwitchAnnounceChannelID
		go twitchPoller.Run(ctx)
	} else {
		slog.Info("Twitch credentials not set, live notifications disabled")
	}

	var (
		ytPoller *youtube.Poller
		ytAPI    youtube.API
	)
	if cfg.YouTubeAPIKey != "" {
		client := youtube.NewClient(cfg.YouTubeAPIKey)
		ytAPI = client
		ytPoller = youtube.NewPoller(client, ytFollows, session, flagCache, clock, cfg.YouTubePollInterval)
		go ytPoller.Run(ctx)
	} else {
		slog.Info("YouTube API key not set, upload notifications disabled")
	}

	var completer ai.Completer
	if cfg.OpenAIAPIKey != "" {
		completer = ai.NewClient(cfg.OpenAIAPIKey)
	} else {
		slog.Info("OpenAI API key not set, summarizer disabled")
	}

	b := bot.New(bot.Deps{
		Session:        session,
		TwitchPoller:   twitchPoller,
		YouTubePoller:  ytPoller,
		YouTubeAPI:     ytAPI,
		TwitchFollows:  twitchFollows,
		YouTubeFollows: ytFollows,
		Flags:          flagCache,
		Premium:        premiumChecker,
		Completer:      completer,
		Clock:          clock,
		CommandGuildID: cfg.DiscordGuildID,
	})
	if err := b.Start(); err != nil {
		slog.Error("Failed to start bot", "error", err)
		os.Exit(1)
	}

	httpSrv := bot.NewHTTPServer(cfg.BotHTTPPort, []bot.HealthCheck{
		{Name: "postgres", Check: pool.Ping},
		{Name: "redis", Check: redisClient.Ping},
	})

	done := runGracefulShutdown(cancel, b, httpSrv)

	if err := httpSrv.Start(); err != nil {
		slog.Error("HTTP server error", "error", err)
		os.Exit(1)
	}

	<-done
}

func runGracefulShutdown(cancel context.CancelFunc, b *bot.Bot, srv *bot.HTTPServer) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}

		if err := b.Stop(); err != nil {
			slog.Error("Discord session close error", "error", err)
		}

		close(done)
	}()

	return done
}
