package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Config holds all settings for both binaries. The bot and the panel share a
// single env surface; each entry point validates the subset it needs.
type Config struct {
	EnvMode   string `env:"ENV_MODE" default:"production"`
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
	LogDir    string `env:"LOG_DIR" default:"logs"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisURL    string `env:"REDIS_URL"`

	DiscordToken        string        `env:"DISCORD_TOKEN"`
	DiscordGuildID      string        `env:"DISCORD_GUILD_ID"`
	DiscordClientID     string        `env:"DISCORD_CLIENT_ID"`
	DiscordClientSecret string        `env:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURI  string        `env:"DISCORD_REDIRECT_URI"`
	SessionSecret       string        `env:"SESSION_SECRET"`
	SessionMaxAge       time.Duration `env:"SESSION_MAX_AGE" default:"8h"`

	TwitchClientID          string        `env:"TWITCH_CLIENT_ID"`
	TwitchClientSecret      string        `env:"TWITCH_CLIENT_SECRET"`
	TwitchCheckInterval     time.Duration `env:"TWITCH_CHECK_INTERVAL" default:"60s"`
	TwitchAnnounceChannelID string        `env:"TWITCH_ANNOUNCE_CHANNEL_ID"`

	YouTubeAPIKey       string        `env:"YOUTUBE_API_KEY"`
	YouTubePollInterval time.Duration `env:"YOUTUBE_POLL_INTERVAL" default:"300s"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	PremiumGuildIDs string `env:"PREMIUM_GUILD_IDS"`

	PanelHost   string `env:"PANEL_HOST" default:"127.0.0.1"`
	PanelPort   string `env:"PANEL_PORT" default:"35801"`
	BotHTTPPort string `env:"BOT_HTTP_PORT" default:"8081"`
}

// EnvFile returns the environment-file selector: the dotenv file named by
// ENV_FILE, defaulting to ".env". The Makefile's dev/prod targets set it to
// .env.dev / .env.prod respectively.
func EnvFile() string {
	if f := os.Getenv("ENV_FILE"); f != "" {
		return f
	}
	return ".env"
}

// Load reads the selected dotenv file (if present), then the process
// environment, into a Config. Validation is left to LoadBot/LoadPanel.
func Load() (*Config, error) {
	envFile := EnvFile()
	if err := godotenv.Load(envFile); err != nil {
		slog.Info("No env file found, using process environment", "env_file", envFile)
	} else {
		slog.Info("Loaded environment file", "env_file", envFile)
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return &cfg, nil
}

// LoadBot loads and validates configuration for the bot service.
func LoadBot() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	required := map[string]string{
		"DISCORD_TOKEN": cfg.DiscordToken,
		"DATABASE_URL":  cfg.DatabaseURL,
		"REDIS_URL":     cfg.RedisURL,
	}
	if err := requireAll(required); err != nil {
		return nil, err
	}

	// Twitch credentials come in pairs; a lone half is a config mistake
	// rather than a disabled feature.
	if (cfg.TwitchClientID == "") != (cfg.TwitchClientSecret == "") {
		return nil, fmt.Errorf("TWITCH_CLIENT_ID and TWITCH_CLIENT_SECRET must be set together")
	}

	return cfg, nil
}

// LoadPanel loads and validates configuration for the admin panel.
func LoadPanel() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	required := map[string]string{
		"DATABASE_URL":          cfg.DatabaseURL,
		"REDIS_URL":             cfg.RedisURL,
		"DISCORD_CLIENT_ID":     cfg.DiscordClientID,
		"DISCORD_CLIENT_SECRET": cfg.DiscordClientSecret,
		"DISCORD_REDIRECT_URI":  cfg.DiscordRedirectURI,
		"SESSION_SECRET":        cfg.SessionSecret,
	}
	if err := requireAll(required); err != nil {
		return nil, err
	}

	if len(cfg.SessionSecret) < 32 {
		return nil, fmt.Errorf("SESSION_SECRET must be at least 32 characters")
	}

	return cfg, nil
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.EnvMode == "production"
}

func requireAll(required map[string]string) error {
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}
	return nil
}
