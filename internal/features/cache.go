// Package features keeps an in-memory view of per-guild feature flags,
// refreshed from PostgreSQL and invalidated through Redis pub/sub.
package features

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/elisa-renault/Galactia/internal/metrics"
)

// Built-in feature keys.
const (
	KeyTwitch  = "twitch"
	KeyYouTube = "youtube"
	KeyAI      = "ai"
)

const defaultRefreshInterval = 60 * time.Second

// GlobalScope is the map key for flags enabled across all guilds
// (rows stored without a guild).
const GlobalScope = ""

// FlagSource loads the enabled flags, keyed by guild Discord id then
// feature key. Globally enabled flags appear under GlobalScope.
type FlagSource interface {
	EnabledByGuild(ctx context.Context) (map[string]map[string]bool, error)
}

// Invalidations delivers change notifications until ctx is cancelled.
type Invalidations interface {
	SubscribeFeatureFlagInvalidations(ctx context.Context, handle func(guildDiscordID string))
}

// Cache answers IsEnabled lookups from memory so the bot's hot paths never
// hit the database. Lookups before the first refresh see everything disabled.
type Cache struct {
	source   FlagSource
	clock    clockwork.Clock
	interval time.Duration

	mu      sync.RWMutex
	enabled map[string]map[string]bool
}

func NewCache(source FlagSource, clock clockwork.Clock) *Cache {
	return &Cache{
		source:   source,
		clock:    clock,
		interval: defaultRefreshInterval,
		enabled:  make(map[string]map[string]bool),
	}
}

// IsEnabled reports whether a feature is enabled for the guild, either
// through a guild-specific flag or a global one.
func (c *Cache) IsEnabled(guildDiscordID, featureKey string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.enabled[guildDiscordID][featureKey] {
		return true
	}
	// Global rows surface under "" (no guild) or the literal id "0".
	return c.enabled[GlobalScope][featureKey] || c.enabled["0"][featureKey]
}

// Refresh reloads all flags from the source, replacing the cached view.
func (c *Cache) Refresh(ctx context.Context, trigger string) error {
	enabled, err := c.source.EnabledByGuild(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()

	metrics.FeatureFlagRefreshes.WithLabelValues(trigger).Inc()
	metrics.FeatureFlagGuilds.Set(float64(len(enabled)))
	return nil
}

// Run refreshes the cache on an interval until ctx is cancelled.
func (c *Cache) Run(ctx context.Context) {
	ticker := c.clock.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if err := c.Refresh(ctx, "interval"); err != nil {
				slog.Warn("feature flag refresh failed", "error", err)
			}
		}
	}
}

// Listen refreshes the cache whenever an invalidation arrives. A full
// reload is cheap at this scale, so the guild id in the message is only
// logged.
func (c *Cache) Listen(ctx context.Context, inv Invalidations) {
	inv.SubscribeFeatureFlagInvalidations(ctx, func(guildDiscordID string) {
		slog.Debug("feature flags invalidated", "guild_id", guildDiscordID)
		if err := c.Refresh(ctx, "pubsub"); err != nil {
			slog.Warn("feature flag refresh failed", "error", err)
		}
	})
}
