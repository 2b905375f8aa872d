// Package premium decides which guilds may use paid features.
package premium

import (
	"context"
	"log/slog"
	"strings"
)

// defaultGuilds are always premium regardless of database state.
var defaultGuilds = map[string]bool{
	"1372478988882022502": true,
	"881871369149759502":  true,
}

// GrantSource checks the database for an unexpired premium grant.
type GrantSource interface {
	ActiveByDiscordID(ctx context.Context, guildDiscordID string) (bool, error)
}

// Checker combines the built-in premium guilds, the PREMIUM_GUILD_IDS
// override list, and database grants.
type Checker struct {
	grants GrantSource
	extra  map[string]bool
}

// NewChecker builds a Checker. extraIDs is a comma-separated list of guild
// Discord ids from configuration.
func NewChecker(grants GrantSource, extraIDs string) *Checker {
	extra := make(map[string]bool)
	for _, id := range strings.Split(extraIDs, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			extra[id] = true
		}
	}
	return &Checker{grants: grants, extra: extra}
}

// IsPremium reports whether the guild may use premium features. Database
// errors degrade to the static lists rather than failing the caller.
func (c *Checker) IsPremium(ctx context.Context, guildDiscordID string) bool {
	if defaultGuilds[guildDiscordID] || c.extra[guildDiscordID] {
		return true
	}
	if c.grants == nil {
		return false
	}

	active, err := c.grants.ActiveByDiscordID(ctx, guildDiscordID)
	if err != nil {
		slog.Warn("premium lookup failed", "guild_id", guildDiscordID, "error", err)
		return false
	}
	return active
}
