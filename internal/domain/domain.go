package domain

import "time"

// User is a panel user synced from Discord OAuth.
type User struct {
	ID          int64
	DiscordID   string
	Username    string
	DisplayName string
	Avatar      string
	IsSiteAdmin bool
	CreatedAt   time.Time
	LastLogin   *time.Time
}

// Guild is a Discord guild known to the panel.
type Guild struct {
	ID        int64
	DiscordID string
	Name      string
	Icon      string
}

// GuildMember links a panel user to a guild with a role.
// Roles: owner, admin, officer, member, viewer.
type GuildMember struct {
	ID      int64
	UserID  int64
	GuildID int64
	Role    string
}

// AdminRoles are the member roles allowed to manage a guild in the panel.
var AdminRoles = map[string]bool{"owner": true, "admin": true, "officer": true}

// Feature is a toggleable bot capability ("twitch", "youtube", "ai").
type Feature struct {
	ID          int64
	Key         string
	Name        string
	Description string
}

// GuildFeatureFlag enables a feature for one guild.
type GuildFeatureFlag struct {
	ID        int64
	GuildID   int64
	FeatureID int64
	Enabled   bool
	UpdatedBy *int64
	UpdatedAt time.Time
}

// GuildPremium marks a guild as premium, optionally until ExpiresAt.
type GuildPremium struct {
	ID        int64
	GuildID   int64
	Tier      string
	ExpiresAt *time.Time
	GrantedBy *int64
}

// Active reports whether the premium grant is valid at now.
func (p *GuildPremium) Active(now time.Time) bool {
	return p.ExpiresAt == nil || p.ExpiresAt.After(now)
}

// GuildSetting is a per-guild key/value setting.
type GuildSetting struct {
	ID      int64
	GuildID int64
	Key     string
	Value   string
}

// AuditEntry records a panel action against a guild.
type AuditEntry struct {
	ID        int64
	GuildID   int64
	UserID    int64
	Action    string
	Payload   map[string]any
	CreatedAt time.Time
}

// PremiumRow is a premium grant joined with its guild and granter for the
// admin overview.
type PremiumRow struct {
	GuildID        int64
	GuildDiscordID string
	GuildName      string
	Tier           string
	ExpiresAt      *time.Time
	GrantedBy      string
}
