package domain

import "time"

// TwitchFollow is a followed Twitch channel plus the cached state of its
// last announcement. Discord ids are snowflake strings.
type TwitchFollow struct {
	ID        int64
	Login     string
	GuildID   string
	ChannelID string
	RoleID    string

	Live            bool
	LastStartedAt   *time.Time
	LastMessageID   string
	PeakViewers     int
	LastGameID      string
	LastGameName    string
	LastBoxArtURL   string
	LastDisplayName string
	LastStreamTitle string
	LastUserID      string
	ProfileImageURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// YouTubeFollow is a followed YouTube channel plus announcement state.
type YouTubeFollow struct {
	ID                int64
	ChannelID         string
	ChannelTitle      string
	ChannelHandle     string
	UploadsPlaylistID string
	GuildID           string
	AnnounceChannelID string
	RoleID            string

	LastVideoID          string
	LastVideoPublishedAt *time.Time
	LastMessageID        string
	ChannelThumbURL      string

	CreatedAt time.Time
	UpdatedAt time.Time
}
