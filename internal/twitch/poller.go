package twitch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jonboulle/clockwork"

	"github.com/elisa-renault/Galactia/internal/discord"
	"github.com/elisa-renault/Galactia/internal/domain"
	"github.com/elisa-renault/Galactia/internal/features"
	"github.com/elisa-renault/Galactia/internal/metrics"
)

const (
	liveColor  = 0x9146FF
	endedColor = 0x2B2D31
)

// API is the subset of the Helix client the poller needs.
type API interface {
	StreamsByLogins(ctx context.Context, logins []string) ([]Stream, error)
	UserByLogin(ctx context.Context, login string) (*User, error)
	BoxArtURL(ctx context.Context, gameID string) (string, error)
	LatestVODURL(ctx context.Context, userID string, startedAt time.Time) (string, error)
}

// FollowStore persists follows and their announcement state.
type FollowStore interface {
	ListAll(ctx context.Context) ([]domain.TwitchFollow, error)
	UpdateState(ctx context.Context, f *domain.TwitchFollow) error
}

// Announcer posts and edits Discord announcements.
type Announcer interface {
	SendAnnouncement(channelID string, a discord.Announcement) (string, error)
	EditAnnouncement(channelID, messageID string, a discord.Announcement) error
}

// FeatureGate reports whether a feature is enabled for a guild.
type FeatureGate interface {
	IsEnabled(guildDiscordID, featureKey string) bool
}

// Poller watches followed channels and announces live transitions:
// off to on posts an announcement, on to on tracks peak viewers and game
// changes, on to off edits the announcement into an ended summary.
type Poller struct {
	api       API
	store     FollowStore
	announcer Announcer
	gate      FeatureGate
	clock     clockwork.Clock
	interval  time.Duration

	// FallbackChannelID receives announcements for follows stored without
	// a channel. Optional.
	FallbackChannelID string
}

func NewPoller(api API, store FollowStore, announcer Announcer, gate FeatureGate, clock clockwork.Clock, interval time.Duration) *Poller {
	return &Poller{
		api:       api,
		store:     store,
		announcer: announcer,
		gate:      gate,
		clock:     clock,
		interval:  interval,
	}
}

// Run polls on the configured interval until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			start := p.clock.Now()
			if err := p.Poll(ctx); err != nil {
				slog.Error("twitch poll failed", "error", err)
				metrics.PollCyclesTotal.WithLabelValues("twitch", "error").Inc()
			} else {
				metrics.PollCyclesTotal.WithLabelValues("twitch", "ok").Inc()
			}
			metrics.PollCycleDuration.WithLabelValues("twitch").Observe(p.clock.Since(start).Seconds())
		}
	}
}

// Poll runs one poll cycle over all follows.
func (p *Poller) Poll(ctx context.Context) error {
	follows, err := p.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list follows: %w", err)
	}
	if len(follows) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var logins []string
	for _, f := range follows {
		login := strings.ToLower(f.Login)
		if !seen[login] {
			seen[login] = true
			logins = append(logins, login)
		}
	}

	streams, err := p.api.StreamsByLogins(ctx, logins)
	if err != nil {
		return fmt.Errorf("failed to poll streams: %w", err)
	}

	liveMap := make(map[string]Stream, len(streams))
	for _, s := range streams {
		liveMap[strings.ToLower(s.UserLogin)] = s
	}

	for i := range follows {
		f := &follows[i]
		if !p.gate.IsEnabled(f.GuildID, features.KeyTwitch) {
			continue
		}

		stream, live := liveMap[strings.ToLower(f.Login)]
		switch {
		case live && !f.Live:
			if err := p.AnnounceLive(ctx, f, stream); err != nil {
				slog.Error("live announcement failed", "login", f.Login, "error", err)
			}
		case live && f.Live:
			p.trackOngoing(ctx, f, stream)
		case !live && f.Live:
			if err := p.AnnounceEnded(ctx, f); err != nil {
				slog.Error("ended announcement failed", "login", f.Login, "error", err)
			}
		}
	}
	return nil
}

// AnnounceLive posts the live announcement and caches stream metadata on
// the follow. Also used by the /twitch test_online command.
func (p *Poller) AnnounceLive(ctx context.Context, f *domain.TwitchFollow, stream Stream) error {
	f.Live = true
	f.LastDisplayName = firstNonEmpty(stream.UserName, f.LastDisplayName, f.Login)
	f.LastStreamTitle = firstNonEmpty(stream.Title, "—")
	startedAt := stream.StartedAt
	f.LastStartedAt = &startedAt
	f.PeakViewers = stream.ViewerCount
	f.LastGameID = stream.GameID
	f.LastGameName = firstNonEmpty(stream.GameName, "—")

	if box, err := p.api.BoxArtURL(ctx, stream.GameID); err != nil {
		slog.Warn("box art fetch failed", "login", f.Login, "error", err)
	} else if box != "" {
		f.LastBoxArtURL = box // keep {width}x{height} placeholders
	}

	if user, err := p.api.UserByLogin(ctx, f.Login); err != nil {
		slog.Warn("user fetch failed", "login", f.Login, "error", err)
	} else if user != nil {
		f.LastUserID = user.ID
		if user.ProfileImageURL != "" {
			f.ProfileImageURL = user.ProfileImageURL
		}
	}

	msgID, err := p.announcer.SendAnnouncement(p.announceChannel(f), p.liveAnnouncement(f, stream))
	if err != nil {
		return err
	}
	f.LastMessageID = msgID
	metrics.AnnouncementsTotal.WithLabelValues("twitch", "live").Inc()

	return p.store.UpdateState(ctx, f)
}

// trackOngoing updates the cached peak viewers and game while live.
func (p *Poller) trackOngoing(ctx context.Context, f *domain.TwitchFollow, stream Stream) {
	changed := false

	if stream.ViewerCount > f.PeakViewers {
		f.PeakViewers = stream.ViewerCount
		changed = true
	}

	if stream.GameID != f.LastGameID {
		f.LastGameID = stream.GameID
		f.LastGameName = firstNonEmpty(stream.GameName, "—")
		changed = true

		if box, err := p.api.BoxArtURL(ctx, stream.GameID); err != nil {
			slog.Warn("box art refresh failed", "login", f.Login, "error", err)
		} else if box != "" {
			f.LastBoxArtURL = box
		}
	}

	if changed {
		if err := p.store.UpdateState(ctx, f); err != nil {
			slog.Error("state update failed", "login", f.Login, "error", err)
		}
	}
}

// AnnounceEnded edits the live message into an ended summary, falling back
// to a new message when the original is gone. Also used by the /twitch
// test_offline command.
func (p *Poller) AnnounceEnded(ctx context.Context, f *domain.TwitchFollow) error {
	f.Live = false

	if f.LastUserID == "" {
		if user, err := p.api.UserByLogin(ctx, f.Login); err != nil {
			slog.Warn("user fetch failed", "login", f.Login, "error", err)
		} else if user != nil {
			f.LastUserID = user.ID
		}
	}

	var startedAt time.Time
	if f.LastStartedAt != nil {
		startedAt = *f.LastStartedAt
	}

	vodURL, err := p.api.LatestVODURL(ctx, f.LastUserID, startedAt)
	if err != nil {
		slog.Warn("vod lookup failed", "login", f.Login, "error", err)
	}

	a := p.endedAnnouncement(f, vodURL)
	if f.LastMessageID != "" {
		if err := p.announcer.EditAnnouncement(p.announceChannel(f), f.LastMessageID, a); err == nil {
			metrics.AnnouncementsTotal.WithLabelValues("twitch", "ended").Inc()
			return p.store.UpdateState(ctx, f)
		}
		slog.Warn("could not edit live message, sending new one", "login", f.Login)
	}

	if _, err := p.announcer.SendAnnouncement(p.announceChannel(f), a); err != nil {
		return err
	}
	metrics.AnnouncementsTotal.WithLabelValues("twitch", "ended").Inc()
	return p.store.UpdateState(ctx, f)
}

func (p *Poller) liveAnnouncement(f *domain.TwitchFollow, stream Stream) discord.Announcement {
	url := "https://twitch.tv/" + f.Login
	displayName := f.LastDisplayName

	content := fmt.Sprintf("🟣 **%s** est en direct sur Twitch : %s", displayName, url)
	if f.RoleID != "" {
		content = fmt.Sprintf("<@&%s> %s", f.RoleID, content)
	}

	embed := &discordgo.MessageEmbed{
		Title: firstNonEmpty(stream.Title, "En direct sur Twitch !"),
		URL:   url,
		Color: liveColor,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    displayName,
			URL:     url,
			IconURL: f.ProfileImageURL,
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👾 Jeu", Value: firstNonEmpty(stream.GameName, "—"), Inline: true},
			{Name: "🕒 Début", Value: startLabel(stream.StartedAt, p.clock.Now()), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: "✨ Venez soutenir !"},
	}

	if stream.ThumbnailURL != "" {
		preview := strings.NewReplacer("{width}", "1280", "{height}", "720").Replace(stream.ThumbnailURL)
		embed.Image = &discordgo.MessageEmbedImage{URL: preview}
	}

	return discord.Announcement{
		Content:     content,
		Embed:       embed,
		ButtonLabel: "▶️ Rejoindre le live",
		ButtonURL:   url,
	}
}

func (p *Poller) endedAnnouncement(f *domain.TwitchFollow, vodURL string) discord.Announcement {
	url := "https://twitch.tv/" + f.Login
	displayName := firstNonEmpty(f.LastDisplayName, f.Login)
	now := p.clock.Now()

	duration := "—"
	startLabel := "?"
	if f.LastStartedAt != nil {
		duration = discord.Duration(*f.LastStartedAt, now)
		startLabel = discord.ParisStamp(*f.LastStartedAt)
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("**%s**", firstNonEmpty(f.LastStreamTitle, "Stream terminé.")),
		URL:   url,
		Color: endedColor,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    displayName,
			URL:     url,
			IconURL: f.ProfileImageURL,
		},
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👾 Jeu", Value: firstNonEmpty(f.LastGameName, "—"), Inline: true},
			{Name: "⏱️ Durée", Value: duration, Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Début : %s • Fin : %s", startLabel, discord.ParisStamp(now)),
		},
	}

	if f.LastBoxArtURL != "" {
		thumb := strings.NewReplacer("{width}", "285", "{height}", "380").Replace(f.LastBoxArtURL)
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: thumb}
	}

	a := discord.Announcement{
		Content: fmt.Sprintf("⏹️ **%s** a terminé son live.", displayName),
		Embed:   embed,
	}
	if vodURL != "" {
		a.ButtonLabel = "⏮️ Rediffusion"
		a.ButtonURL = vodURL
	}
	return a
}

func (p *Poller) announceChannel(f *domain.TwitchFollow) string {
	if f.ChannelID != "" {
		return f.ChannelID
	}
	return p.FallbackChannelID
}

func startLabel(startedAt, now time.Time) string {
	if startedAt.IsZero() {
		return "—"
	}
	return discord.RelativeFrench(startedAt, now)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
