package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jonboulle/clockwork"

	"github.com/elisa-renault/Galactia/internal/discord"
	"github.com/elisa-renault/Galactia/internal/domain"
	"github.com/elisa-renault/Galactia/internal/features"
	"github.com/elisa-renault/Galactia/internal/metrics"
)

const uploadColor = 0xFF0000

// API is the subset of the Data API client the poller needs.
type API interface {
	ResolveChannel(ctx context.Context, handleOrURL string) (*ChannelMeta, error)
	LatestUploads(ctx context.Context, uploadsPlaylistID string, first int) ([]Video, error)
}

// FollowStore persists follows and their announcement state.
type FollowStore interface {
	ListAll(ctx context.Context) ([]domain.YouTubeFollow, error)
	UpdateState(ctx context.Context, f *domain.YouTubeFollow) error
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

// Poller checks followed channels' uploads playlists and announces videos
// it has not seen before.
type Poller struct {
	api       API
	store     FollowStore
	announcer Announcer
	gate      FeatureGate
	clock     clockwork.Clock
	interval  time.Duration
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
				slog.Error("youtube poll failed", "error", err)
				metrics.PollCyclesTotal.WithLabelValues("youtube", "error").Inc()
			} else {
				metrics.PollCyclesTotal.WithLabelValues("youtube", "ok").Inc()
			}
			metrics.PollCycleDuration.WithLabelValues("youtube").Observe(p.clock.Since(start).Seconds())
		}
	}
}

// Poll runs one poll cycle over all follows. Per-follow errors are logged
// and skipped so one broken channel cannot stall the rest.
func (p *Poller) Poll(ctx context.Context) error {
	follows, err := p.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list follows: %w", err)
	}

	for i := range follows {
		f := &follows[i]
		if !p.gate.IsEnabled(f.GuildID, features.KeyYouTube) {
			continue
		}
		if err := p.checkFollow(ctx, f); err != nil {
			slog.Warn("youtube poll error", "channel_id", f.ChannelID, "error", err)
		}
	}
	return nil
}

func (p *Poller) checkFollow(ctx context.Context, f *domain.YouTubeFollow) error {
	if f.UploadsPlaylistID == "" {
		// Legacy rows may predate metadata resolution.
		ref := firstNonEmpty(f.ChannelHandle, f.ChannelID)
		meta, err := p.api.ResolveChannel(ctx, ref)
		if err != nil || meta == nil || meta.UploadsPlaylistID == "" {
			return fmt.Errorf("could not refresh uploads playlist for %q: %w", ref, err)
		}
		f.UploadsPlaylistID = meta.UploadsPlaylistID
		if err := p.store.UpdateState(ctx, f); err != nil {
			return err
		}
	}

	latest, err := p.api.LatestUploads(ctx, f.UploadsPlaylistID, 1)
	if err != nil {
		return err
	}
	if len(latest) == 0 {
		return nil
	}

	v := latest[0]
	if v.VideoID == f.LastVideoID {
		return nil
	}
	return p.AnnounceVideo(ctx, f, v)
}

// AnnounceVideo posts the new-video announcement and records it as the
// last seen upload. Also used by the /youtube test_new command.
func (p *Poller) AnnounceVideo(ctx context.Context, f *domain.YouTubeFollow, v Video) error {
	msgID, err := p.announcer.SendAnnouncement(f.AnnounceChannelID, p.videoAnnouncement(f, v))
	if err != nil {
		return err
	}

	f.LastVideoID = v.VideoID
	publishedAt := v.PublishedAt
	f.LastVideoPublishedAt = &publishedAt
	f.LastMessageID = msgID
	metrics.AnnouncementsTotal.WithLabelValues("youtube", "upload").Inc()

	return p.store.UpdateState(ctx, f)
}

// UpdateAnnouncement rewrites the last announcement with fresh video
// metadata (title or description change). Used by /youtube test_update.
// Returns false when there is no previous announcement to edit.
func (p *Poller) UpdateAnnouncement(ctx context.Context, f *domain.YouTubeFollow, v Video) (bool, error) {
	if f.LastMessageID == "" {
		return false, nil
	}

	a := p.videoUpdate(f, v)
	if err := p.announcer.EditAnnouncement(f.AnnounceChannelID, f.LastMessageID, a); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Poller) videoAnnouncement(f *domain.YouTubeFollow, v Video) discord.Announcement {
	title := firstNonEmpty(f.ChannelTitle, f.ChannelID)
	channelURL := "https://www.youtube.com/channel/" + f.ChannelID

	content := fmt.Sprintf("🔴 **%s** a publié une nouvelle vidéo !", title)
	if f.RoleID != "" {
		content = fmt.Sprintf("%s <@&%s>", content, f.RoleID)
	}

	embed := &discordgo.MessageEmbed{
		Title:       firstNonEmpty(v.Title, "New video"),
		URL:         v.URL,
		Description: v.Description,
		Color:       uploadColor,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    title,
			URL:     channelURL,
			IconURL: f.ChannelThumbURL,
		},
	}
	if v.ThumbURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: v.ThumbURL}
	}

	footer := "YouTube"
	if !v.PublishedAt.IsZero() {
		footer = fmt.Sprintf("YouTube • %s", discord.ParisStamp(v.PublishedAt))
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: footer}

	return discord.Announcement{
		Content:     content,
		Embed:       embed,
		ButtonLabel: "▶️ Visionner sur YouTube",
		ButtonURL:   v.URL,
	}
}

func (p *Poller) videoUpdate(f *domain.YouTubeFollow, v Video) discord.Announcement {
	title := firstNonEmpty(f.ChannelTitle, f.ChannelID)
	channelURL := "https://www.youtube.com/channel/" + f.ChannelID

	embed := &discordgo.MessageEmbed{
		Title: firstNonEmpty(v.Title, "Nouvelle vidéo"),
		URL:   v.URL,
		Color: uploadColor,
		Author: &discordgo.MessageEmbedAuthor{
			Name:    title,
			URL:     channelURL,
			IconURL: f.ChannelThumbURL,
		},
	}

	published := "—"
	if !v.PublishedAt.IsZero() {
		published = discord.RelativeFrench(v.PublishedAt, p.clock.Now())
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Published", Value: published, Inline: true},
	}
	if v.ThumbURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: v.ThumbURL}
	}

	return discord.Announcement{
		Embed:       embed,
		ButtonLabel: "▶️ Visionner sur YouTube",
		ButtonURL:   v.URL,
	}
}
