package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/elisa-renault/Galactia/internal/domain"
	"github.com/elisa-renault/Galactia/internal/youtube"
)

const youtubeUnavailableReply = "The YouTube notifier is not configured."

// youtubeUnavailable reports whether a subcommand cannot run because the
// Data API client is missing. Only list works from the database alone.
func youtubeUnavailable(api youtube.API, sub string) bool {
	return api == nil && sub != "list"
}

func youtubeCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     "youtube",
		Description:              "Manage YouTube new-video notifications",
		DefaultMemberPermissions: &adminOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Follow a YouTube channel and announce its new videos",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "youtube_channel",
						Description: "YouTube channel URL or handle (e.g. @LimitMaximum)",
						Required:    true,
					},
					{
						Type:         discordgo.ApplicationCommandOptionChannel,
						Name:         "discord_channel",
						Description:  "Discord channel for announcements",
						Required:     true,
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
					},
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "role",
						Description: "Optional role to mention at the end",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Stop following a YouTube channel",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "youtube_channel",
						Description: "The channel URL or handle previously followed",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List followed YouTube channels",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "test_new",
				Description: "Simulate a new video announcement for a followed channel",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "youtube_channel",
						Description: "A followed channel URL/handle",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "test_update",
				Description: "Simulate an embed update for the last announcement",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "youtube_channel",
						Description: "A followed channel URL/handle",
						Required:    true,
					},
				},
			},
		},
	}
}

func (b *Bot) handleYouTube(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sub, opts := subOptions(i)
	if sub == "list" {
		b.youtubeList(ctx, s, i)
		return
	}

	// The remaining subcommands resolve channels through the Data API.
	if youtubeUnavailable(b.ytAPI, sub) {
		slog.Warn("youtube command without an API key configured", "guild_id", i.GuildID)
		respond(s, i, youtubeUnavailableReply, true)
		return
	}

	// The Data API can take longer than the 3 second interaction deadline.
	if err := deferEphemeral(s, i); err != nil {
		slog.Error("interaction defer failed", "error", err)
		return
	}

	switch sub {
	case "add":
		b.youtubeAdd(ctx, s, i, opts)
	case "remove":
		b.youtubeRemove(ctx, s, i, opts)
	case "test_new":
		b.youtubeTestNew(ctx, s, i, opts)
	case "test_update":
		b.youtubeTestUpdate(ctx, s, i, opts)
	}
}

// resolveFollowedChannel resolves the user-supplied reference and returns
// the matching follow for the guild, or nil when not followed.
func (b *Bot) resolveFollowedChannel(ctx context.Context, guildID, ref string) (*domain.YouTubeFollow, *youtube.ChannelMeta, error) {
	meta, err := b.ytAPI.ResolveChannel(ctx, strings.TrimSpace(ref))
	if err != nil || meta == nil {
		return nil, nil, err
	}

	follows, err := b.ytFollows.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, meta, err
	}
	return findYouTubeFollow(follows, meta.ChannelID), meta, nil
}

func findYouTubeFollow(follows []domain.YouTubeFollow, channelID string) *domain.YouTubeFollow {
	for i := range follows {
		if follows[i].ChannelID == channelID {
			return &follows[i]
		}
	}
	return nil
}

func (b *Bot) youtubeAdd(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ref := strings.TrimSpace(opts["youtube_channel"].StringValue())
	channel := opts["discord_channel"].ChannelValue(nil)

	roleID := ""
	if opt, ok := opts["role"]; ok {
		roleID = opt.RoleValue(nil, "").ID
	}

	meta, err := b.ytAPI.ResolveChannel(ctx, ref)
	if err != nil {
		slog.Error("channel resolve failed", "ref", ref, "error", err)
		followUp(s, i, "Could not resolve channel. Check the handle/URL.")
		return
	}
	if meta == nil || meta.ChannelID == "" {
		followUp(s, i, "Channel not found.")
		return
	}

	title := meta.Title
	if title == "" {
		title = meta.ChannelID
	}

	_, err = b.ytFollows.Add(ctx, &domain.YouTubeFollow{
		ChannelID:         meta.ChannelID,
		ChannelTitle:      title,
		ChannelHandle:     meta.Handle,
		UploadsPlaylistID: meta.UploadsPlaylistID,
		GuildID:           i.GuildID,
		AnnounceChannelID: channel.ID,
		RoleID:            roleID,
		ChannelThumbURL:   meta.ThumbURL,
	})
	switch {
	case errors.Is(err, domain.ErrFollowExists):
		followUp(s, i, fmt.Sprintf("Already following **%s** in <#%s>.", title, channel.ID))
	case err != nil:
		slog.Error("youtube add failed", "channel_id", meta.ChannelID, "error", err)
		followUp(s, i, "Something went wrong, try again later.")
	default:
		msg := fmt.Sprintf("Now following **%s** in <#%s>", title, channel.ID)
		if roleID != "" {
			msg += fmt.Sprintf(" (mention <@&%s>)", roleID)
		}
		followUp(s, i, msg)
	}
}

func (b *Bot) youtubeRemove(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ref := opts["youtube_channel"].StringValue()

	meta, err := b.ytAPI.ResolveChannel(ctx, strings.TrimSpace(ref))
	if err != nil {
		slog.Error("channel resolve failed", "ref", ref, "error", err)
		followUp(s, i, "Could not resolve channel. Check the handle/URL.")
		return
	}
	if meta == nil || meta.ChannelID == "" {
		followUp(s, i, "Channel not found.")
		return
	}

	title := meta.Title
	if title == "" {
		title = meta.ChannelID
	}

	removed, err := b.ytFollows.Remove(ctx, meta.ChannelID, i.GuildID)
	switch {
	case errors.Is(err, domain.ErrFollowNotFound):
		followUp(s, i, "No follow found.")
	case err != nil:
		slog.Error("youtube remove failed", "channel_id", meta.ChannelID, "error", err)
		followUp(s, i, "Something went wrong, try again later.")
	default:
		followUp(s, i, fmt.Sprintf("Removed **%d** follow(s) for **%s**.", removed, title))
	}
}

func (b *Bot) youtubeList(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	follows, err := b.ytFollows.ListByGuild(ctx, i.GuildID)
	if err != nil {
		slog.Error("youtube list failed", "guild_id", i.GuildID, "error", err)
		respond(s, i, "Something went wrong, try again later.", true)
		return
	}
	if len(follows) == 0 {
		respond(s, i, "No YouTube follows yet.", true)
		return
	}
	respond(s, i, strings.Join(youtubeFollowLines(follows), "\n"), true)
}

func youtubeFollowLines(follows []domain.YouTubeFollow) []string {
	lines := make([]string, 0, len(follows))
	for _, f := range follows {
		title := f.ChannelTitle
		if title == "" {
			title = f.ChannelID
		}
		line := fmt.Sprintf("• **%s** → <#%s>", title, f.AnnounceChannelID)
		if f.RoleID != "" {
			line += fmt.Sprintf(" (mention <@&%s>)", f.RoleID)
		}
		lines = append(lines, line)
	}
	return lines
}

func (b *Bot) youtubeTestNew(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	if b.ytPoller == nil {
		followUp(s, i, youtubeUnavailableReply)
		return
	}

	f, _, err := b.resolveFollowedChannel(ctx, i.GuildID, opts["youtube_channel"].StringValue())
	if err != nil {
		slog.Error("youtube test_new lookup failed", "error", err)
		followUp(s, i, "Something went wrong, try again later.")
		return
	}
	if f == nil {
		followUp(s, i, "Channel not followed yet.")
		return
	}

	fake := youtube.Video{
		VideoID:     "dQw4w9WgXcQ",
		Title:       "Test video title",
		Description: "This is a test video description.",
		PublishedAt: b.clock.Now().UTC(),
		ThumbURL:    "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		URL:         "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}

	if err := b.ytPoller.AnnounceVideo(ctx, f, fake); err != nil {
		slog.Error("youtube test_new failed", "channel_id", f.ChannelID, "error", err)
		followUp(s, i, "Something went wrong, try again later.")
		return
	}
	followUp(s, i, "New video test sent.")
}

func (b *Bot) youtubeTestUpdate(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	if b.ytPoller == nil {
		followUp(s, i, youtubeUnavailableReply)
		return
	}

	f, _, err := b.resolveFollowedChannel(ctx, i.GuildID, opts["youtube_channel"].StringValue())
	if err != nil {
		slog.Error("youtube test_update lookup failed", "error", err)
		followUp(s, i, "Something went wrong, try again later.")
		return
	}
	if f == nil {
		followUp(s, i, "Channel not followed yet.")
		return
	}

	videoID := f.LastVideoID
	if videoID == "" {
		videoID = "dQw4w9WgXcQ"
	}
	publishedAt := b.clock.Now().UTC()
	if f.LastVideoPublishedAt != nil {
		publishedAt = *f.LastVideoPublishedAt
	}

	fake := youtube.Video{
		VideoID:     videoID,
		Title:       "Updated title (test)",
		Description: "Updated description (test).",
		PublishedAt: publishedAt,
		ThumbURL:    fmt.Sprintf("https://i.ytimg.com/vi/%s/maxresdefault.jpg", videoID),
		URL:         "https://www.youtube.com/watch?v=" + videoID,
	}

	ok, err := b.ytPoller.UpdateAnnouncement(ctx, f, fake)
	if err != nil {
		slog.Error("youtube test_update failed", "channel_id", f.ChannelID, "error", err)
		followUp(s, i, "Something went wrong, try again later.")
		return
	}
	if !ok {
		followUp(s, i, "No previous announcement to update.")
		return
	}
	followUp(s, i, "Test UPDATE sent.")
}
