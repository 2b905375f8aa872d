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
	"github.com/elisa-renault/Galactia/internal/twitch"
)

var adminOnly = int64(discordgo.PermissionAdministrator)

func twitchCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:                     "twitch",
		Description:              "Manage Twitch live notifications",
		DefaultMemberPermissions: &adminOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Follow a Twitch channel and announce its lives",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "twitch_login",
						Description: "Twitch login (e.g. 'shroud')",
						Required:    true,
					},
					{
						Type:         discordgo.ApplicationCommandOptionChannel,
						Name:         "channel",
						Description:  "Discord channel for announcements",
						Required:     true,
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
					},
					{
						Type:        discordgo.ApplicationCommandOptionRole,
						Name:        "role",
						Description: "Optional role to ping on live",
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Stop following a Twitch channel",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "twitch_login",
						Description: "Twitch login to remove",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "List followed Twitch channels",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "test_online",
				Description: "Simulate a live (sends LIVE announcement)",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "twitch_login",
						Description: "A previously followed Twitch login",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "test_offline",
				Description: "Simulate end of live (edits to OFFLINE)",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "twitch_login",
						Description: "A previously followed Twitch login",
						Required:    true,
					},
				},
			},
		},
	}
}

func (b *Bot) handleTwitch(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sub, opts := subOptions(i)
	switch sub {
	case "add":
		b.twitchAdd(ctx, s, i, opts)
	case "remove":
		b.twitchRemove(ctx, s, i, opts)
	case "list":
		b.twitchList(ctx, s, i)
	case "test_online":
		b.twitchTestOnline(ctx, s, i, opts)
	case "test_offline":
		b.twitchTestOffline(ctx, s, i, opts)
	}
}

func (b *Bot) twitchAdd(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	login := strings.ToLower(strings.TrimSpace(opts["twitch_login"].StringValue()))
	channel := opts["channel"].ChannelValue(nil)

	roleID := ""
	if opt, ok := opts["role"]; ok {
		roleID = opt.RoleValue(nil, "").ID
	}

	_, err := b.twitchFollows.Add(ctx, login, i.GuildID, channel.ID, roleID)
	switch {
	case errors.Is(err, domain.ErrFollowExists):
		respond(s, i, fmt.Sprintf("**%s** is already followed in <#%s>.", login, channel.ID), true)
	case err != nil:
		slog.Error("twitch add failed", "login", login, "error", err)
		respond(s, i, "Something went wrong, try again later.", true)
	default:
		msg := fmt.Sprintf("✅ I will follow **%s** and announce lives in <#%s>", login, channel.ID)
		if roleID != "" {
			msg += fmt.Sprintf(" (ping <@&%s>)", roleID)
		}
		respond(s, i, msg, false)
	}
}

func (b *Bot) twitchRemove(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	login := strings.ToLower(strings.TrimSpace(opts["twitch_login"].StringValue()))

	removed, err := b.twitchFollows.Remove(ctx, login, i.GuildID)
	switch {
	case errors.Is(err, domain.ErrFollowNotFound):
		respond(s, i, fmt.Sprintf("No follow found for **%s**.", login), false)
	case err != nil:
		slog.Error("twitch remove failed", "login", login, "error", err)
		respond(s, i, "Something went wrong, try again later.", true)
	default:
		respond(s, i, fmt.Sprintf("🗑️ Removed **%d** follow(s) for **%s**.", removed, login), false)
	}
}

func (b *Bot) twitchList(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	follows, err := b.twitchFollows.ListByGuild(ctx, i.GuildID)
	if err != nil {
		slog.Error("twitch list failed", "guild_id", i.GuildID, "error", err)
		respond(s, i, "Something went wrong, try again later.", true)
		return
	}
	if len(follows) == 0 {
		respond(s, i, "No follows yet.", true)
		return
	}
	respond(s, i, strings.Join(twitchFollowLines(follows), "\n"), true)
}

func twitchFollowLines(follows []domain.TwitchFollow) []string {
	lines := make([]string, 0, len(follows))
	for _, f := range follows {
		line := fmt.Sprintf("• **%s** → <#%s>", f.Login, f.ChannelID)
		if f.RoleID != "" {
			line += fmt.Sprintf(" (ping <@&%s>)", f.RoleID)
		}
		if f.Live {
			line += " — live"
		}
		lines = append(lines, line)
	}
	return lines
}

func (b *Bot) twitchTestOnline(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	if b.twitchPoller == nil {
		respond(s, i, "The Twitch notifier is not configured.", true)
		return
	}

	login := strings.ToLower(strings.TrimSpace(opts["twitch_login"].StringValue()))
	f, err := b.twitchFollows.Get(ctx, login, i.GuildID)
	if errors.Is(err, domain.ErrFollowNotFound) {
		respond(s, i, "Channel not followed yet.", true)
		return
	}
	if err != nil {
		slog.Error("twitch test_online lookup failed", "login", login, "error", err)
		respond(s, i, "Something went wrong, try again later.", true)
		return
	}

	display := f.LastDisplayName
	if display == "" {
		display = login
	}
	fake := twitch.Stream{
		UserLogin:    login,
		UserName:     display,
		Title:        "Test stream",
		GameID:       f.LastGameID,
		GameName:     "Testing",
		ViewerCount:  123,
		ThumbnailURL: fmt.Sprintf("https://static-cdn.jtvnw.net/previews-ttv/live_user_%s-{width}x{height}.jpg", login),
		StartedAt:    b.clock.Now(),
	}

	if err := b.twitchPoller.AnnounceLive(ctx, f, fake); err != nil {
		slog.Error("twitch test_online failed", "login", login, "error", err)
		respond(s, i, "Something went wrong, try again later.", true)
		return
	}
	respond(s, i, "✅ Test LIVE sent.", true)
}

func (b *Bot) twitchTestOffline(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	if b.twitchPoller == nil {
		respond(s, i, "The Twitch notifier is not configured.", true)
		return
	}

	login := strings.ToLower(strings.TrimSpace(opts["twitch_login"].StringValue()))
	f, err := b.twitchFollows.Get(ctx, login, i.GuildID)
	if errors.Is(err, domain.ErrFollowNotFound) {
		respond(s, i, "Channel not followed yet.", true)
		return
	}
	if err != nil {
		slog.Error("twitch test_offline lookup failed", "login", login, "error", err)
		respond(s, i, "Something went wrong, try again later.", true)
		return
	}

	if f.LastStartedAt == nil {
		now := b.clock.Now()
		f.LastStartedAt = &now
	}

	if err := b.twitchPoller.AnnounceEnded(ctx, f); err != nil {
		slog.Error("twitch test_offline failed", "login", login, "error", err)
		respond(s, i, "Something went wrong, try again later.", true)
		return
	}
	respond(s, i, "✅ Test OFFLINE edited/sent.", true)
}
