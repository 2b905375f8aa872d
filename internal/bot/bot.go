// Package bot wires the Discord session, the notifiers, and the chat
// summarizer into one runnable service.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jonboulle/clockwork"

	"github.com/elisa-renault/Galactia/internal/ai"
	"github.com/elisa-renault/Galactia/internal/discord"
	"github.com/elisa-renault/Galactia/internal/domain"
	"github.com/elisa-renault/Galactia/internal/twitch"
	"github.com/elisa-renault/Galactia/internal/youtube"
)

// TwitchFollowStore persists Twitch follows for the slash commands.
type TwitchFollowStore interface {
	Add(ctx context.Context, login, guildID, channelID, roleID string) (*domain.TwitchFollow, error)
	Remove(ctx context.Context, login, guildID string) (int64, error)
	Get(ctx context.Context, login, guildID string) (*domain.TwitchFollow, error)
	ListByGuild(ctx context.Context, guildID string) ([]domain.TwitchFollow, error)
}

// YouTubeFollowStore persists YouTube follows for the slash commands.
type YouTubeFollowStore interface {
	Add(ctx context.Context, f *domain.YouTubeFollow) (*domain.YouTubeFollow, error)
	Remove(ctx context.Context, channelID, guildID string) (int64, error)
	ListByGuild(ctx context.Context, guildID string) ([]domain.YouTubeFollow, error)
}

// messenger is the slice of the Discord session the summarizer talks
// through, separated so tests can stub it.
type messenger interface {
	SendText(channelID, content string) (string, error)
	EditText(channelID, messageID, content string) error
	ChannelHistory(channelID string, maxMessages int, start, end time.Time) ([]discord.HistoryMessage, error)
}

// PremiumChecker gates the summarizer to premium guilds.
type PremiumChecker interface {
	IsPremium(ctx context.Context, guildDiscordID string) bool
}

// FeatureGate reports whether a feature is enabled for a guild.
type FeatureGate interface {
	IsEnabled(guildDiscordID, featureKey string) bool
}

// Deps collects everything the bot needs. TwitchPoller, YouTubePoller,
// YouTubeAPI, and Completer may be nil when the corresponding credentials
// are not configured; the related commands and the summarizer then reply
// that the feature is unavailable instead of running.
type Deps struct {
	Session        *discord.Session
	TwitchPoller   *twitch.Poller
	YouTubePoller  *youtube.Poller
	YouTubeAPI     youtube.API
	TwitchFollows  TwitchFollowStore
	YouTubeFollows YouTubeFollowStore
	Flags          FeatureGate
	Premium        PremiumChecker
	Completer      ai.Completer
	Clock          clockwork.Clock
	CommandGuildID string
}

// Bot handles slash commands and the mention-triggered summarizer.
type Bot struct {
	session        *discord.Session
	messenger      messenger
	twitchPoller   *twitch.Poller
	ytPoller       *youtube.Poller
	ytAPI          youtube.API
	twitchFollows  TwitchFollowStore
	ytFollows      YouTubeFollowStore
	flags          FeatureGate
	premium        PremiumChecker
	completer      ai.Completer
	clock          clockwork.Clock
	commandGuildID string
}

func New(d Deps) *Bot {
	return &Bot{
		session:        d.Session,
		messenger:      d.Session,
		twitchPoller:   d.TwitchPoller,
		ytPoller:       d.YouTubePoller,
		ytAPI:          d.YouTubeAPI,
		twitchFollows:  d.TwitchFollows,
		ytFollows:      d.YouTubeFollows,
		flags:          d.Flags,
		premium:        d.Premium,
		completer:      d.Completer,
		clock:          d.Clock,
		commandGuildID: d.CommandGuildID,
	}
}

// Start registers the gateway handlers, connects, and registers the slash
// commands. Command registration needs the connection because the
// application id only becomes known after identify.
func (b *Bot) Start() error {
	dg := b.session.Underlying()
	dg.AddHandler(b.onInteraction)
	dg.AddHandler(b.onMessageCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	commands := []*discordgo.ApplicationCommand{twitchCommand(), youtubeCommand()}
	if err := b.session.RegisterCommands(b.commandGuildID, commands); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	return nil
}

// Stop disconnects from the gateway.
func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "twitch":
		b.handleTwitch(s, i)
	case "youtube":
		b.handleYouTube(s, i)
	}
}

// subOptions returns the invoked subcommand and its options by name.
func subOptions(i *discordgo.InteractionCreate) (string, map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return "", nil
	}

	sub := data.Options[0]
	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(sub.Options))
	for _, opt := range sub.Options {
		opts[opt.Name] = opt
	}
	return sub.Name, opts
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content, Flags: flags},
	})
	if err != nil {
		slog.Error("interaction response failed", "error", err)
	}
}

func deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

func followUp(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		slog.Error("interaction follow-up failed", "error", err)
	}
}
