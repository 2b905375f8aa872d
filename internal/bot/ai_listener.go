package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/elisa-renault/Galactia/internal/ai"
	"github.com/elisa-renault/Galactia/internal/discord"
	"github.com/elisa-renault/Galactia/internal/features"
	"github.com/elisa-renault/Galactia/internal/metrics"
)

// summaryTimeout bounds the whole mention-to-summary flow, which chains
// several model calls plus the history fetch.
const summaryTimeout = 3 * time.Minute

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}
	if m.GuildID == "" {
		return
	}
	if !mentionsUser(m.Mentions, s.State.User.ID) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), summaryTimeout)
	defer cancel()

	if !b.premium.IsPremium(ctx, m.GuildID) {
		metrics.SummaryRequestsTotal.WithLabelValues("not_premium").Inc()
		return
	}
	if !b.flags.IsEnabled(m.GuildID, features.KeyAI) {
		return
	}
	if b.completer == nil {
		slog.Warn("summarizer mentioned without an OpenAI key configured", "guild_id", m.GuildID)
		if _, err := b.messenger.SendText(m.ChannelID, "Cette fonctionnalité d'IA n'est pas encore disponible."); err != nil {
			slog.Error("could not send reply", "error", err)
		}
		metrics.SummaryRequestsTotal.WithLabelValues("unconfigured").Inc()
		return
	}

	b.handleMention(ctx, s, m)
}

func (b *Bot) handleMention(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	started := b.clock.Now()
	slog.Info("mention received", "guild_id", m.GuildID, "channel_id", m.ChannelID)

	thinkingID, err := b.messenger.SendText(m.ChannelID, "⏳ Galactia réfléchit...")
	if err != nil {
		slog.Error("could not send placeholder", "error", err)
		return
	}
	edit := func(content string) {
		if err := b.messenger.EditText(m.ChannelID, thinkingID, content); err != nil {
			slog.Error("could not edit placeholder", "error", err)
		}
	}

	intent := ai.DetectIntent(ctx, b.completer, m.Content, channelName(s, m.ChannelID))

	// Explicit @mentions win over names the model extracted. Extracted
	// names are resolved to member ids when possible; unresolved names
	// still work because the filter matches display names too.
	authors := mentionedAuthorIDs(m.Mentions, s.State.User.ID)
	if len(authors) == 0 && len(intent.Authors) > 0 {
		authors = resolveAuthorNames(guildMembers(s, m.GuildID), intent.Authors, s.State.User.ID)
		if len(authors) == 0 {
			authors = intent.Authors
		}
	}

	if intent.WrongChannel {
		edit("Je ne peux résumer que les discussions du salon sur lequel je suis appelée.")
		metrics.SummaryRequestsTotal.WithLabelValues("refused").Inc()
		return
	}
	if !intent.Summary {
		edit("Cette fonctionnalité d'IA n'est pas encore disponible.")
		metrics.SummaryRequestsTotal.WithLabelValues("refused").Inc()
		return
	}

	plan := ai.BuildPlan(ctx, b.completer, b.clock.Now(), intent)
	slog.Info("summary plan",
		"start", plan.Start, "end", plan.End, "limit", plan.Limit,
		"authors", authors, "ascending", intent.Ascending)

	history, err := b.messenger.ChannelHistory(m.ChannelID, plan.Limit, plan.Start, plan.End)
	if err != nil {
		slog.Error("history fetch failed", "channel_id", m.ChannelID, "error", err)
		edit("Je n’ai pas pu résumer la conversation. Une erreur est survenue.")
		metrics.SummaryRequestsTotal.WithLabelValues("error").Inc()
		return
	}

	msgs := ai.FilterMessages(history, ai.Filter{
		Start:     plan.Start,
		End:       plan.End,
		Limit:     plan.Limit,
		Authors:   authors,
		Ascending: intent.Ascending,
	})
	metrics.SummaryMessagesCollected.Observe(float64(len(msgs)))

	if len(msgs) == 0 {
		edit(fmt.Sprintf("Aucun message trouvé entre %s et %s",
			discord.ParisStamp(plan.Start), discord.ParisStamp(plan.End)))
		metrics.SummaryRequestsTotal.WithLabelValues("ok").Inc()
		return
	}

	summary, err := ai.Summarize(ctx, b.completer, msgs, intent.Focus)
	if err != nil {
		slog.Error("summary failed", "channel_id", m.ChannelID, "error", err)
		edit("Je n’ai pas pu résumer la conversation. Une erreur est survenue.")
		metrics.SummaryRequestsTotal.WithLabelValues("error").Inc()
		return
	}

	out := ai.PrependNotices(summary, plan.Notices)
	if len(out) <= ai.MaxDiscord {
		edit(out)
	} else {
		chunks := ai.ChunkText(out, 1900)
		edit(chunks[0])
		for _, c := range chunks[1:] {
			if _, err := b.messenger.SendText(m.ChannelID, c); err != nil {
				slog.Error("could not send summary chunk", "error", err)
			}
		}
	}

	metrics.SummaryRequestsTotal.WithLabelValues("ok").Inc()
	metrics.SummaryDuration.Observe(b.clock.Since(started).Seconds())
}

func mentionsUser(mentions []*discordgo.User, userID string) bool {
	for _, u := range mentions {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// mentionedAuthorIDs returns the ids of mentioned users other than the bot
// itself, deduplicated in order.
func mentionedAuthorIDs(mentions []*discordgo.User, botID string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, u := range mentions {
		if u.ID == botID || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		ids = append(ids, u.ID)
	}
	return ids
}

func channelName(s *discordgo.Session, channelID string) string {
	if ch, err := s.State.Channel(channelID); err == nil {
		return ch.Name
	}
	if ch, err := s.Channel(channelID); err == nil {
		return ch.Name
	}
	return ""
}
