// Package discord wraps discordgo with the message and formatting helpers
// the notifiers and the summarizer share.
package discord

import (
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Session wraps a discordgo session.
type Session struct {
	dg *discordgo.Session
}

// NewSession creates a Discord gateway session with the intents the bot
// needs (guilds, messages, message content for the summarizer, members).
func NewSession(token string) (*Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMembers

	return &Session{dg: dg}, nil
}

// Open connects to the gateway.
func (s *Session) Open() error {
	if err := s.dg.Open(); err != nil {
		return fmt.Errorf("failed to open discord gateway: %w", err)
	}
	slog.Info("Discord gateway connected", "user", s.dg.State.User.Username)
	return nil
}

// Close disconnects from the gateway.
func (s *Session) Close() error {
	return s.dg.Close()
}

// Underlying returns the raw discordgo session for handler registration.
func (s *Session) Underlying() *discordgo.Session {
	return s.dg
}

// RegisterCommands replaces all application commands. When guildID is set,
// commands are registered for that guild only, which propagates instantly.
// Global registration can take up to an hour to propagate.
func (s *Session) RegisterCommands(guildID string, commands []*discordgo.ApplicationCommand) error {
	appID := s.dg.State.User.ID
	if _, err := s.dg.ApplicationCommandBulkOverwrite(appID, guildID, commands); err != nil {
		return fmt.Errorf("failed to register application commands: %w", err)
	}

	scope := "global"
	if guildID != "" {
		scope = guildID
	}
	slog.Info("application commands registered", "count", len(commands), "scope", scope)
	return nil
}
