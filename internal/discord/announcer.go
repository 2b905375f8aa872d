package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Announcement is a message with an embed and an optional link button.
type Announcement struct {
	Content     string
	Embed       *discordgo.MessageEmbed
	ButtonLabel string
	ButtonURL   string
}

func (a *Announcement) components() []discordgo.MessageComponent {
	if a.ButtonURL == "" {
		return nil
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label: a.ButtonLabel,
					Style: discordgo.LinkButton,
					URL:   a.ButtonURL,
				},
			},
		},
	}
}

// SendAnnouncement posts the announcement to a channel and returns the
// message id, which callers persist so the message can be edited later.
func (s *Session) SendAnnouncement(channelID string, a Announcement) (string, error) {
	msg, err := s.dg.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content:    a.Content,
		Embeds:     []*discordgo.MessageEmbed{a.Embed},
		Components: a.components(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to send announcement: %w", err)
	}
	return msg.ID, nil
}

// SendText posts a plain text message and returns its id.
func (s *Session) SendText(channelID, content string) (string, error) {
	msg, err := s.dg.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return msg.ID, nil
}

// EditText rewrites a plain text message in place.
func (s *Session) EditText(channelID, messageID, content string) error {
	if _, err := s.dg.ChannelMessageEdit(channelID, messageID, content); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// EditAnnouncement rewrites a previously sent announcement in place. When
// the original message is gone, the caller should fall back to
// SendAnnouncement.
func (s *Session) EditAnnouncement(channelID, messageID string, a Announcement) error {
	embeds := []*discordgo.MessageEmbed{a.Embed}
	components := a.components()

	edit := &discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Content:    &a.Content,
		Embeds:     &embeds,
		Components: &components,
	}
	if _, err := s.dg.ChannelMessageEditComplex(edit); err != nil {
		return fmt.Errorf("failed to edit announcement: %w", err)
	}
	return nil
}
