package discord

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
)

const historyPageSize = 100

// discordEpoch is the Discord snowflake epoch in Unix milliseconds.
const discordEpoch = 1420070400000

// timeSnowflake converts a time to the lowest snowflake id of its
// millisecond, usable as an exclusive paging bound.
func timeSnowflake(t time.Time) string {
	return strconv.FormatInt((t.UnixMilli()-discordEpoch)<<22, 10)
}

// HistoryMessage is a chat message stripped down to what the summarizer
// needs.
type HistoryMessage struct {
	ID          string
	AuthorID    string
	AuthorName  string
	AuthorBot   bool
	MentionsBot bool
	Content     string
	Timestamp   time.Time
}

// ChannelHistory pages backwards through a channel's messages, newest
// first. Paging begins just below end (the channel's latest message when
// end is zero) and stops once maxMessages raw messages are read or a
// message falls before start. Filtering happens upstream; this only
// converts.
func (s *Session) ChannelHistory(channelID string, maxMessages int, start, end time.Time) ([]HistoryMessage, error) {
	botID := s.dg.State.User.ID

	var out []HistoryMessage
	beforeID := ""
	if !end.IsZero() {
		beforeID = timeSnowflake(end)
	}

	for len(out) < maxMessages {
		page, err := s.dg.ChannelMessages(channelID, historyPageSize, beforeID, "", "")
		if err != nil {
			return nil, fmt.Errorf("failed to fetch channel history: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, msg := range page {
			if !start.IsZero() && msg.Timestamp.Before(start) {
				return out, nil
			}
			out = append(out, toHistoryMessage(msg, botID))
			if len(out) >= maxMessages {
				return out, nil
			}
		}
		beforeID = page[len(page)-1].ID
	}
	return out, nil
}

func toHistoryMessage(msg *discordgo.Message, botID string) HistoryMessage {
	name := msg.Author.Username
	if msg.Author.GlobalName != "" {
		name = msg.Author.GlobalName
	}
	if msg.Member != nil && msg.Member.Nick != "" {
		name = msg.Member.Nick
	}

	mentionsBot := false
	for _, u := range msg.Mentions {
		if u.ID == botID {
			mentionsBot = true
			break
		}
	}

	return HistoryMessage{
		ID:          msg.ID,
		AuthorID:    msg.Author.ID,
		AuthorName:  name,
		AuthorBot:   msg.Author.Bot,
		MentionsBot: mentionsBot,
		Content:     msg.Content,
		Timestamp:   msg.Timestamp,
	}
}
