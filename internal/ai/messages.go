package ai

import (
	"sort"
	"strings"
	"time"

	"github.com/elisa-renault/Galactia/internal/discord"
)

// Filter is the message selection derived from a plan.
type Filter struct {
	Start     time.Time
	End       time.Time
	Limit     int
	Authors   []string // display names or ids; empty means everyone
	Ascending bool
}

// FilterMessages keeps the chat messages the summary should cover: no
// bots, no empty messages, no messages addressed to the bot itself, only
// the requested authors and time window. The result is sorted ascending
// or descending by timestamp and capped at the limit.
func FilterMessages(msgs []discord.HistoryMessage, f Filter) []discord.HistoryMessage {
	var kept []discord.HistoryMessage
	for _, m := range msgs {
		if m.Content == "" || m.AuthorBot || m.MentionsBot {
			continue
		}
		if !f.Start.IsZero() && m.Timestamp.Before(f.Start) {
			continue
		}
		if !f.End.IsZero() && m.Timestamp.After(f.End) {
			continue
		}
		if !authorAllowed(m, f.Authors) {
			continue
		}
		kept = append(kept, m)
	}

	// Keep the newest (or oldest when ascending) messages before capping.
	sort.SliceStable(kept, func(i, j int) bool {
		if f.Ascending {
			return kept[i].Timestamp.Before(kept[j].Timestamp)
		}
		return kept[i].Timestamp.After(kept[j].Timestamp)
	})

	if f.Limit > 0 && len(kept) > f.Limit {
		kept = kept[:f.Limit]
	}
	return kept
}

// authorAllowed matches ids exactly and display names case-insensitively,
// since the model rarely reproduces a name's exact casing.
func authorAllowed(m discord.HistoryMessage, authors []string) bool {
	if len(authors) == 0 {
		return true
	}
	name := strings.ToLower(strings.TrimSpace(m.AuthorName))
	for _, a := range authors {
		a = strings.TrimSpace(a)
		if a == m.AuthorID || strings.ToLower(a) == name {
			return true
		}
	}
	return false
}
