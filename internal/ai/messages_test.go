package ai

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elisa-renault/Galactia/internal/discord"
)

func historyFixture() []discord.HistoryMessage {
	base := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	msg := func(i int, author, authorID, content string) discord.HistoryMessage {
		return discord.HistoryMessage{
			ID:         fmt.Sprintf("%d", i),
			AuthorID:   authorID,
			AuthorName: author,
			Content:    content,
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
		}
	}

	msgs := []discord.HistoryMessage{
		msg(0, "Elsia", "1", "salut"),
		msg(1, "Kara", "2", "on raid ce soir ?"),
		msg(2, "Elsia", "1", "oui 21h"),
		msg(3, "Kara", "2", "parfait"),
	}
	msgs = append(msgs, discord.HistoryMessage{ID: "4", AuthorID: "3", AuthorName: "BotSpam", AuthorBot: true, Content: "ad", Timestamp: base.Add(4 * time.Minute)})
	msgs = append(msgs, discord.HistoryMessage{ID: "5", AuthorID: "2", AuthorName: "Kara", MentionsBot: true, Content: "@Galactia résume", Timestamp: base.Add(5 * time.Minute)})
	msgs = append(msgs, discord.HistoryMessage{ID: "6", AuthorID: "1", AuthorName: "Elsia", Content: "", Timestamp: base.Add(6 * time.Minute)})
	return msgs
}

func TestFilterMessagesDropsBotsEmptyAndMentions(t *testing.T) {
	got := FilterMessages(historyFixture(), Filter{})

	require.Len(t, got, 4)
	for _, m := range got {
		assert.False(t, m.AuthorBot)
		assert.False(t, m.MentionsBot)
		assert.NotEmpty(t, m.Content)
	}
}

func TestFilterMessagesByAuthor(t *testing.T) {
	t.Run("by display name", func(t *testing.T) {
		got := FilterMessages(historyFixture(), Filter{Authors: []string{"Elsia"}})
		require.Len(t, got, 2)
	})

	t.Run("by id", func(t *testing.T) {
		got := FilterMessages(historyFixture(), Filter{Authors: []string{"2"}})
		require.Len(t, got, 2)
		for _, m := range got {
			assert.Equal(t, "Kara", m.AuthorName)
		}
	})
}

func TestFilterMessagesTimeWindow(t *testing.T) {
	base := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)
	got := FilterMessages(historyFixture(), Filter{
		Start: base.Add(1 * time.Minute),
		End:   base.Add(2 * time.Minute),
	})

	require.Len(t, got, 2)
}

func TestFilterMessagesSortAndLimit(t *testing.T) {
	t.Run("descending keeps newest", func(t *testing.T) {
		got := FilterMessages(historyFixture(), Filter{Limit: 2})
		require.Len(t, got, 2)
		assert.Equal(t, "parfait", got[0].Content)
		assert.Equal(t, "oui 21h", got[1].Content)
	})

	t.Run("ascending keeps oldest", func(t *testing.T) {
		got := FilterMessages(historyFixture(), Filter{Limit: 2, Ascending: true})
		require.Len(t, got, 2)
		assert.Equal(t, "salut", got[0].Content)
		assert.Equal(t, "on raid ce soir ?", got[1].Content)
	})
}

func TestParseIntentFallsBackOnBadJSON(t *testing.T) {
	intent := parseIntent("pas du json")
	assert.False(t, intent.Summary)
}

func TestParseIntentReadsFields(t *testing.T) {
	intent := parseIntent(`{"summary": true, "wrong_channel": false, "authors": ["Elsia"], "time_limit": "hier", "count_limit": 20, "ascending": true, "focus": "drama"}`)

	assert.True(t, intent.Summary)
	assert.Equal(t, []string{"Elsia"}, intent.Authors)
	assert.Equal(t, "hier", intent.TimeLimit)
	assert.Equal(t, 20, intent.CountLimit)
	assert.True(t, intent.Ascending)
	assert.Equal(t, "drama", intent.Focus)
}

func TestParseIntentToleratesNulls(t *testing.T) {
	intent := parseIntent(`{"summary": true, "authors": null, "time_limit": null, "count_limit": null, "ascending": null, "focus": null}`)

	assert.True(t, intent.Summary)
	assert.Nil(t, intent.Authors)
	assert.Equal(t, "", intent.TimeLimit)
}
