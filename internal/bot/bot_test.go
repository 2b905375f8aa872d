package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elisa-renault/Galactia/internal/domain"
)

func TestTwitchFollowLines(t *testing.T) {
	lines := twitchFollowLines([]domain.TwitchFollow{
		{Login: "shroud", ChannelID: "123", RoleID: "456", Live: true},
		{Login: "ponce", ChannelID: "123"},
	})

	require.Len(t, lines, 2)
	assert.Equal(t, "• **shroud** → <#123> (ping <@&456>) — live", lines[0])
	assert.Equal(t, "• **ponce** → <#123>", lines[1])
}

func TestYouTubeFollowLines(t *testing.T) {
	lines := youtubeFollowLines([]domain.YouTubeFollow{
		{ChannelID: "UCabc", ChannelTitle: "Limit Maximum", AnnounceChannelID: "123", RoleID: "456"},
		{ChannelID: "UCdef", AnnounceChannelID: "123"},
	})

	require.Len(t, lines, 2)
	assert.Equal(t, "• **Limit Maximum** → <#123> (mention <@&456>)", lines[0])
	// falls back to the channel id when the title is unknown
	assert.Equal(t, "• **UCdef** → <#123>", lines[1])
}

func TestFindYouTubeFollow(t *testing.T) {
	follows := []domain.YouTubeFollow{
		{ChannelID: "UCabc"},
		{ChannelID: "UCdef"},
	}

	f := findYouTubeFollow(follows, "UCdef")
	require.NotNil(t, f)
	assert.Equal(t, "UCdef", f.ChannelID)

	assert.Nil(t, findYouTubeFollow(follows, "UCghi"))
}

func TestYouTubeUnavailableWithoutAPI(t *testing.T) {
	assert.True(t, youtubeUnavailable(nil, "add"))
	assert.True(t, youtubeUnavailable(nil, "remove"))
	assert.False(t, youtubeUnavailable(nil, "list"))
}

func TestMentionedAuthorIDs(t *testing.T) {
	mentions := []*discordgo.User{
		{ID: "bot"},
		{ID: "1"},
		{ID: "2"},
		{ID: "1"},
	}

	assert.Equal(t, []string{"1", "2"}, mentionedAuthorIDs(mentions, "bot"))
	assert.True(t, mentionsUser(mentions, "2"))
	assert.False(t, mentionsUser(mentions, "3"))
}
