package bot

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeAuthorName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice", "Alice"},
		{"  @Alice ", "Alice"},
		{"d'Alice", "Alice"},
		{"D’Alice", "Alice"},
		{"l'équipe", "équipe"},
		{"\"Bob\"", "Bob"},
		{"<@123>", "123"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeAuthorName(tt.in), "input %q", tt.in)
	}
}

func testMembers() []*discordgo.Member {
	return []*discordgo.Member{
		{User: &discordgo.User{ID: "1", Username: "alicedupont", GlobalName: "Alice"}},
		{User: &discordgo.User{ID: "2", Username: "bob42"}, Nick: "Bob"},
		{User: &discordgo.User{ID: "3", Username: "bobby"}},
		{User: &discordgo.User{ID: "bot", Username: "galactia"}},
	}
}

func TestResolveAuthorNamesExactMatch(t *testing.T) {
	ids := resolveAuthorNames(testMembers(), []string{"ALICE", "bob"}, "bot")
	assert.Equal(t, []string{"1", "2"}, ids)
}

func TestResolveAuthorNamesUniquePrefix(t *testing.T) {
	ids := resolveAuthorNames(testMembers(), []string{"alic"}, "bot")
	assert.Equal(t, []string{"1"}, ids)
}

func TestResolveAuthorNamesAmbiguousPrefixDropped(t *testing.T) {
	// "bob" prefixes both Bob and bobby, but Bob wins as an exact match;
	// "bo" matches neither exactly and is ambiguous.
	assert.Empty(t, resolveAuthorNames(testMembers(), []string{"bo"}, "bot"))
}

func TestResolveAuthorNamesSkipsBotAndDedups(t *testing.T) {
	ids := resolveAuthorNames(testMembers(), []string{"galactia", "Alice", "alicedupont"}, "bot")
	assert.Equal(t, []string{"1"}, ids)
}

func TestResolveAuthorNamesStripsElision(t *testing.T) {
	ids := resolveAuthorNames(testMembers(), []string{"d'Alice"}, "bot")
	assert.Equal(t, []string{"1"}, ids)
}
