package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFitForDiscordKeepsShortText(t *testing.T) {
	assert.Equal(t, "court", FitForDiscord("court"))
	assert.Equal(t, "", FitForDiscord(""))
}

func TestFitForDiscordTruncatesLongText(t *testing.T) {
	long := strings.Repeat("a", 3000)
	got := FitForDiscord(long)

	assert.LessOrEqual(t, len(got), MaxDiscord)
	assert.True(t, strings.HasSuffix(got, "… (résumé tronqué)"))
}

func TestFitForDiscordCutsAtNearbyNewline(t *testing.T) {
	// A newline shortly before the target should become the cut point.
	long := strings.Repeat("b", 1800) + "\n" + strings.Repeat("c", 1000)
	got := FitForDiscord(long)

	assert.True(t, strings.HasPrefix(got, strings.Repeat("b", 1800)))
	assert.NotContains(t, got, "c")
	assert.True(t, strings.HasSuffix(got, "… (résumé tronqué)"))
}

func TestChunkText(t *testing.T) {
	assert.Equal(t, []string{""}, ChunkText("", 1900))

	chunks := ChunkText(strings.Repeat("x", 4000), 1900)
	assert.Len(t, chunks, 3)
	assert.Len(t, chunks[0], 1900)
	assert.Len(t, chunks[1], 1900)
	assert.Len(t, chunks[2], 200)
}
