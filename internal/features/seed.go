package features

import "github.com/elisa-renault/Galactia/internal/domain"

// Defaults returns the built-in feature set seeded into the database.
func Defaults() []domain.Feature {
	return []domain.Feature{
		{Key: KeyTwitch, Name: "Twitch notifications", Description: "Announce live streams of followed Twitch channels"},
		{Key: KeyYouTube, Name: "YouTube notifications", Description: "Announce new uploads of followed YouTube channels"},
		{Key: KeyAI, Name: "AI summaries", Description: "Summarize channel conversations on mention"},
	}
}
