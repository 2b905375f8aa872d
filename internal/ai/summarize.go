package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/elisa-renault/Galactia/internal/discord"
)

const tokenBudget = 12000

// Summarize produces a French summary of the given messages, trimmed to
// fit in a single Discord message. Messages beyond the token budget are
// dropped from the end.
func Summarize(ctx context.Context, completer Completer, msgs []discord.HistoryMessage, focus string) (string, error) {
	if len(msgs) == 0 {
		return "Aucun message pertinent à résumer.", nil
	}

	sorted := make([]discord.HistoryMessage, len(msgs))
	copy(sorted, msgs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	instructions := summaryInstructions(focus)
	const basePrompt = "Résume ces messages :\n"

	total := EstimateTokens(strings.Join(instructions, " "))
	total += EstimateTokens(basePrompt)

	var selected []string
	for _, m := range sorted {
		line := fmt.Sprintf("[%s] %s : %s", discord.ParisStamp(m.Timestamp), m.AuthorName, m.Content)
		tokens := EstimateTokens(line + "\n")
		if total+tokens > tokenBudget {
			break
		}
		selected = append(selected, line)
		total += tokens
	}
	slog.Info("summary prompt built", "tokens", total, "lines", len(selected), "dropped", len(sorted)-len(selected))

	raw, err := completer.Complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: strings.Join(instructions, " ")},
		{Role: openai.ChatMessageRoleUser, Content: basePrompt + strings.Join(selected, "\n")},
	})
	if err != nil {
		return "", fmt.Errorf("summary generation failed: %w", err)
	}

	return FitForDiscord(raw), nil
}

// PrependNotices puts the fallback notice lines above the summary and
// re-trims the combined text.
func PrependNotices(summary string, notices []string) string {
	if len(notices) == 0 {
		return summary
	}
	return FitForDiscord(strings.Join(notices, "\n") + "\n\n" + summary)
}
