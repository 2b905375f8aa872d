package ai

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Intent is the parsed summary request the model extracts from a mention.
type Intent struct {
	Summary      bool     `json:"summary"`
	WrongChannel bool     `json:"wrong_channel"`
	Authors      []string `json:"authors"`
	TimeLimit    string   `json:"time_limit"`
	CountLimit   int      `json:"count_limit"`
	Ascending    bool     `json:"ascending"`
	Focus        string   `json:"focus"`
}

// DetectIntent sanitizes the user message and asks the model whether it is
// a summary request and with which parameters. Any failure degrades to a
// non-summary intent rather than an error.
func DetectIntent(ctx context.Context, completer Completer, userMessage, channelName string) Intent {
	cleaned := Sanitize(ctx, completer, userMessage)
	if cleaned == "" {
		return Intent{}
	}

	raw, err := completer.Complete(ctx, intentPrompt(cleaned, channelName))
	if err != nil {
		slog.Info("intent detection failed", "error", err)
		return Intent{}
	}
	slog.Info("intent received", "json", raw)

	return parseIntent(raw)
}

func parseIntent(raw string) Intent {
	var intent Intent
	if err := json.Unmarshal([]byte(raw), &intent); err != nil {
		slog.Info("intent JSON parse failed", "error", err)
		return Intent{}
	}
	return intent
}
