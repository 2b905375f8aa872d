package ai

import (
	"context"
	"log/slog"
	"regexp"
)

// suspiciousPattern matches common prompt injection phrasings, French and
// English.
var suspiciousPattern = regexp.MustCompile(`(?i)\b(` +
	`ignore\s+(?:les\s+)?(?:instructions|règles|précédentes)|` +
	`disregard|override|bypass|jailbreak|DAN|act\s+as|` +
	`system\s*prompt|developer\s*message|tool\s*call|function\s*call` +
	`)\b`)

func suspicious(text string) bool {
	return suspiciousPattern.MatchString(text)
}

// Sanitize asks the model to strip prompt injection segments from a user
// request. The model must return a strict subset of the input; answers
// that look like over-removal or errors fall back to the original text.
// A fully blanked answer on a suspicious input blocks the request.
func Sanitize(ctx context.Context, completer Completer, text string) string {
	cleaned, err := completer.Complete(ctx, sanitizePrompt(text))
	if err != nil {
		slog.Info("sanitize failed, keeping original", "error", err)
		return text
	}

	if cleaned == "" {
		if suspicious(text) {
			slog.Info("sanitize blocked fully suspicious input")
			return ""
		}
		slog.Info("sanitize returned empty for benign input, keeping original")
		return text
	}

	if float64(len(cleaned)) < 0.7*float64(len(text)) && !suspicious(text) {
		slog.Info("sanitize removed too much from benign input, keeping original")
		return text
	}

	if cleaned != text {
		slog.Info("sanitize modified input", "original", text, "cleaned", cleaned)
	}
	return cleaned
}
