package ai

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// paris is the reference timezone for time-range interpretation.
var paris = mustLoadParis()

func mustLoadParis() *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseTimeRange resolves a fuzzy French time expression ("depuis hier",
// "de minuit à 2h") to a concrete [start, end] window via the model. On
// any failure the window falls back to the last 24 hours.
func ParseTimeRange(ctx context.Context, completer Completer, now time.Time, timeLimit string) (time.Time, time.Time) {
	now = now.In(paris)
	if timeLimit == "" {
		return time.Time{}, now
	}

	fallback := func() (time.Time, time.Time) {
		return now.Add(-24 * time.Hour), now
	}

	raw, err := completer.Complete(ctx, timeRangePrompt(now.Format("2006-01-02 15:04:05"), timeLimit))
	if err != nil {
		slog.Info("time range resolution failed", "error", err)
		return fallback()
	}

	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		slog.Info("invalid time range response", "raw", raw)
		return fallback()
	}

	start, err := parseParisTime(strings.TrimSpace(parts[0]))
	if err != nil {
		slog.Info("time range start parse failed", "raw", parts[0], "error", err)
		return fallback()
	}
	end, err := parseParisTime(strings.TrimSpace(parts[1]))
	if err != nil {
		slog.Info("time range end parse failed", "raw", parts[1], "error", err)
		return fallback()
	}

	end = patchOpenEnd(timeLimit, end, now)

	slog.Info("time range resolved", "start", start, "end", end)
	return start, end
}

// patchOpenEnd forces the end of the window to now when the expression
// only gives a starting point ("depuis mardi" with no explicit end). The
// model sometimes invents an end despite the prompt.
func patchOpenEnd(timeLimit string, end, now time.Time) time.Time {
	s := strings.ToLower(timeLimit)

	hasExplicitRange := strings.Contains(s, "jusqu") ||
		strings.Contains(s, " à ") ||
		strings.Contains(s, "entre") ||
		strings.Contains(s, "et ")
	hasOnlyStart := (strings.Contains(s, "depuis") || strings.Contains(s, "à partir de")) && !hasExplicitRange

	if hasOnlyStart {
		return now
	}
	return end
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseParisTime(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, paris)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
