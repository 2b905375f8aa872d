// Package ai implements the mention-triggered chat summarizer: prompt
// sanitization, intent detection, fuzzy time-range resolution, and summary
// generation through the OpenAI API.
package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"github.com/elisa-renault/Galactia/internal/metrics"
)

const defaultModel = "gpt-5-mini"

// ErrEmptyCompletion is returned when the model answers with no choices.
var ErrEmptyCompletion = errors.New("empty completion response")

// Completer produces a chat completion for the given messages.
type Completer interface {
	Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

// Client wraps the OpenAI API behind a circuit breaker so a degraded
// upstream cannot pile up requests.
type Client struct {
	oa    *openai.Client
	cb    *gobreaker.CircuitBreaker
	model string
}

func NewClient(apiKey string) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "openai",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "component", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerStateChanges.WithLabelValues(name, to.String()).Inc()
		},
	})

	return &Client{
		oa:    openai.NewClient(apiKey),
		cb:    cb,
		model: defaultModel,
	}
}

// Complete sends a chat completion request and returns the first choice's
// trimmed content.
func (c *Client) Complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	result, err := c.cb.Execute(func() (any, error) {
		resp, err := c.oa.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: messages,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, ErrEmptyCompletion
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		metrics.ExternalAPIErrors.WithLabelValues("openai").Inc()
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return strings.TrimSpace(result.(string)), nil
}
