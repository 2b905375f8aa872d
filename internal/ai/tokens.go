package ai

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// EstimateTokens counts tokens with the cl100k_base tokenizer. When the
// tokenizer cannot be loaded it falls back to the rough 4-chars-per-token
// heuristic.
func EstimateTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			slog.Warn("tokenizer unavailable, using character estimate", "error", err)
			return
		}
		encoding = enc
	})

	if encoding == nil {
		return len(text) / 4
	}
	return len(encoding.Encode(text, nil, nil))
}
