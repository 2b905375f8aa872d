package twitch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elisa-renault/Galactia/internal/retry"
)

func TestClassifyAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want retry.Verdict
	}{
		{"rate limited", &apiError{status: 429}, retry.Throttled},
		{"server error", &apiError{status: 503}, retry.Backoff},
		{"bad request", &apiError{status: 400}, retry.Abort},
		{"unauthorized", &apiError{status: 401}, retry.Abort},
		{"network failure", errors.New("connection reset"), retry.Backoff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyAPIError(tt.err))
		})
	}
}
