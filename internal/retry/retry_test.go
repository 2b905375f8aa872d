package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("transient")

func alwaysBackoff(error) Verdict { return Backoff }

func TestDoReturnsFirstSuccess(t *testing.T) {
	o := Options{Attempts: 3, Wait: time.Millisecond}

	attempts := 0
	val, err := Do(context.Background(), o, alwaysBackoff, func() (int, error) {
		attempts++
		if attempts < 2 {
			return 0, errTransient
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, val)
	assert.Equal(t, 2, attempts)
}

func TestDoAbortsOnPermanentError(t *testing.T) {
	o := Options{Attempts: 5, Wait: time.Millisecond}

	attempts := 0
	_, err := Do(context.Background(), o, func(error) Verdict { return Abort }, func() (int, error) {
		attempts++
		return 0, errTransient
	})

	var abandoned *Abandoned
	require.ErrorAs(t, err, &abandoned)
	assert.Equal(t, 1, attempts)
	assert.ErrorIs(t, err, errTransient)
}

func TestDoExhaustsAttempts(t *testing.T) {
	o := Options{Attempts: 3, Wait: time.Millisecond}

	attempts := 0
	_, err := Do(context.Background(), o, alwaysBackoff, func() (int, error) {
		attempts++
		return 0, errTransient
	})

	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "gave up after 3 attempts")
}

func TestDoUsesThrottleWait(t *testing.T) {
	o := Options{Attempts: 2, Wait: time.Millisecond, Throttle: 5 * time.Millisecond}

	var observed time.Duration
	o.OnWait = func(_ int, wait time.Duration, _ error) { observed = wait }

	_, _ = Do(context.Background(), o, func(error) Verdict { return Throttled }, func() (int, error) {
		return 0, errTransient
	})

	assert.Equal(t, 5*time.Millisecond, observed)
}

func TestDoHonorsContextCancellation(t *testing.T) {
	o := Options{Attempts: 10, Wait: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Do(ctx, o, alwaysBackoff, func() (int, error) {
		return 0, errTransient
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
