// Package retry re-runs calls against flaky remote APIs with exponential
// backoff, letting the caller classify each failure.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Verdict tells Do how to treat a failed attempt.
type Verdict int

const (
	// Abort marks the error permanent; Do gives up immediately.
	Abort Verdict = iota
	// Backoff marks the error transient; Do waits and tries again.
	Backoff
	// Throttled marks a rate-limit response; the wait restarts from the
	// longer throttle duration.
	Throttled
)

// Options tunes a retry loop.
type Options struct {
	Attempts int           // total attempts, including the first
	Wait     time.Duration // initial wait, doubled after each attempt
	Throttle time.Duration // wait applied after a Throttled verdict
	// OnWait, when set, observes every wait before it starts.
	OnWait func(attempt int, wait time.Duration, err error)
}

// Abandoned wraps the error of an attempt the classifier marked permanent.
type Abandoned struct {
	Cause error
}

func (a *Abandoned) Error() string { return a.Cause.Error() }
func (a *Abandoned) Unwrap() error { return a.Cause }

// Do runs op until it succeeds, the classifier aborts, the attempts run
// out, or ctx ends. Waits happen between attempts, never after the last.
func Do[T any](ctx context.Context, o Options, classify func(error) Verdict, op func() (T, error)) (T, error) {
	var zero T
	wait := o.Wait

	for attempt := 1; ; attempt++ {
		v, err := op()
		if err == nil {
			return v, nil
		}

		switch classify(err) {
		case Abort:
			return zero, &Abandoned{Cause: err}
		case Throttled:
			wait = o.Throttle
		}

		if attempt >= o.Attempts {
			return zero, fmt.Errorf("gave up after %d attempts: %w", o.Attempts, err)
		}

		if o.OnWait != nil {
			o.OnWait(attempt, wait, err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
			wait *= 2
		case <-ctx.Done():
			timer.Stop()
			return zero, fmt.Errorf("retry interrupted: %w", ctx.Err())
		}
	}
}
