// Package retry implements an explicit retry policy for integration clients.
// Both the fleet telemetry client and the mission publisher use the same
// policy shape so that backoff behavior cannot diverge between call sites.
package retry

import (
	"context"
	"errors"
	"time"

	"dronedelivery/internal/pkg/errs"
)

// Policy describes how an integration call is retried: at most MaxAttempts
// total attempts, sleeping BaseDelay, 2*BaseDelay, 4*BaseDelay, ... between
// them, retrying only while Retryable returns true for the last error.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Retryable   func(error) bool
}

// DefaultPolicy retries transient integration failures (errs.ErrUnavailable)
// up to three attempts with exponential backoff starting at 200ms.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		Retryable: func(err error) bool {
			return errors.Is(err, errs.ErrUnavailable)
		},
	}
}

// Do invokes fn until it succeeds, the error is not retryable, attempts are
// exhausted, or the context is canceled. The last error is returned as-is so
// callers keep the errs classification.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if p.Retryable == nil || !p.Retryable(lastErr) || attempt == attempts {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return lastErr
}
