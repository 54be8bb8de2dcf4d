// Package ratelimit throttles request rates per client key over a sliding
// window. The Limiter interface is backend-agnostic: an in-memory window for
// single-node deployments and tests, and a Redis-backed implementation for
// fleets of API instances. All backends derive the reset fields the same
// way so HTTP headers are consistent regardless of backend.
package ratelimit

import (
	"context"
	"math"
	"time"
)

// Result is the decision for a single request.
type Result struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Remaining is how many requests are left in the current window.
	Remaining int

	// ResetAfterSeconds is how long until the window frees up, rounded up
	// and never below one second. Feeds the Retry-After header.
	ResetAfterSeconds int

	// ResetAtEpochSeconds is the Unix second when the window resets. Never
	// in the past. Feeds the X-RateLimit-Reset header.
	ResetAtEpochSeconds int64
}

// Limiter decides whether a request identified by key may proceed given the
// quota of maxRequests per window.
type Limiter interface {
	Check(ctx context.Context, key string, maxRequests int, window time.Duration) (Result, error)
}

// BuildResult derives the reset fields from the window deadline. Both now
// and resetDeadline are fractional Unix seconds.
func BuildResult(allowed bool, remaining int, now, resetDeadline float64) Result {
	resetAfter := int(math.Ceil(resetDeadline - now))
	if resetAfter < 1 {
		resetAfter = 1
	}

	resetAt := int64(math.Ceil(resetDeadline))
	if nowCeil := int64(math.Ceil(now)); resetAt < nowCeil {
		resetAt = nowCeil
	}

	return Result{
		Allowed:             allowed,
		Remaining:           remaining,
		ResetAfterSeconds:   resetAfter,
		ResetAtEpochSeconds: resetAt,
	}
}
