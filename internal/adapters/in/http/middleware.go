package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"dronedelivery/internal/pkg/auth"
	"dronedelivery/internal/pkg/errs"
	"dronedelivery/internal/pkg/idempotency"
	"dronedelivery/internal/pkg/metrics"
	"dronedelivery/internal/pkg/ratelimit"
)

// IdempotencyKeyHeader carries the client supplied deduplication key.
const IdempotencyKeyHeader = "Idempotency-Key"

// Authenticate parses a bearer token, when present, into the request
// principal. Requests without an Authorization header run as the anonymous
// actor; a malformed or invalid token is rejected rather than downgraded.
func Authenticate(verifier *auth.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			header := ctx.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return next(ctx)
			}

			principal, err := verifier.ParseAuthorization(header)
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, ErrorResponse{
					Code:    http.StatusUnauthorized,
					Message: "Invalid bearer token",
				})
			}

			request := ctx.Request()
			ctx.SetRequest(request.WithContext(auth.WithPrincipal(request.Context(), principal)))
			return next(ctx)
		}
	}
}

// Quota describes one rate-limited surface.
type Quota struct {
	// Name labels the quota in metrics and limiter keys.
	Name string

	MaxRequests int
	Window      time.Duration

	// FailOpen admits requests when the limiter backend errors. Public read
	// quotas fail open; write quotas fail closed.
	FailOpen bool
}

// RateLimit throttles requests per caller under the quota. Authenticated
// callers are keyed by actor, anonymous ones by client IP. Every limited
// response carries the X-RateLimit-* headers; rejections additionally carry
// Retry-After.
func RateLimit(limiter ratelimit.Limiter, quota Quota) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			key := quota.Name + ":" + clientKey(ctx)

			result, err := limiter.Check(
				ctx.Request().Context(), key, quota.MaxRequests, quota.Window)
			if err != nil {
				if quota.FailOpen {
					return next(ctx)
				}
				return writeError(ctx, errs.NewUnavailableErrorWithCause(
					"rate-limiter", "limiter backend unreachable", err))
			}

			header := ctx.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(quota.MaxRequests))
			header.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			header.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAtEpochSeconds, 10))

			if !result.Allowed {
				header.Set("Retry-After", strconv.Itoa(result.ResetAfterSeconds))
				metrics.RateLimitRejectionsTotal.WithLabelValues(quota.Name).Inc()
				return ctx.JSON(http.StatusTooManyRequests, ErrorResponse{
					Code:    http.StatusTooManyRequests,
					Message: "Rate limit exceeded",
				})
			}

			return next(ctx)
		}
	}
}

// clientKey identifies the caller for rate limiting.
func clientKey(ctx echo.Context) string {
	principal := auth.FromContext(ctx.Request().Context())
	if principal.Actor != auth.AnonymousActor {
		return principal.Actor
	}
	return ctx.RealIP()
}

// Idempotent deduplicates mutating requests under the Idempotency-Key header.
// Requests without the header pass through untouched; an invalid key is
// rejected before any store access; a replay answers with the stored response
// verbatim.
func Idempotent(guard *idempotency.Guard) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			values := ctx.Request().Header.Values(IdempotencyKeyHeader)
			if len(values) == 0 {
				return next(ctx)
			}
			key := values[0]

			body, err := io.ReadAll(ctx.Request().Body)
			if err != nil {
				return writeError(ctx, errs.NewInvalidInputErrorWithCause(
					"request body cannot be read", err))
			}
			ctx.Request().Body = io.NopCloser(bytes.NewReader(body))

			scope := idempotency.Scope{
				Actor: auth.FromContext(ctx.Request().Context()).Actor,
				Route: ctx.Request().Method + ":" + ctx.Path(),
				Key:   key,
			}

			check, err := guard.Check(ctx.Request().Context(), scope, body)
			if err != nil {
				if errors.Is(err, errs.ErrConflict) {
					metrics.IdempotencyConflictsTotal.Inc()
				}
				return writeError(ctx, err)
			}

			if check.Outcome == idempotency.OutcomeReplay {
				metrics.IdempotentReplaysTotal.Inc()
				return ctx.JSONBlob(check.ResponseStatus, check.ResponseBody)
			}

			recorder := newResponseRecorder(ctx.Response().Writer)
			ctx.Response().Writer = recorder

			if err := next(ctx); err != nil {
				return err
			}

			status := ctx.Response().Status
			if status >= http.StatusOK && status < http.StatusMultipleChoices {
				if saveErr := guard.Save(
					ctx.Request().Context(), scope, body, status, recorder.Body(),
				); saveErr != nil {
					// The response already went out; losing the record only
					// costs a future replay.
					ctx.Logger().Errorf("idempotency record not saved: %v", saveErr)
				}
			}
			return nil
		}
	}
}

// responseRecorder tees the response body so it can be stored for replays.
type responseRecorder struct {
	http.ResponseWriter
	body bytes.Buffer
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w}
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	r.body.Write(p)
	return r.ResponseWriter.Write(p)
}

// Body returns a copy-safe view of everything written so far.
func (r *responseRecorder) Body() []byte {
	return r.body.Bytes()
}
