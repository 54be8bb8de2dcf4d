// Package errs provides the standardized error types for the drone delivery
// service. It implements a consistent pattern for error creation, formatting
// and unwrapping used throughout the application.
//
// The taxonomy mirrors how callers must react:
//   - InvalidInputError: malformed request data, never retried
//   - ConflictError: illegal state transition, idempotency payload mismatch,
//     order not dispatchable; retry only after changing intent
//   - ObjectNotFoundError: missing aggregate or record
//   - UnavailableError: integration/backend failure, retryable by policy
//   - ProtocolError: malformed remote reply, fatal for that call
//
// Each error type follows the same pattern:
//   - a sentinel error variable (e.g. ErrConflict)
//   - a struct type carrying details and an optional cause
//   - constructors with and without cause
//   - Error() for formatting and Unwrap() returning the sentinel,
//     so errors.Is classification works everywhere
package errs
