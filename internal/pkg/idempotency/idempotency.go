// Package idempotency makes mutating endpoints safely retryable. A request
// is identified by its scope (acting principal, route template and client
// supplied key) and fingerprinted by a canonical hash of its payload: a
// repeat with the same payload replays the stored response verbatim, a
// repeat with a different payload is rejected as a conflict.
package idempotency

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"dronedelivery/internal/pkg/errs"
)

const (
	// DefaultTTL is how long a record shields its key from reuse.
	DefaultTTL = 24 * time.Hour

	// DefaultMaxKeyLength bounds client supplied idempotency keys.
	DefaultMaxKeyLength = 255
)

// ConflictMessage is the violated rule reported when a key is reused with a
// payload that hashes differently. The string is part of the API contract.
const ConflictMessage = "Idempotency key reused with different payload"

// Scope identifies one logical request for deduplication purposes. Two
// requests dedupe against each other only when all three fields match.
type Scope struct {
	// Actor is the authenticated principal, "anonymous" on public routes.
	Actor string

	// Route is the route template in METHOD:path form, e.g. "POST:/api/v1/orders".
	// Path parameters stay as placeholders so the scope is stable per endpoint.
	Route string

	// Key is the client supplied Idempotency-Key header value.
	Key string
}

// Record is one stored deduplication entry.
type Record struct {
	Scope          Scope
	RequestHash    string
	ResponseStatus int
	ResponseBody   []byte
	ExpiresAt      time.Time
}

// Outcome classifies the result of an idempotency check.
type Outcome int

const (
	// OutcomeFresh means the key was never seen (or its record expired) and
	// the request must be executed.
	OutcomeFresh Outcome = iota

	// OutcomeReplay means an identical request was already executed; the
	// stored response must be returned without re-executing.
	OutcomeReplay
)

// CheckResult carries the outcome of Check and, on replay, the stored
// response exactly as it was first produced.
type CheckResult struct {
	Outcome        Outcome
	ResponseStatus int
	ResponseBody   []byte
}

// Guard is the idempotency decision point in front of a Store.
type Guard struct {
	store        Store
	ttl          time.Duration
	maxKeyLength int
	now          func() time.Time
}

// NewGuard creates a guard over the given store. Non-positive ttl and
// maxKeyLength fall back to the package defaults.
func NewGuard(store Store, ttl time.Duration, maxKeyLength int) (*Guard, error) {
	if store == nil {
		return nil, errs.NewInvalidInputError("idempotency store is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxKeyLength <= 0 {
		maxKeyLength = DefaultMaxKeyLength
	}

	return &Guard{
		store:        store,
		ttl:          ttl,
		maxKeyLength: maxKeyLength,
		now:          time.Now,
	}, nil
}

// ValidateKey rejects malformed idempotency keys before any store access:
// empty or whitespace-only keys and keys longer than the configured maximum.
func (g *Guard) ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errs.NewInvalidInputError("Idempotency-Key must not be empty")
	}
	if len(key) > g.maxKeyLength {
		return errs.NewInvalidInputError(fmt.Sprintf(
			"Idempotency-Key exceeds %d characters", g.maxKeyLength))
	}
	return nil
}

// Check decides whether the request is fresh, a replay, or a conflicting
// reuse of the key. Expired records are purged first, so an expired key
// behaves exactly like an unseen one.
func (g *Guard) Check(ctx context.Context, scope Scope, payload []byte) (CheckResult, error) {
	if err := g.ValidateKey(scope.Key); err != nil {
		return CheckResult{}, err
	}

	now := g.now().UTC()
	if _, err := g.store.DeleteExpired(ctx, now); err != nil {
		return CheckResult{}, err
	}

	hash, err := Fingerprint(payload)
	if err != nil {
		return CheckResult{}, err
	}

	record, err := g.store.Get(ctx, scope)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return CheckResult{Outcome: OutcomeFresh}, nil
		}
		return CheckResult{}, err
	}

	if record.RequestHash != hash {
		return CheckResult{}, errs.NewConflictError(ConflictMessage)
	}

	return CheckResult{
		Outcome:        OutcomeReplay,
		ResponseStatus: record.ResponseStatus,
		ResponseBody:   record.ResponseBody,
	}, nil
}

// Save stores the response produced for a fresh request. When a record for
// the scope already exists - a racing first use or a replayed save - the
// existing record is authoritative: an identical request hash refreshes the
// stored response and expiry, a different one is a conflict.
func (g *Guard) Save(ctx context.Context, scope Scope, payload []byte, responseStatus int, responseBody []byte) error {
	if err := g.ValidateKey(scope.Key); err != nil {
		return err
	}

	hash, err := Fingerprint(payload)
	if err != nil {
		return err
	}

	now := g.now().UTC()
	record := Record{
		Scope:          scope,
		RequestHash:    hash,
		ResponseStatus: responseStatus,
		ResponseBody:   responseBody,
		ExpiresAt:      now.Add(g.ttl),
	}

	existing, err := g.store.Insert(ctx, record)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	if existing.RequestHash != hash {
		return errs.NewConflictError(ConflictMessage)
	}
	return g.store.Update(ctx, record)
}

// Fingerprint returns the lowercase hex SHA-256 of the payload's canonical
// JSON form: object keys sorted, no insignificant whitespace, numbers kept
// verbatim. An empty payload fingerprints as JSON null. Invalid JSON is an
// InvalidInput error.
func Fingerprint(payload []byte) (string, error) {
	canonical, err := canonicalJSON(payload)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func canonicalJSON(payload []byte) ([]byte, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		payload = []byte("null")
	}

	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, errs.NewInvalidInputErrorWithCause("request body is not valid JSON", err)
	}

	// encoding/json marshals map keys in sorted order without extra
	// whitespace, which is exactly the canonical form.
	canonical, err := json.Marshal(value)
	if err != nil {
		return nil, errs.NewInvalidInputErrorWithCause("request body cannot be canonicalized", err)
	}
	return canonical, nil
}
