package idempotency

import (
	"context"
	"sync"
	"time"

	"dronedelivery/internal/pkg/errs"
)

// Store persists idempotency records. Implementations must make Insert
// atomic per scope: concurrent first uses of a key must resolve to exactly
// one stored record.
type Store interface {
	// Get retrieves the record for the scope, or a NotFound error.
	Get(ctx context.Context, scope Scope) (*Record, error)

	// Insert stores the record if the scope is free and returns (nil, nil).
	// When a record for the scope already exists it is returned unchanged;
	// the caller decides whether that is a refresh or a conflict.
	Insert(ctx context.Context, record Record) (*Record, error)

	// Update overwrites the record for its scope.
	Update(ctx context.Context, record Record) error

	// DeleteExpired removes records whose expiry is at or before the given
	// time and returns how many were removed.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// InMemoryStore is a mutex-protected map store for tests and single-node
// deployments.
type InMemoryStore struct {
	mu      sync.Mutex
	records map[Scope]Record
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[Scope]Record)}
}

// Get implements Store.
func (s *InMemoryStore) Get(_ context.Context, scope Scope) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[scope]
	if !ok {
		return nil, errs.NewObjectNotFoundError("idempotency scope", scope.Key)
	}
	return &record, nil
}

// Insert implements Store.
func (s *InMemoryStore) Insert(_ context.Context, record Record) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[record.Scope]; ok {
		return &existing, nil
	}
	s.records[record.Scope] = record
	return nil, nil
}

// Update implements Store.
func (s *InMemoryStore) Update(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[record.Scope]; !ok {
		return errs.NewObjectNotFoundError("idempotency scope", record.Scope.Key)
	}
	s.records[record.Scope] = record
	return nil
}

// DeleteExpired implements Store.
func (s *InMemoryStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for scope, record := range s.records {
		if !record.ExpiresAt.After(before) {
			delete(s.records, scope)
			purged++
		}
	}
	return purged, nil
}

// Reset drops every record. Test helper.
func (s *InMemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[Scope]Record)
}
