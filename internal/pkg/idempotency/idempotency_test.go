package idempotency_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"dronedelivery/internal/pkg/errs"
	"dronedelivery/internal/pkg/idempotency"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuard(t *testing.T) (*idempotency.Guard, *idempotency.InMemoryStore) {
	t.Helper()

	store := idempotency.NewInMemoryStore()
	guard, err := idempotency.NewGuard(store, time.Hour, 255)
	require.NoError(t, err)
	return guard, store
}

func testScope(key string) idempotency.Scope {
	return idempotency.Scope{
		Actor: "user-1",
		Route: "POST:/api/v1/orders",
		Key:   key,
	}
}

func TestGuard_ValidateKey(t *testing.T) {
	guard, _ := newGuard(t)

	t.Run("accepts a normal key", func(t *testing.T) {
		require.NoError(t, guard.ValidateKey("order-create-001"))
	})

	t.Run("rejects an empty key", func(t *testing.T) {
		require.ErrorIs(t, guard.ValidateKey(""), errs.ErrInvalidInput)
	})

	t.Run("rejects a whitespace-only key", func(t *testing.T) {
		require.ErrorIs(t, guard.ValidateKey("   \t"), errs.ErrInvalidInput)
	})

	t.Run("rejects an oversized key", func(t *testing.T) {
		long := make([]byte, 256)
		for i := range long {
			long[i] = 'k'
		}

		require.ErrorIs(t, guard.ValidateKey(string(long)), errs.ErrInvalidInput)
	})

	t.Run("accepts a key at the limit", func(t *testing.T) {
		max := make([]byte, 255)
		for i := range max {
			max[i] = 'k'
		}

		require.NoError(t, guard.ValidateKey(string(max)))
	})
}

func TestFingerprint(t *testing.T) {
	t.Run("key order does not matter", func(t *testing.T) {
		a, err := idempotency.Fingerprint([]byte(`{"b":2,"a":1}`))
		require.NoError(t, err)
		b, err := idempotency.Fingerprint([]byte(`{"a":1,"b":2}`))
		require.NoError(t, err)

		assert.Equal(t, a, b)
	})

	t.Run("whitespace does not matter", func(t *testing.T) {
		a, err := idempotency.Fingerprint([]byte(`{ "a": 1 }`))
		require.NoError(t, err)
		b, err := idempotency.Fingerprint([]byte(`{"a":1}`))
		require.NoError(t, err)

		assert.Equal(t, a, b)
	})

	t.Run("different values differ", func(t *testing.T) {
		a, err := idempotency.Fingerprint([]byte(`{"a":1}`))
		require.NoError(t, err)
		b, err := idempotency.Fingerprint([]byte(`{"a":2}`))
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
	})

	t.Run("empty body fingerprints as null", func(t *testing.T) {
		a, err := idempotency.Fingerprint(nil)
		require.NoError(t, err)
		b, err := idempotency.Fingerprint([]byte("null"))
		require.NoError(t, err)

		assert.Equal(t, a, b)
	})

	t.Run("invalid JSON is rejected", func(t *testing.T) {
		_, err := idempotency.Fingerprint([]byte(`{"a":`))

		require.ErrorIs(t, err, errs.ErrInvalidInput)
	})
}

func TestGuard_CheckAndSave(t *testing.T) {
	ctx := context.Background()
	payload := []byte(`{"priority":"MEDICAL","payload_weight_kg":2}`)

	t.Run("first use is fresh", func(t *testing.T) {
		guard, _ := newGuard(t)

		result, err := guard.Check(ctx, testScope("k1"), payload)

		require.NoError(t, err)
		assert.Equal(t, idempotency.OutcomeFresh, result.Outcome)
	})

	t.Run("identical repeat replays the stored response", func(t *testing.T) {
		guard, _ := newGuard(t)
		scope := testScope("k1")
		require.NoError(t, guard.Save(ctx, scope, payload, 201, []byte(`{"id":"abc"}`)))

		result, err := guard.Check(ctx, scope, []byte(`{"payload_weight_kg":2,"priority":"MEDICAL"}`))

		require.NoError(t, err)
		assert.Equal(t, idempotency.OutcomeReplay, result.Outcome)
		assert.Equal(t, 201, result.ResponseStatus)
		assert.Equal(t, []byte(`{"id":"abc"}`), result.ResponseBody)
	})

	t.Run("key reuse with a different payload conflicts", func(t *testing.T) {
		guard, _ := newGuard(t)
		scope := testScope("k1")
		require.NoError(t, guard.Save(ctx, scope, payload, 201, []byte(`{"id":"abc"}`)))

		_, err := guard.Check(ctx, scope, []byte(`{"priority":"NORMAL"}`))

		require.ErrorIs(t, err, errs.ErrConflict)
		assert.Contains(t, err.Error(), "Idempotency key reused with different payload")
	})

	t.Run("same key under a different actor is fresh", func(t *testing.T) {
		guard, _ := newGuard(t)
		require.NoError(t, guard.Save(ctx, testScope("k1"), payload, 201, nil))

		other := testScope("k1")
		other.Actor = "user-2"
		result, err := guard.Check(ctx, other, []byte(`{"priority":"NORMAL"}`))

		require.NoError(t, err)
		assert.Equal(t, idempotency.OutcomeFresh, result.Outcome)
	})

	t.Run("save conflicts when a different payload won the race", func(t *testing.T) {
		guard, _ := newGuard(t)
		scope := testScope("k1")
		require.NoError(t, guard.Save(ctx, scope, payload, 201, []byte(`{"id":"abc"}`)))

		err := guard.Save(ctx, scope, []byte(`{"priority":"NORMAL"}`), 201, []byte(`{"id":"xyz"}`))

		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("replayed save refreshes the stored response", func(t *testing.T) {
		guard, _ := newGuard(t)
		scope := testScope("k1")
		require.NoError(t, guard.Save(ctx, scope, payload, 201, []byte(`{"id":"abc"}`)))
		require.NoError(t, guard.Save(ctx, scope, payload, 201, []byte(`{"id":"abc","replayed":true}`)))

		result, err := guard.Check(ctx, scope, payload)

		require.NoError(t, err)
		assert.Equal(t, idempotency.OutcomeReplay, result.Outcome)
		assert.Equal(t, []byte(`{"id":"abc","replayed":true}`), result.ResponseBody)
	})
}

func TestGuard_ConcurrentFirstUse(t *testing.T) {
	// Many goroutines race the first save of one key with the same payload;
	// exactly one record must win and every saver must succeed.
	guard, _ := newGuard(t)
	ctx := context.Background()
	scope := testScope("race-key")
	payload := []byte(`{"n":1}`)

	var wg sync.WaitGroup
	errors := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errors <- guard.Save(ctx, scope, payload, 201, []byte(`{"ok":true}`))
		}()
	}
	wg.Wait()
	close(errors)

	for err := range errors {
		require.NoError(t, err)
	}

	result, err := guard.Check(ctx, scope, payload)
	require.NoError(t, err)
	assert.Equal(t, idempotency.OutcomeReplay, result.Outcome)
}
