package fleet

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dronedelivery/internal/pkg/errs"
	"dronedelivery/internal/pkg/retry"
)

func noRetry() retry.Policy {
	return retry.Policy{MaxAttempts: 1}
}

func TestClient_GetLatestTelemetry(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes a telemetry snapshot", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/telemetry/latest", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"drone_id":"drone-1","lat":47.0,"lng":8.0,"battery":88,"is_available":true,
				 "max_payload_kg":5,"payload_type":"ANY",
				 "service_area":{"min_lat":46,"min_lng":7,"max_lat":48,"max_lng":9}},
				{"drone_id":"drone-2","lat":47.5,"lng":8.5,"battery":40,"is_available":false}
			]`))
		}))
		defer server.Close()

		client, err := NewClient(server.URL, noRetry())
		require.NoError(t, err)

		fleet, err := client.GetLatestTelemetry(ctx)

		require.NoError(t, err)
		require.Len(t, fleet, 2)
		assert.Equal(t, "drone-1", fleet[0].DroneID())
		assert.Equal(t, 88.0, fleet[0].Battery())
		require.NotNil(t, fleet[0].ServiceArea())
		assert.Equal(t, 46.0, fleet[0].ServiceArea().MinLat)
		assert.False(t, fleet[1].IsAvailable())
		assert.Nil(t, fleet[1].MaxPayloadKg())
	})

	t.Run("drops rows that fail validation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[
				{"drone_id":"drone-ok","lat":47.0,"lng":8.0,"battery":90,"is_available":true},
				{"drone_id":"drone-far","lat":95.0,"lng":8.0,"battery":90,"is_available":true},
				{"drone_id":"drone-dead","lat":47.0,"lng":8.0,"battery":180,"is_available":true}
			]`))
		}))
		defer server.Close()

		client, err := NewClient(server.URL, noRetry())
		require.NoError(t, err)

		fleet, err := client.GetLatestTelemetry(ctx)

		require.NoError(t, err)
		require.Len(t, fleet, 1)
		assert.Equal(t, "drone-ok", fleet[0].DroneID())
	})

	t.Run("retries a 5xx then succeeds", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`[{"drone_id":"drone-1","lat":47.0,"lng":8.0,"battery":90,"is_available":true}]`))
		}))
		defer server.Close()

		policy := retry.Policy{
			MaxAttempts: 2,
			BaseDelay:   time.Millisecond,
			Retryable:   retry.DefaultPolicy().Retryable,
		}
		client, err := NewClient(server.URL, policy)
		require.NoError(t, err)

		fleet, err := client.GetLatestTelemetry(ctx)

		require.NoError(t, err)
		assert.Len(t, fleet, 1)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("4xx is a protocol error and is not retried", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		policy := retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
			Retryable:   retry.DefaultPolicy().Retryable,
		}
		client, err := NewClient(server.URL, policy)
		require.NoError(t, err)

		_, err = client.GetLatestTelemetry(ctx)

		require.ErrorIs(t, err, errs.ErrProtocol)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("unreachable server is unavailable", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		server.Close()

		client, err := NewClient(server.URL, noRetry())
		require.NoError(t, err)

		_, err = client.GetLatestTelemetry(ctx)

		require.ErrorIs(t, err, errs.ErrUnavailable)
	})

	t.Run("non-array body is a protocol error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"unexpected":"object"}`))
		}))
		defer server.Close()

		client, err := NewClient(server.URL, noRetry())
		require.NoError(t, err)

		_, err = client.GetLatestTelemetry(ctx)

		require.ErrorIs(t, err, errs.ErrProtocol)
	})
}
