package services_test

import (
	"testing"

	"dronedelivery/internal/core/domain/model/drone"
	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/core/domain/services"
	"dronedelivery/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatchOrder(t *testing.T) *order.Order {
	t.Helper()

	pickup, err := kernel.NewGeoPoint(47.0, 8.0)
	require.NoError(t, err)
	dropoff, err := kernel.NewGeoPoint(47.1, 8.1)
	require.NoError(t, err)

	o, err := order.NewOrder(
		kernel.NewUUID(), "TRACK00001", "Jane Doe", "+41790000000",
		pickup, dropoff, nil, 3.0, "MEDICAL", order.PriorityMedical,
	)
	require.NoError(t, err)
	return o
}

func newDrone(t *testing.T, id string, lat, lng, battery float64, opts ...func(*droneSpec)) drone.Telemetry {
	t.Helper()

	spec := droneSpec{available: true}
	for _, opt := range opts {
		opt(&spec)
	}

	position, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)

	d, err := drone.NewTelemetry(
		id, position, battery, spec.available,
		spec.maxPayloadKg, spec.payloadType, spec.serviceArea,
	)
	require.NoError(t, err)
	return d
}

type droneSpec struct {
	available    bool
	maxPayloadKg *float64
	payloadType  string
	serviceArea  *kernel.BoundingBox
}

func unavailable() func(*droneSpec) {
	return func(s *droneSpec) { s.available = false }
}

func withMaxPayloadKg(kg float64) func(*droneSpec) {
	return func(s *droneSpec) { s.maxPayloadKg = &kg }
}

func withPayloadType(pt string) func(*droneSpec) {
	return func(s *droneSpec) { s.payloadType = pt }
}

func withServiceArea(minLat, minLng, maxLat, maxLng float64) func(*droneSpec) {
	return func(s *droneSpec) {
		s.serviceArea = &kernel.BoundingBox{
			MinLat: minLat, MinLng: minLng, MaxLat: maxLat, MaxLng: maxLng,
		}
	}
}

func TestDispatchEngine_IncompatibilityReason(t *testing.T) {
	engine := services.NewDispatchEngine(services.DefaultDispatchConfig())
	o := newDispatchOrder(t)

	tests := []struct {
		name   string
		d      drone.Telemetry
		reason string
	}{
		{
			name:   "compatible drone has no reason",
			d:      newDrone(t, "drone-1", 47.0, 8.0, 90),
			reason: "",
		},
		{
			name:   "unavailable",
			d:      newDrone(t, "drone-1", 47.0, 8.0, 90, unavailable()),
			reason: "Drone unavailable",
		},
		{
			name:   "battery below the floor",
			d:      newDrone(t, "drone-1", 47.0, 8.0, 29.9),
			reason: "Drone battery too low",
		},
		{
			name:   "battery exactly at the floor passes",
			d:      newDrone(t, "drone-1", 47.0, 8.0, 30),
			reason: "",
		},
		{
			name:   "payload too heavy",
			d:      newDrone(t, "drone-1", 47.0, 8.0, 90, withMaxPayloadKg(2.9)),
			reason: "Drone payload capacity exceeded",
		},
		{
			name:   "payload type incompatible",
			d:      newDrone(t, "drone-1", 47.0, 8.0, 90, withPayloadType("FOOD")),
			reason: "Drone payload type incompatible",
		},
		{
			name:   "ANY payload type is compatible",
			d:      newDrone(t, "drone-1", 47.0, 8.0, 90, withPayloadType("ANY")),
			reason: "",
		},
		{
			name:   "pickup outside the service area",
			d:      newDrone(t, "drone-1", 47.0, 8.0, 90, withServiceArea(48, 9, 49, 10)),
			reason: "Drone service area mismatch",
		},
		{
			name:   "pickup on the service area border passes",
			d:      newDrone(t, "drone-1", 47.0, 8.0, 90, withServiceArea(47, 8, 49, 10)),
			reason: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.reason, engine.IncompatibilityReason(o, tt.d))
		})
	}
}

func TestDispatchEngine_SelectDrone(t *testing.T) {
	engine := services.NewDispatchEngine(services.DefaultDispatchConfig())

	t.Run("prefers the closer drone", func(t *testing.T) {
		o := newDispatchOrder(t)
		far := newDrone(t, "drone-far", 48.0, 8.0, 100)
		near := newDrone(t, "drone-near", 47.01, 8.0, 50)

		best, err := engine.SelectDrone(o, []drone.Telemetry{far, near}, nil)

		require.NoError(t, err)
		assert.Equal(t, "drone-near", best.DroneID())
	})

	t.Run("battery sways similar distances", func(t *testing.T) {
		// 0.001 deg latitude is ~0.11 km; a full battery outweighs it
		// under the default weights (0.2 per 100%).
		o := newDispatchOrder(t)
		close := newDrone(t, "drone-close", 47.001, 8.0, 40)
		charged := newDrone(t, "drone-charged", 47.002, 8.0, 100)

		best, err := engine.SelectDrone(o, []drone.Telemetry{close, charged}, nil)

		require.NoError(t, err)
		assert.Equal(t, "drone-charged", best.DroneID())
	})

	t.Run("exact tie breaks toward the higher battery", func(t *testing.T) {
		o := newDispatchOrder(t)
		tied := services.NewDispatchEngine(services.DispatchConfig{
			MinBatteryPct:  30,
			DistanceWeight: 0,
			BatteryWeight:  0,
		})
		a := newDrone(t, "drone-a", 47.0, 8.0, 60)
		b := newDrone(t, "drone-b", 48.0, 8.0, 80)

		best, err := tied.SelectDrone(o, []drone.Telemetry{a, b}, nil)

		require.NoError(t, err)
		assert.Equal(t, "drone-b", best.DroneID())
	})

	t.Run("full tie breaks toward the smaller drone id", func(t *testing.T) {
		o := newDispatchOrder(t)
		tied := services.NewDispatchEngine(services.DispatchConfig{
			MinBatteryPct:  30,
			DistanceWeight: 0,
			BatteryWeight:  0,
		})
		b := newDrone(t, "drone-b", 47.0, 8.0, 60)
		a := newDrone(t, "drone-a", 48.0, 8.0, 60)

		best, err := tied.SelectDrone(o, []drone.Telemetry{b, a}, nil)

		require.NoError(t, err)
		assert.Equal(t, "drone-a", best.DroneID())
	})

	t.Run("skips drones already used this cycle", func(t *testing.T) {
		o := newDispatchOrder(t)
		near := newDrone(t, "drone-near", 47.0, 8.0, 100)
		far := newDrone(t, "drone-far", 47.5, 8.0, 100)

		best, err := engine.SelectDrone(
			o, []drone.Telemetry{near, far}, map[string]bool{"drone-near": true})

		require.NoError(t, err)
		assert.Equal(t, "drone-far", best.DroneID())
	})

	t.Run("empty fleet yields no compatible drone", func(t *testing.T) {
		o := newDispatchOrder(t)

		_, err := engine.SelectDrone(o, nil, nil)

		require.ErrorIs(t, err, services.ErrNoCompatibleDrone)
	})

	t.Run("all incompatible yields no compatible drone", func(t *testing.T) {
		o := newDispatchOrder(t)
		low := newDrone(t, "drone-low", 47.0, 8.0, 10)
		off := newDrone(t, "drone-off", 47.0, 8.0, 90, unavailable())

		_, err := engine.SelectDrone(o, []drone.Telemetry{low, off}, nil)

		require.ErrorIs(t, err, services.ErrNoCompatibleDrone)
	})
}

func TestDispatchEngine_PrepareForAssignment(t *testing.T) {
	engine := services.NewDispatchEngine(services.DefaultDispatchConfig())

	t.Run("advances CREATED through VALIDATED and QUEUED", func(t *testing.T) {
		o := newDispatchOrder(t)

		traversed, err := engine.PrepareForAssignment(o)

		require.NoError(t, err)
		assert.Equal(t, []order.Status{order.Validated, order.Queued}, traversed)
		assert.Equal(t, order.Queued, o.Status())
	})

	t.Run("advances VALIDATED through QUEUED only", func(t *testing.T) {
		o := newDispatchOrder(t)
		require.NoError(t, o.TransitionTo(order.Validated))

		traversed, err := engine.PrepareForAssignment(o)

		require.NoError(t, err)
		assert.Equal(t, []order.Status{order.Queued}, traversed)
	})

	t.Run("QUEUED order traverses nothing", func(t *testing.T) {
		o := newDispatchOrder(t)
		require.NoError(t, o.TransitionTo(order.Validated))
		require.NoError(t, o.TransitionTo(order.Queued))

		traversed, err := engine.PrepareForAssignment(o)

		require.NoError(t, err)
		assert.Empty(t, traversed)
		assert.Equal(t, order.Queued, o.Status())
	})

	t.Run("non-dispatchable order conflicts", func(t *testing.T) {
		o := newDispatchOrder(t)
		require.NoError(t, o.TransitionTo(order.Canceled))

		_, err := engine.PrepareForAssignment(o)

		require.ErrorIs(t, err, errs.ErrConflict)
	})
}

func TestDispatchEngine_Assign(t *testing.T) {
	engine := services.NewDispatchEngine(services.DefaultDispatchConfig())

	t.Run("creates an active job and moves the order to ASSIGNED", func(t *testing.T) {
		o := newDispatchOrder(t)
		_, err := engine.PrepareForAssignment(o)
		require.NoError(t, err)

		assignment, err := engine.Assign(o, "drone-1")

		require.NoError(t, err)
		assert.Equal(t, order.Assigned, o.Status())
		assert.Equal(t, "drone-1", assignment.AssignedDroneID())
		assert.True(t, assignment.OrderID().IsEqual(o.ID()))
	})

	t.Run("rejects assignment of a CREATED order", func(t *testing.T) {
		o := newDispatchOrder(t)

		_, err := engine.Assign(o, "drone-1")

		require.ErrorIs(t, err, errs.ErrConflict)
		assert.Equal(t, order.Created, o.Status())
	})
}
