package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dronedelivery/internal/core/application/usecases/commands"
	"dronedelivery/internal/core/domain/model/drone"
	"dronedelivery/internal/core/domain/model/job"
	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/mission"
	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/core/domain/model/pod"
	"dronedelivery/internal/core/ports"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByTrackingID(ctx context.Context, trackingID string) (*order.Order, error) {
	args := m.Called(ctx, trackingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetDispatchable(ctx context.Context, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockJobRepository struct{ mock.Mock }

func (m *MockJobRepository) Add(ctx context.Context, j *job.DeliveryJob) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockJobRepository) Update(ctx context.Context, j *job.DeliveryJob) error {
	args := m.Called(ctx, j)
	return args.Error(0)
}

func (m *MockJobRepository) Get(ctx context.Context, id kernel.UUID) (*job.DeliveryJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.DeliveryJob), args.Error(1)
}

func (m *MockJobRepository) GetActiveByOrderID(ctx context.Context, orderID kernel.UUID) (*job.DeliveryJob, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*job.DeliveryJob), args.Error(1)
}

type MockEventRepository struct{ mock.Mock }

func (m *MockEventRepository) Add(ctx context.Context, event *order.DeliveryEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepository) GetByOrderID(ctx context.Context, orderID kernel.UUID) ([]*order.DeliveryEvent, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.DeliveryEvent), args.Error(1)
}

type MockPodRepository struct{ mock.Mock }

func (m *MockPodRepository) Add(ctx context.Context, proof *pod.ProofOfDelivery) error {
	args := m.Called(ctx, proof)
	return args.Error(0)
}

func (m *MockPodRepository) GetLatestByOrderID(ctx context.Context, orderID kernel.UUID) (*pod.ProofOfDelivery, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pod.ProofOfDelivery), args.Error(1)
}

// MockUoW satisfies every narrowed unit of work interface in one type.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) JobRepository() ports.JobRepository {
	args := m.Called()
	return args.Get(0).(ports.JobRepository)
}

func (m *MockUoW) EventRepository() ports.EventRepository {
	args := m.Called()
	return args.Get(0).(ports.EventRepository)
}

func (m *MockUoW) ProofOfDeliveryRepository() ports.ProofOfDeliveryRepository {
	args := m.Called()
	return args.Get(0).(ports.ProofOfDeliveryRepository)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW { return f() }

type FuncDispatchUoWFactory func() commands.DispatchUoW

func (f FuncDispatchUoWFactory) Create() commands.DispatchUoW { return f() }

type FuncPodUoWFactory func() commands.PodUoW

func (f FuncPodUoWFactory) Create() commands.PodUoW { return f() }

type MockFleetClient struct{ mock.Mock }

func (m *MockFleetClient) GetLatestTelemetry(ctx context.Context) ([]drone.Telemetry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]drone.Telemetry), args.Error(1)
}

type MockMissionPublisher struct{ mock.Mock }

func (m *MockMissionPublisher) PublishIntent(ctx context.Context, intent mission.Intent) error {
	args := m.Called(ctx, intent)
	return args.Error(0)
}

// newTestOrder builds an order restored into the given status. Pickup sits in
// central Zurich.
func newTestOrder(t *testing.T, status order.Status) *order.Order {
	t.Helper()

	pickup, err := kernel.NewGeoPoint(47.3769, 8.5417)
	require.NoError(t, err)
	dropoff, err := kernel.NewGeoPoint(47.4, 8.6)
	require.NoError(t, err)

	now := time.Now().UTC()
	restored, err := order.RestoreOrder(
		kernel.NewUUID(), "TRACK12345", "Jane Doe", "+41790000000",
		pickup, dropoff, nil, 2.5, "MEDICAL", order.PriorityMedical,
		status, now, now,
	)
	require.NoError(t, err)
	return restored
}

// newTestDrone builds an available drone snapshot at the given position.
func newTestDrone(t *testing.T, droneID string, lat, lng, battery float64) drone.Telemetry {
	t.Helper()

	position, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)

	telemetry, err := drone.NewTelemetry(droneID, position, battery, true, nil, "", nil)
	require.NoError(t, err)
	return telemetry
}

// eventWith matches an audit event by type and message.
func eventWith(eventType, message string) any {
	return mock.MatchedBy(func(event *order.DeliveryEvent) bool {
		return event.EventType() == eventType && event.Message() == message
	})
}
