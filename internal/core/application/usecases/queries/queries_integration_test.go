package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"dronedelivery/internal/adapters/out/postgres/eventrepo"
	"dronedelivery/internal/adapters/out/postgres/orderrepo"
	"dronedelivery/internal/adapters/out/postgres/podrepo"
	"dronedelivery/internal/core/application/usecases/queries"
	"dronedelivery/internal/core/domain/model/kernel"
	"dronedelivery/internal/core/domain/model/order"
	"dronedelivery/internal/core/domain/model/pod"
	"dronedelivery/internal/pkg/errs"
)

// nopTracker discards aggregate tracking; the read side never joins a unit of
// work.
type nopTracker struct{}

func (nopTracker) TrackAggregate(kernel.UUID, any) {}

// QueriesIntegrationTestSuite verifies the read handlers against a real
// PostgreSQL container seeded through the write-side repositories.
type QueriesIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	orderRepo *orderrepo.GormOrderRepository
	eventRepo *eventrepo.GormEventRepository
	podRepo   *podrepo.GormPodRepository
}

func (suite *QueriesIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&orderrepo.OrderDTO{}, &eventrepo.EventDTO{}, &podrepo.PodDTO{},
	))

	suite.orderRepo = orderrepo.NewGormOrderRepository(db, nopTracker{})
	suite.eventRepo = eventrepo.NewGormEventRepository(db)
	suite.podRepo = podrepo.NewGormPodRepository(db)
}

func (suite *QueriesIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *QueriesIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(
		suite.db.Exec("TRUNCATE TABLE orders, delivery_events, proof_of_deliveries").Error)
}

func (suite *QueriesIntegrationTestSuite) TestGetOrder() {
	ctx := context.Background()
	seeded := suite.seedOrderAt(ctx, order.Queued, time.Now().UTC())

	suite.Run("existing order round-trips", func() {
		query, err := queries.NewGetOrderQuery(seeded.ID())
		suite.Require().NoError(err)

		handler := queries.NewGetOrderQueryHandler(suite.db)
		detail, err := handler.Handle(ctx, query)

		suite.Require().NoError(err)
		suite.True(detail.ID.IsEqual(seeded.ID()))
		suite.Equal(seeded.PublicTrackingID(), detail.PublicTrackingID)
		suite.Equal("QUEUED", detail.Status)
		suite.Equal(seeded.Pickup().Lat(), detail.Pickup.Lat)
		suite.Equal(seeded.Dropoff().Lng(), detail.Dropoff.Lng)
		suite.Equal("MEDICAL", detail.PayloadType)
	})

	suite.Run("unknown order is not found", func() {
		query, err := queries.NewGetOrderQuery(kernel.NewUUID())
		suite.Require().NoError(err)

		handler := queries.NewGetOrderQueryHandler(suite.db)
		_, err = handler.Handle(ctx, query)

		suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	})
}

func (suite *QueriesIntegrationTestSuite) TestListOrders() {
	ctx := context.Background()
	now := time.Now().UTC()
	oldest := suite.seedOrderAt(ctx, order.Queued, now.Add(-3*time.Hour))
	middle := suite.seedOrderAt(ctx, order.Created, now.Add(-2*time.Hour))
	newest := suite.seedOrderAt(ctx, order.Delivered, now.Add(-time.Hour))

	handler := queries.NewListOrdersQueryHandler(suite.db)

	suite.Run("newest first without a filter", func() {
		query, err := queries.NewListOrdersQuery(1, 10, "")
		suite.Require().NoError(err)

		page, err := handler.Handle(ctx, query)

		suite.Require().NoError(err)
		suite.Equal(int64(3), page.Total)
		suite.Require().Len(page.Items, 3)
		suite.True(page.Items[0].ID.IsEqual(newest.ID()))
		suite.True(page.Items[1].ID.IsEqual(middle.ID()))
		suite.True(page.Items[2].ID.IsEqual(oldest.ID()))
	})

	suite.Run("status filter narrows the page", func() {
		query, err := queries.NewListOrdersQuery(1, 10, "QUEUED")
		suite.Require().NoError(err)

		page, err := handler.Handle(ctx, query)

		suite.Require().NoError(err)
		suite.Equal(int64(1), page.Total)
		suite.Require().Len(page.Items, 1)
		suite.True(page.Items[0].ID.IsEqual(oldest.ID()))
	})

	suite.Run("unknown status filter matches nothing", func() {
		query, err := queries.NewListOrdersQuery(1, 10, "TELEPORTED")
		suite.Require().NoError(err)

		page, err := handler.Handle(ctx, query)

		suite.Require().NoError(err)
		suite.Equal(int64(0), page.Total)
		suite.Empty(page.Items)
	})

	suite.Run("pagination walks the set", func() {
		query, err := queries.NewListOrdersQuery(2, 2, "")
		suite.Require().NoError(err)

		page, err := handler.Handle(ctx, query)

		suite.Require().NoError(err)
		suite.Equal(int64(3), page.Total)
		suite.Require().Len(page.Items, 1)
		suite.True(page.Items[0].ID.IsEqual(oldest.ID()))
	})
}

func (suite *QueriesIntegrationTestSuite) TestGetOrderEvents() {
	ctx := context.Background()
	seeded := suite.seedOrderAt(ctx, order.Assigned, time.Now().UTC())

	first, err := order.NewStatusEvent(seeded.ID(), order.Created, "Order created", nil)
	suite.Require().NoError(err)
	second, err := order.NewStatusEvent(seeded.ID(), order.Assigned, "Order assigned",
		map[string]any{"drone_id": "drone-1", "reason": "auto"})
	suite.Require().NoError(err)
	suite.Require().NoError(suite.eventRepo.Add(ctx, first))
	suite.Require().NoError(suite.eventRepo.Add(ctx, second))

	query, err := queries.NewGetOrderEventsQuery(seeded.ID())
	suite.Require().NoError(err)

	handler := queries.NewGetOrderEventsQueryHandler(suite.db)
	timeline, err := handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(timeline, 2)
	suite.Equal("CREATED", timeline[0].EventType)
	suite.Equal("ASSIGNED", timeline[1].EventType)
	suite.Equal("drone-1", timeline[1].Payload["drone_id"])
	suite.Equal("auto", timeline[1].Payload["reason"])
}

func (suite *QueriesIntegrationTestSuite) TestGetOrderEvents_EmptyTimeline() {
	ctx := context.Background()
	seeded := suite.seedOrderAt(ctx, order.Created, time.Now().UTC())

	query, err := queries.NewGetOrderEventsQuery(seeded.ID())
	suite.Require().NoError(err)

	handler := queries.NewGetOrderEventsQueryHandler(suite.db)
	timeline, err := handler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.NotNil(timeline)
	suite.Empty(timeline)
}

func (suite *QueriesIntegrationTestSuite) TestGetTrackingView() {
	ctx := context.Background()
	handler := queries.NewGetTrackingViewQueryHandler(suite.db)

	suite.Run("in-flight order has no pod summary", func() {
		seeded := suite.seedOrderAt(ctx, order.Enroute, time.Now().UTC())

		query, err := queries.NewGetTrackingViewQuery(seeded.PublicTrackingID())
		suite.Require().NoError(err)

		view, err := handler.Handle(ctx, query)

		suite.Require().NoError(err)
		suite.True(view.OrderID.IsEqual(seeded.ID()))
		suite.Equal("ENROUTE", view.Status)
		suite.Nil(view.PodSummary)
	})

	suite.Run("delivered order carries the proof summary", func() {
		seeded := suite.seedOrderAt(ctx, order.Delivered, time.Now().UTC())

		proof, err := pod.NewProofOfDelivery(
			seeded.ID(), pod.MethodPhoto, "https://pods.example/drop.jpg", "", "", "", "", nil)
		suite.Require().NoError(err)
		suite.Require().NoError(suite.podRepo.Add(ctx, proof))

		query, err := queries.NewGetTrackingViewQuery(seeded.PublicTrackingID())
		suite.Require().NoError(err)

		view, err := handler.Handle(ctx, query)

		suite.Require().NoError(err)
		suite.Equal("DELIVERED", view.Status)
		suite.Require().NotNil(view.PodSummary)
		suite.Equal("PHOTO", view.PodSummary.Method)
		suite.Equal("https://pods.example/drop.jpg", view.PodSummary.PhotoURL)
	})

	suite.Run("unknown tracking id is not found", func() {
		query, err := queries.NewGetTrackingViewQuery("NOSUCHID00")
		suite.Require().NoError(err)

		_, err = handler.Handle(ctx, query)

		suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	})
}

// seedOrderAt persists an order restored into the given status with a
// controlled creation time.
func (suite *QueriesIntegrationTestSuite) seedOrderAt(
	ctx context.Context, status order.Status, createdAt time.Time,
) *order.Order {
	pickup, err := kernel.NewGeoPoint(47.3769, 8.5417)
	suite.Require().NoError(err)
	dropoff, err := kernel.NewGeoPoint(47.4, 8.6)
	suite.Require().NoError(err)

	trackingID, err := order.NewTrackingID()
	suite.Require().NoError(err)

	restored, err := order.RestoreOrder(
		kernel.NewUUID(), trackingID, "Jane Doe", "+41790000000",
		pickup, dropoff, nil, 2.5, "MEDICAL", order.PriorityMedical,
		status, createdAt, createdAt,
	)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.orderRepo.Add(ctx, restored))
	return restored
}

func TestQueriesIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(QueriesIntegrationTestSuite))
}
