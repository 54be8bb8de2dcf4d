package cmd

import (
	"log/slog"

	"gorm.io/gorm"

	httpadapter "dronedelivery/internal/adapters/in/http"
	"dronedelivery/internal/adapters/out/fleet"
	"dronedelivery/internal/adapters/out/gcsbridge"
	"dronedelivery/internal/adapters/out/postgres"
	"dronedelivery/internal/adapters/out/postgres/idemrepo"
	redisadapter "dronedelivery/internal/adapters/out/redis"
	"dronedelivery/internal/core/application/usecases/commands"
	"dronedelivery/internal/core/application/usecases/queries"
	"dronedelivery/internal/core/domain/model/mission"
	"dronedelivery/internal/core/domain/services"
	"dronedelivery/internal/jobs"
	"dronedelivery/internal/pkg/auth"
	"dronedelivery/internal/pkg/idempotency"
	"dronedelivery/internal/pkg/ratelimit"
	"dronedelivery/internal/pkg/retry"
)

// CompositionRoot wires the application graph: the database-backed unit of
// work, the outbound integration clients, and every use case handler the
// HTTP server and the background jobs depend on.
type CompositionRoot struct {
	config Config
	gormDB *gorm.DB
	logger *slog.Logger

	uowFactory  postgres.GormUnitOfWorkFactory
	fleetClient *fleet.Client
	publisher   *gcsbridge.Publisher
	limiter     ratelimit.Limiter
	idemStore   idempotency.Store
	engine      services.DispatchEngine
}

// NewCompositionRoot builds the shared infrastructure once. Outbound clients
// that cannot be constructed from the configuration are a startup failure.
func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	fleetClient, err := fleet.NewClient(config.FleetBaseURL, retry.DefaultPolicy())
	if err != nil {
		return nil, err
	}

	publisher, err := gcsbridge.NewPublisher(
		config.KafkaBrokers, config.KafkaMissionIntentTopic, retry.DefaultPolicy())
	if err != nil {
		return nil, err
	}

	limiter, err := buildLimiter(config, logger)
	if err != nil {
		return nil, err
	}

	engineConfig := services.DefaultDispatchConfig()
	if config.MinBatteryPct > 0 {
		engineConfig.MinBatteryPct = config.MinBatteryPct
	}
	if config.DistanceWeight > 0 {
		engineConfig.DistanceWeight = config.DistanceWeight
	}
	if config.BatteryWeight > 0 {
		engineConfig.BatteryWeight = config.BatteryWeight
	}

	return &CompositionRoot{
		config:      config,
		gormDB:      gormDB,
		logger:      logger,
		uowFactory:  *postgres.NewGormUnitOfWorkFactory(gormDB),
		fleetClient: fleetClient,
		publisher:   publisher,
		limiter:     limiter,
		idemStore:   idemrepo.NewGormStore(gormDB),
		engine:      services.NewDispatchEngine(engineConfig),
	}, nil
}

// buildLimiter prefers the Redis fixed-window limiter; without a configured
// Redis address the process falls back to per-instance in-memory limiting.
func buildLimiter(config Config, logger *slog.Logger) (ratelimit.Limiter, error) {
	if config.RedisAddr == "" {
		logger.Warn("No Redis address configured, rate limits are per instance")
		return ratelimit.NewInMemoryLimiter(), nil
	}

	client, err := redisadapter.NewClient(
		config.RedisAddr, config.RedisPassword, config.RedisDB, 0)
	if err != nil {
		return nil, err
	}
	return redisadapter.NewLimiter(client, "ratelimit")
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	return commands.NewTransitionOrderCommandHandler(c.dispatchUoWFactory())
}

func (c *CompositionRoot) CreateAutoDispatchCommandHandler() commands.AutoDispatchCommandHandler {
	return commands.NewAutoDispatchCommandHandler(c.dispatchUoWFactory(), c.fleetClient, c.engine)
}

func (c *CompositionRoot) CreateManualAssignCommandHandler() commands.ManualAssignCommandHandler {
	return commands.NewManualAssignCommandHandler(c.dispatchUoWFactory(), c.fleetClient, c.engine)
}

func (c *CompositionRoot) CreateSubmitMissionCommandHandler() commands.SubmitMissionCommandHandler {
	constraints := mission.Constraints{
		BatteryMinPct: c.config.MissionBatteryMinPct,
		ServiceAreaID: c.config.MissionServiceAreaID,
	}
	return commands.NewSubmitMissionCommandHandler(c.dispatchUoWFactory(), c.publisher, constraints)
}

func (c *CompositionRoot) CreateCreatePodCommandHandler() commands.CreatePodCommandHandler {
	var f commands.PodUoWFactory = FuncPodUoWFactory(func() commands.PodUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreatePodCommandHandler(f, c.config.PodOTPSecret)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderEventsQueryHandler() queries.GetOrderEventsQueryHandler {
	return queries.NewGetOrderEventsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetTrackingViewQueryHandler() queries.GetTrackingViewQueryHandler {
	return queries.NewGetTrackingViewQueryHandler(c.gormDB)
}

// CreateHTTPServer bundles every handler behind the inbound HTTP adapter.
func (c *CompositionRoot) CreateHTTPServer() *httpadapter.Server {
	handlers := httpadapter.Handlers{
		CreateOrder:     c.CreateCreateOrderCommandHandler(),
		CancelOrder:     c.CreateCancelOrderCommandHandler(),
		TransitionOrder: c.CreateTransitionOrderCommandHandler(),
		AutoDispatch:    c.CreateAutoDispatchCommandHandler(),
		ManualAssign:    c.CreateManualAssignCommandHandler(),
		SubmitMission:   c.CreateSubmitMissionCommandHandler(),
		CreatePod:       c.CreateCreatePodCommandHandler(),
		GetOrder:        c.CreateGetOrderQueryHandler(),
		ListOrders:      c.CreateListOrdersQueryHandler(),
		GetOrderEvents:  c.CreateGetOrderEventsQueryHandler(),
		GetTrackingView: c.CreateGetTrackingViewQueryHandler(),
	}
	return httpadapter.NewServer(handlers, c.config.MaxAssignments)
}

// CreateIdempotencyGuard creates the request deduplication guard over the
// database-backed store.
func (c *CompositionRoot) CreateIdempotencyGuard() (*idempotency.Guard, error) {
	return idempotency.NewGuard(
		c.idemStore, c.config.IdempotencyTTL, c.config.IdempotencyMaxKeyLength)
}

// CreateVerifier creates the bearer token verifier.
func (c *CompositionRoot) CreateVerifier() (*auth.Verifier, error) {
	return auth.NewVerifier(c.config.JWTSecret)
}

// Limiter exposes the shared rate limiter.
func (c *CompositionRoot) Limiter() ratelimit.Limiter {
	return c.limiter
}

// CreateJobManager wires the scheduled background jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateAutoDispatchCommandHandler(),
		c.idemStore,
		c.logger,
		c.config.DispatchInterval,
		c.config.MaxAssignments,
		c.config.IdempotencyCleanup,
	)
}

// Close releases the outbound clients owned by the root.
func (c *CompositionRoot) Close() error {
	return c.publisher.Close()
}

func (c *CompositionRoot) dispatchUoWFactory() commands.DispatchUoWFactory {
	return FuncDispatchUoWFactory(func() commands.DispatchUoW {
		return c.uowFactory.Create()
	})
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncDispatchUoWFactory func() commands.DispatchUoW

func (f FuncDispatchUoWFactory) Create() commands.DispatchUoW {
	return f()
}

type FuncPodUoWFactory func() commands.PodUoW

func (f FuncPodUoWFactory) Create() commands.PodUoW {
	return f()
}
