package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"dronedelivery/cmd"
	"dronedelivery/internal/adapters/in/http"
	"dronedelivery/internal/adapters/out/postgres/eventrepo"
	"dronedelivery/internal/adapters/out/postgres/idemrepo"
	"dronedelivery/internal/adapters/out/postgres/jobrepo"
	"dronedelivery/internal/adapters/out/postgres/orderrepo"
	"dronedelivery/internal/adapters/out/postgres/podrepo"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config := getConfigs()

	gormDB, err := openDatabase(config)
	if err != nil {
		logger.Error("Database connection failed", "error", err)
		os.Exit(1)
	}

	root, err := cmd.NewCompositionRoot(config, gormDB, logger)
	if err != nil {
		logger.Error("Application wiring failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if closeErr := root.Close(); closeErr != nil {
			logger.Error("Shutdown cleanup failed", "error", closeErr)
		}
	}()

	jobManager := root.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		logger.Error("Background jobs failed to start", "error", err)
		os.Exit(1)
	}
	defer jobManager.StopAll()

	startWebServer(root, config, logger)
}

func getConfigs() cmd.Config {
	// Absent .env is fine in containerized deployments where the
	// environment is injected directly.
	_ = godotenv.Load(".env")

	return cmd.Config{
		HTTPPort: envString("HTTP_PORT", "8080"),

		DBHost:     envString("DB_HOST", "localhost"),
		DBPort:     envString("DB_PORT", "5432"),
		DBUser:     envString("DB_USER", "postgres"),
		DBPassword: envString("DB_PASSWORD", ""),
		DBName:     envString("DB_NAME", "dronedelivery"),
		DBSslMode:  envString("DB_SSLMODE", "disable"),

		FleetBaseURL: envString("FLEET_BASE_URL", "http://localhost:9000"),

		KafkaBrokers:            strings.Split(envString("KAFKA_BROKERS", "localhost:9092"), ","),
		KafkaMissionIntentTopic: envString("KAFKA_MISSION_INTENT_TOPIC", "mission.intents"),

		RedisAddr:     envString("REDIS_ADDR", ""),
		RedisPassword: envString("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),

		JWTSecret:    envString("JWT_SECRET", ""),
		PodOTPSecret: envString("POD_OTP_SECRET", ""),

		OrderCreateMaxRequests: envInt("ORDER_CREATE_MAX_REQUESTS", 5),
		OrderCreateWindow:      envDuration("ORDER_CREATE_WINDOW", 60*time.Second),
		TrackingMaxRequests:    envInt("TRACKING_MAX_REQUESTS", 10),
		TrackingWindow:         envDuration("TRACKING_WINDOW", 60*time.Second),

		IdempotencyTTL:          envDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		IdempotencyMaxKeyLength: envInt("IDEMPOTENCY_MAX_KEY_LENGTH", 255),

		DispatchInterval:   envDuration("DISPATCH_INTERVAL", 10*time.Second),
		MaxAssignments:     envInt("DISPATCH_MAX_ASSIGNMENTS", 1),
		MinBatteryPct:      envFloat("DISPATCH_MIN_BATTERY_PCT", 30),
		DistanceWeight:     envFloat("DISPATCH_DISTANCE_WEIGHT", 1.0),
		BatteryWeight:      envFloat("DISPATCH_BATTERY_WEIGHT", 0.2),
		IdempotencyCleanup: envDuration("IDEMPOTENCY_CLEANUP_INTERVAL", time.Hour),

		MissionBatteryMinPct: envFloat("MISSION_BATTERY_MIN_PCT", 30),
		MissionServiceAreaID: envString("MISSION_SERVICE_AREA_ID", "default"),
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func envFloat(key string, fallback float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return fallback
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}

func openDatabase(config cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.DBHost, config.DBPort, config.DBUser,
		config.DBPassword, config.DBName, config.DBSslMode)

	gormDB, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&eventrepo.EventDTO{},
		&jobrepo.JobDTO{},
		&podrepo.PodDTO{},
		&idemrepo.RecordDTO{},
	)
	if err != nil {
		return nil, err
	}
	return gormDB, nil
}

func startWebServer(root *cmd.CompositionRoot, config cmd.Config, logger *slog.Logger) {
	verifier, err := root.CreateVerifier()
	if err != nil {
		logger.Error("Token verifier not configured", "error", err)
		os.Exit(1)
	}

	guard, err := root.CreateIdempotencyGuard()
	if err != nil {
		logger.Error("Idempotency guard not configured", "error", err)
		os.Exit(1)
	}

	server := root.CreateHTTPServer()

	e := echo.New()
	e.HideBanner = true
	server.RegisterRoutes(e, verifier, root.Limiter(), guard,
		http.Quota{
			Name:        "order_create",
			MaxRequests: config.OrderCreateMaxRequests,
			Window:      config.OrderCreateWindow,
		},
		http.Quota{
			Name:        "tracking",
			MaxRequests: config.TrackingMaxRequests,
			Window:      config.TrackingWindow,
			FailOpen:    true,
		},
	)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		logger.Info("Shutdown signal received")
		_ = e.Close()
	}()

	if err := e.Start(fmt.Sprintf("0.0.0.0:%s", config.HTTPPort)); err != nil {
		logger.Info("HTTP server stopped", "error", err)
	}
}
