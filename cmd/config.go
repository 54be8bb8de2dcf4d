package cmd

import "time"

// Config carries every externally supplied setting of the service.
type Config struct {
	HTTPPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	FleetBaseURL string

	KafkaBrokers            []string
	KafkaMissionIntentTopic string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret    string
	PodOTPSecret string

	OrderCreateMaxRequests int
	OrderCreateWindow      time.Duration
	TrackingMaxRequests    int
	TrackingWindow         time.Duration

	IdempotencyTTL          time.Duration
	IdempotencyMaxKeyLength int

	DispatchInterval   time.Duration
	MaxAssignments     int
	MinBatteryPct      float64
	DistanceWeight     float64
	BatteryWeight      float64
	IdempotencyCleanup time.Duration

	MissionBatteryMinPct float64
	MissionServiceAreaID string
}
