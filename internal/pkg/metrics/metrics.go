// Package metrics holds the Prometheus instruments of the delivery service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dronedelivery_orders_created_total",
		Help: "Total number of delivery orders successfully created.",
	})

	OrdersAssignedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dronedelivery_orders_assigned_total",
		Help: "Total number of orders assigned to a drone, by assignment reason.",
	},
		[]string{"reason"},
	)

	MissionIntentsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dronedelivery_mission_intents_submitted_total",
		Help: "Total number of mission intents published to the GCS bridge.",
	})

	RateLimitRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dronedelivery_rate_limit_rejections_total",
		Help: "Total number of requests rejected by the rate limiter, by quota.",
	},
		[]string{"quota"},
	)

	IdempotentReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dronedelivery_idempotent_replays_total",
		Help: "Total number of requests answered from a stored idempotency record.",
	})

	IdempotencyConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dronedelivery_idempotency_conflicts_total",
		Help: "Total number of idempotency keys reused with a different payload.",
	})

	DispatchRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dronedelivery_dispatch_runs_total",
		Help: "Total number of dispatch engine runs, by outcome.",
	},
		[]string{"outcome"},
	)
)
