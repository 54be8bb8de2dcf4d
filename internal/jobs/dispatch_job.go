// Package jobs provides the scheduled background tasks of the service,
// implemented as cron-based jobs using github.com/robfig/cron/v3.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"dronedelivery/internal/core/application/usecases/commands"
	"dronedelivery/internal/pkg/metrics"
)

// DefaultDispatchInterval is how often the dispatch job runs when no interval
// is configured.
const DefaultDispatchInterval = 10 * time.Second

// DispatchJob periodically runs the dispatch engine over the waiting orders.
// An empty backlog is a normal outcome, not an error.
type DispatchJob struct {
	handler        commands.AutoDispatchCommandHandler
	cron           *cron.Cron
	logger         *slog.Logger
	interval       time.Duration
	maxAssignments int
}

// NewDispatchJob creates the scheduled dispatch job. Non-positive interval
// and maxAssignments fall back to the defaults.
func NewDispatchJob(
	handler commands.AutoDispatchCommandHandler,
	logger *slog.Logger,
	interval time.Duration,
	maxAssignments int,
) *DispatchJob {
	if interval <= 0 {
		interval = DefaultDispatchInterval
	}
	if maxAssignments <= 0 {
		maxAssignments = 1
	}

	return &DispatchJob{
		handler:        handler,
		cron:           cron.New(cron.WithSeconds()),
		logger:         logger.With("component", "dispatch_job"),
		interval:       interval,
		maxAssignments: maxAssignments,
	}
}

// Start schedules the dispatch job.
func (j *DispatchJob) Start() error {
	_, err := j.cron.AddFunc("@every "+j.interval.String(), j.runOnce)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Dispatch job started",
		"interval", j.interval.String(), "max_assignments", j.maxAssignments)
	return nil
}

// Stop stops the dispatch job.
func (j *DispatchJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Dispatch job stopped")
}

func (j *DispatchJob) runOnce() {
	ctx := context.Background()

	cmd, err := commands.NewAutoDispatchCommand(j.maxAssignments)
	if err != nil {
		j.logger.ErrorContext(ctx, "Dispatch command not constructed", "error", err)
		return
	}

	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		metrics.DispatchRunsTotal.WithLabelValues("error").Inc()
		j.logger.ErrorContext(ctx, "Dispatch run failed", "error", err)
		return
	}

	if len(result.Assignments) == 0 {
		metrics.DispatchRunsTotal.WithLabelValues("idle").Inc()
		return
	}

	metrics.DispatchRunsTotal.WithLabelValues("assigned").Inc()
	j.logger.InfoContext(ctx, "Dispatch run completed",
		"examined", result.Examined, "assigned", len(result.Assignments))
}
