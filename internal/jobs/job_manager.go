package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"dronedelivery/internal/core/application/usecases/commands"
	"dronedelivery/internal/pkg/idempotency"
)

// JobManager coordinates the scheduled jobs of the application behind a
// single start/stop surface.
type JobManager struct {
	dispatchJob *DispatchJob
	cleanupJob  *IdempotencyCleanupJob
}

// NewJobManager wires up all background jobs from their dependencies.
func NewJobManager(
	dispatchHandler commands.AutoDispatchCommandHandler,
	idempotencyStore idempotency.Store,
	logger *slog.Logger,
	dispatchInterval time.Duration,
	maxAssignments int,
	cleanupInterval time.Duration,
) *JobManager {
	return &JobManager{
		dispatchJob: NewDispatchJob(dispatchHandler, logger, dispatchInterval, maxAssignments),
		cleanupJob:  NewIdempotencyCleanupJob(idempotencyStore, logger, cleanupInterval),
	}
}

// StartAll starts all scheduled jobs. When a later job fails to start, the
// already started ones are stopped again.
func (jm *JobManager) StartAll() error {
	if err := jm.dispatchJob.Start(); err != nil {
		return fmt.Errorf("failed to start dispatch job: %w", err)
	}

	if err := jm.cleanupJob.Start(); err != nil {
		jm.dispatchJob.Stop()
		return fmt.Errorf("failed to start idempotency cleanup job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.cleanupJob.Stop()
	jm.dispatchJob.Stop()
}
