package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"dronedelivery/internal/pkg/idempotency"
)

// DefaultCleanupInterval is how often expired idempotency records are purged
// when no interval is configured.
const DefaultCleanupInterval = time.Hour

// IdempotencyCleanupJob periodically deletes expired idempotency records so
// the store does not grow without bound between requests.
type IdempotencyCleanupJob struct {
	store    idempotency.Store
	cron     *cron.Cron
	logger   *slog.Logger
	interval time.Duration
}

// NewIdempotencyCleanupJob creates the scheduled cleanup job. A non-positive
// interval falls back to the default.
func NewIdempotencyCleanupJob(
	store idempotency.Store,
	logger *slog.Logger,
	interval time.Duration,
) *IdempotencyCleanupJob {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}

	return &IdempotencyCleanupJob{
		store:    store,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "idempotency_cleanup_job"),
		interval: interval,
	}
}

// Start schedules the cleanup job.
func (j *IdempotencyCleanupJob) Start() error {
	_, err := j.cron.AddFunc("@every "+j.interval.String(), j.runOnce)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Idempotency cleanup job started",
		"interval", j.interval.String())
	return nil
}

// Stop stops the cleanup job.
func (j *IdempotencyCleanupJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Idempotency cleanup job stopped")
}

func (j *IdempotencyCleanupJob) runOnce() {
	ctx := context.Background()

	deleted, err := j.store.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		j.logger.ErrorContext(ctx, "Idempotency cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		j.logger.InfoContext(ctx, "Expired idempotency records purged", "deleted", deleted)
	}
}
