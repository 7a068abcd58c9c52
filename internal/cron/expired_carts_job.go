package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/greencartlabs/greencart-backend/pkg/logger"
	"github.com/greencartlabs/greencart-backend/pkg/metrics"
)

const (
	defaultReapBatchSize = 500
	maxReapBatches       = 100
)

type expiredCartReaper interface {
	DeleteExpiredGuestCarts(ctx context.Context, before time.Time, limit int) (int64, error)
}

// ExpiredCartsJobParams configure the guest cart reaper.
type ExpiredCartsJobParams struct {
	Logger    *logger.Logger
	Carts     expiredCartReaper
	Metrics   *metrics.CronJobMetrics
	BatchSize int
}

type expiredCartsJob struct {
	logg      *logger.Logger
	carts     expiredCartReaper
	metrics   *metrics.CronJobMetrics
	batchSize int
	now       func() time.Time
}

// NewExpiredCartsJob builds the cron job that deletes expired guest carts in
// bounded batches.
func NewExpiredCartsJob(params ExpiredCartsJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultReapBatchSize
	}
	return &expiredCartsJob{
		logg:      params.Logger,
		carts:     params.Carts,
		metrics:   params.Metrics,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

func (j *expiredCartsJob) Name() string { return "expired-carts" }

// Run deletes in batches so a huge backlog cannot hold one delete statement
// open for minutes. The batch cap bounds a single cycle; leftovers wait for
// the next tick.
func (j *expiredCartsJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC()
	var total int64
	for i := 0; i < maxReapBatches; i++ {
		deleted, err := j.carts.DeleteExpiredGuestCarts(ctx, cutoff, j.batchSize)
		if err != nil {
			j.metrics.AddReaped(j.Name(), total)
			return fmt.Errorf("delete expired guest carts: %w", err)
		}
		total += deleted
		if deleted < int64(j.batchSize) {
			break
		}
	}
	j.metrics.AddReaped(j.Name(), total)
	logCtx := j.logg.WithField(ctx, "count", total)
	j.logg.Info(logCtx, "expired guest cart sweep complete")
	return nil
}
