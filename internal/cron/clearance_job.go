package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/vendorhub/ledger-backend/pkg/logger"
	"github.com/vendorhub/ledger-backend/pkg/metrics"
)

const defaultSweepBatchSize = 500

// clearanceSweeper is the slice of the ledger service the job needs.
type clearanceSweeper interface {
	ClearDuePending(ctx context.Context, now time.Time, batchSize int) (int, error)
}

// ClearanceJobParams configure the clearance sweep job.
type ClearanceJobParams struct {
	Logger    *logger.Logger
	Ledger    clearanceSweeper
	Metrics   *metrics.CronJobMetrics
	BatchSize int
}

// NewClearanceJob builds the job that promotes pending ledger entries whose
// clearance hold has expired.
func NewClearanceJob(params ClearanceJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &clearanceJob{
		logg:      params.Logger,
		ledger:    params.Ledger,
		metrics:   params.Metrics,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type clearanceJob struct {
	logg      *logger.Logger
	ledger    clearanceSweeper
	metrics   *metrics.CronJobMetrics
	batchSize int
	now       func() time.Time
}

func (j *clearanceJob) Name() string { return "clearance-sweep" }

func (j *clearanceJob) Run(ctx context.Context) error {
	now := j.now().UTC()

	// Sweep in batches until a batch comes back short, so a backlog larger
	// than one batch still drains within a single run.
	total := 0
	for {
		cleared, err := j.ledger.ClearDuePending(ctx, now, j.batchSize)
		total += cleared
		if err != nil {
			j.metrics.AddSwept(j.Name(), total)
			return fmt.Errorf("clearance sweep: %w", err)
		}
		if cleared < j.batchSize {
			break
		}
	}

	j.metrics.AddSwept(j.Name(), total)
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"swept_at":        now,
		"entries_cleared": total,
	})
	j.logg.Info(logCtx, "clearance sweep complete")
	return nil
}
