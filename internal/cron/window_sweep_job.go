package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/dukkanhq/dukkan-backend/internal/orders"
	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
)

const windowSweepBatchSize = 100

type expiredWindowReader interface {
	FindExpiredWindows(ctx context.Context, now time.Time, limit int) ([]models.MasterOrder, error)
}

type orderFinalizer interface {
	FinalizeMasterOrder(ctx context.Context, input orders.FinalizeMasterOrderInput) error
}

// WindowSweepJobParams configure the cancellation window sweep.
type WindowSweepJobParams struct {
	Logger    *logger.Logger
	Reader    expiredWindowReader
	Finalizer orderFinalizer
}

// NewWindowSweepJob builds the job that finalizes orders whose cancellation
// window expired without an in-process timer resolving it, typically because
// the API process restarted while windows were armed.
func NewWindowSweepJob(params WindowSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("expired window reader required")
	}
	if params.Finalizer == nil {
		return nil, fmt.Errorf("order finalizer required")
	}
	return &windowSweepJob{
		logg:      params.Logger,
		reader:    params.Reader,
		finalizer: params.Finalizer,
		now:       time.Now,
	}, nil
}

type windowSweepJob struct {
	logg      *logger.Logger
	reader    expiredWindowReader
	finalizer orderFinalizer
	now       func() time.Time
}

func (j *windowSweepJob) Name() string { return "window-sweep" }

func (j *windowSweepJob) Run(ctx context.Context) error {
	expired, err := j.reader.FindExpiredWindows(ctx, j.now().UTC(), windowSweepBatchSize)
	if err != nil {
		return fmt.Errorf("query expired windows: %w", err)
	}

	var errs []error
	finalized := 0
	for _, order := range expired {
		err := j.finalizer.FinalizeMasterOrder(ctx, orders.FinalizeMasterOrderInput{
			MasterOrderID: order.ID,
			System:        true,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("finalize order %s: %w", order.ID, err))
			continue
		}
		finalized++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"expired":   len(expired),
		"finalized": finalized,
	})
	j.logg.Info(logCtx, "window sweep complete")
	return multierr.Combine(errs...)
}
