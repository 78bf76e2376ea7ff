package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dukkanhq/dukkan-backend/internal/orders"
	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
)

type fakeExpiredWindowReader struct {
	expired []models.MasterOrder
	err     error
}

func (f *fakeExpiredWindowReader) FindExpiredWindows(ctx context.Context, now time.Time, limit int) ([]models.MasterOrder, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.expired, nil
}

type fakeFinalizer struct {
	inputs  []orders.FinalizeMasterOrderInput
	failFor uuid.UUID
}

func (f *fakeFinalizer) FinalizeMasterOrder(ctx context.Context, input orders.FinalizeMasterOrderInput) error {
	f.inputs = append(f.inputs, input)
	if input.MasterOrderID == f.failFor {
		return errors.New("finalize failed")
	}
	return nil
}

func TestWindowSweepFinalizesExpiredOrders(t *testing.T) {
	orderA := models.MasterOrder{ID: uuid.New()}
	orderB := models.MasterOrder{ID: uuid.New()}
	reader := &fakeExpiredWindowReader{expired: []models.MasterOrder{orderA, orderB}}
	finalizer := &fakeFinalizer{}

	job, err := NewWindowSweepJob(WindowSweepJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Reader:    reader,
		Finalizer: finalizer,
	})
	if err != nil {
		t.Fatalf("NewWindowSweepJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(finalizer.inputs) != 2 {
		t.Fatalf("expected 2 finalize calls, got %d", len(finalizer.inputs))
	}
	for _, input := range finalizer.inputs {
		if !input.System {
			t.Fatal("sweep finalizations must run as system")
		}
	}
}

func TestWindowSweepContinuesPastFailures(t *testing.T) {
	orderA := models.MasterOrder{ID: uuid.New()}
	orderB := models.MasterOrder{ID: uuid.New()}
	reader := &fakeExpiredWindowReader{expired: []models.MasterOrder{orderA, orderB}}
	finalizer := &fakeFinalizer{failFor: orderA.ID}

	job, err := NewWindowSweepJob(WindowSweepJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Reader:    reader,
		Finalizer: finalizer,
	})
	if err != nil {
		t.Fatalf("NewWindowSweepJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected combined error from failed finalization")
	}
	if len(finalizer.inputs) != 2 {
		t.Fatalf("expected the sweep to keep going past a failure, got %d calls", len(finalizer.inputs))
	}
}

func TestWindowSweepReaderError(t *testing.T) {
	job, err := NewWindowSweepJob(WindowSweepJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Reader:    &fakeExpiredWindowReader{err: errors.New("boom")},
		Finalizer: &fakeFinalizer{},
	})
	if err != nil {
		t.Fatalf("NewWindowSweepJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected reader error to propagate")
	}
}

type fakeOutboxRetentionRepo struct {
	lastCutoff time.Time
	called     int
	err        error
}

func (f *fakeOutboxRetentionRepo) DeletePublishedBefore(cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return 3, nil
}

func TestOutboxRetentionJobCutoff(t *testing.T) {
	now := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeOutboxRetentionRepo{}
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
		Retention:  7,
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	job := jobIface.(*outboxRetentionJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expected := now.Add(-7 * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expected) {
		t.Fatalf("expected cutoff %s, got %s", expected, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("expected repo called once, got %d", repo.called)
	}
}

func TestOutboxRetentionJobDefaultRetention(t *testing.T) {
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: &fakeOutboxRetentionRepo{},
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	if got := jobIface.(*outboxRetentionJob).retention; got != defaultOutboxRetentionDays {
		t.Fatalf("expected default retention %d, got %d", defaultOutboxRetentionDays, got)
	}
}

func TestOutboxRetentionJobPropagatesError(t *testing.T) {
	jobIface, err := NewOutboxRetentionJob(OutboxRetentionJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: &fakeOutboxRetentionRepo{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("NewOutboxRetentionJob: %v", err)
	}
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type fakeNotificationCleanupRepo struct {
	lastCutoff time.Time
	err        error
}

func (f *fakeNotificationCleanupRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func TestNotificationCleanupJobCutoff(t *testing.T) {
	now := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeNotificationCleanupRepo{}
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: repo,
		MaxAgeDays: 30,
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	job := jobIface.(*notificationCleanupJob)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	expected := now.Add(-30 * 24 * time.Hour)
	if !repo.lastCutoff.Equal(expected) {
		t.Fatalf("expected cutoff %s, got %s", expected, repo.lastCutoff)
	}
}

func TestNotificationCleanupJobPropagatesError(t *testing.T) {
	jobIface, err := NewNotificationCleanupJob(NotificationCleanupJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Repository: &fakeNotificationCleanupRepo{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("NewNotificationCleanupJob: %v", err)
	}
	if err := jobIface.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
