package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/dukkanhq/dukkan-backend/pkg/logger"
)

const defaultNotificationMaxAgeDays = 90

type notificationCleanupRepo interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NotificationCleanupJobParams configure the notification pruning job.
type NotificationCleanupJobParams struct {
	Logger     *logger.Logger
	Repository notificationCleanupRepo
	MaxAgeDays int
}

// NewNotificationCleanupJob builds the job that prunes old supplier notifications.
func NewNotificationCleanupJob(params NotificationCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	maxAge := params.MaxAgeDays
	if maxAge <= 0 {
		maxAge = defaultNotificationMaxAgeDays
	}
	return &notificationCleanupJob{
		logg:   params.Logger,
		repo:   params.Repository,
		maxAge: maxAge,
		now:    time.Now,
	}, nil
}

type notificationCleanupJob struct {
	logg   *logger.Logger
	repo   notificationCleanupRepo
	maxAge int
	now    func() time.Time
}

func (j *notificationCleanupJob) Name() string { return "notification-cleanup" }

func (j *notificationCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.maxAge) * 24 * time.Hour)
	deleted, err := j.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("notification cleanup: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"max_age_days": j.maxAge,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "notification cleanup complete")
	return nil
}
