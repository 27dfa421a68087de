package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DraftPurger deletes pickup drafts not updated since before.
type DraftPurger interface {
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

// SubmissionPurger deletes submission log entries older than cutoff.
type SubmissionPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// DraftCleanupJob removes drafts idle for longer than maxAge. The TTL
// index on pickup_drafts catches anything this job misses.
func DraftCleanupJob(drafts DraftPurger, maxAge time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "draft-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			n, err := drafts.DeleteStale(ctx, time.Now().Add(-maxAge))
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("cleaned up abandoned pickup drafts",
					zap.Int64("deleted", n),
					zap.Duration("max_age", maxAge))
			}
			return nil
		},
	}
}

// SubmissionLogCleanupJob trims the submission log to retention.
func SubmissionLogCleanupJob(subs SubmissionPurger, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "submission-log-cleanup",
		Interval: 24 * time.Hour,
		Run: func(ctx context.Context) error {
			n, err := subs.DeleteOlderThan(ctx, time.Now().Add(-retention))
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("trimmed submission log",
					zap.Int64("deleted", n),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}
