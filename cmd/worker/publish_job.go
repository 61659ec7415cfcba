package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/commands"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/application/subscribers"
	"github.com/felixgeelhaar/lessonboard/internal/scheduling/domain"
	"github.com/felixgeelhaar/lessonboard/pkg/observability"
	"github.com/robfig/cron/v3"
)

// publishJob republishes every instructor's timetable over the horizon.
type publishJob struct {
	publish     subscribers.TimetablePublishing
	horizonDays int
	now         func() time.Time
	logger      *slog.Logger
	metrics     observability.Metrics
}

func newPublishJob(publish subscribers.TimetablePublishing, horizonDays int, logger *slog.Logger, metrics observability.Metrics) *publishJob {
	if horizonDays <= 0 {
		horizonDays = subscribers.DefaultHorizonDays
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &publishJob{
		publish:     publish,
		horizonDays: horizonDays,
		now:         time.Now,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run publishes [today, today+horizon].
func (j *publishJob) Run(ctx context.Context) (domain.PublishResult, error) {
	today := domain.DateOf(j.now())
	cmd := commands.PublishTimetablesCommand{From: today, To: today.AddDays(j.horizonDays)}
	result, err := observability.TimeOperationResult(ctx, j.logger, j.metrics, "publish_timetables", func() (domain.PublishResult, error) {
		return j.publish.Handle(ctx, cmd)
	})
	if err != nil {
		j.logger.ErrorContext(ctx, "timetable publication failed", "error", err)
		return result, err
	}
	j.metrics.Counter(observability.MetricCalDAVEvents, int64(result.Created), observability.T("outcome", "created"))
	j.metrics.Counter(observability.MetricCalDAVEvents, int64(result.Updated), observability.T("outcome", "updated"))
	j.metrics.Counter(observability.MetricCalDAVEvents, int64(result.Deleted), observability.T("outcome", "deleted"))
	j.metrics.Counter(observability.MetricCalDAVEvents, int64(result.Failed), observability.T("outcome", "failed"))
	j.logger.InfoContext(ctx, "timetables published",
		"from", cmd.From.String(),
		"to", cmd.To.String(),
		"created", result.Created,
		"updated", result.Updated,
		"deleted", result.Deleted,
		"failed", result.Failed,
	)
	return result, nil
}

// schedule registers the job on c under the cron expression expr. Runs
// never overlap: a run still going when the next tick fires makes that tick
// a no-op.
func (j *publishJob) schedule(ctx context.Context, c *cron.Cron, expr string) (cron.EntryID, error) {
	guarded := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		_, _ = j.Run(ctx)
	}))
	return c.AddJob(expr, guarded)
}
