package observability

import (
	"context"
	"log/slog"
	"time"
)

// TimeOperationResult runs fn and records its duration and outcome under
// the operation tag. The log line carries the correlation id of ctx.
func TimeOperationResult[R any](ctx context.Context, logger *slog.Logger, metrics Metrics, operation string, fn func() (R, error)) (R, error) {
	start := time.Now()
	result, err := fn()
	duration := time.Since(start)

	if logger != nil {
		if err != nil {
			logger.ErrorContext(ctx, "operation failed",
				OperationKey, operation,
				DurationKey, duration.Milliseconds(),
				ErrorKey, err.Error(),
			)
		} else {
			logger.InfoContext(ctx, "operation completed",
				OperationKey, operation,
				DurationKey, duration.Milliseconds(),
			)
		}
	}

	if metrics != nil {
		tag := T("operation", operation)
		metrics.Timing(MetricOperationDuration, duration, tag)
		metrics.Counter(MetricOperationTotal, 1, tag)
		if err != nil {
			metrics.Counter(MetricOperationErrors, 1, tag)
		}
	}
	return result, err
}
