package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNewLogger(t *testing.T) {
	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelInfo, Format: LogFormatText, Output: &buf})

		logger.Info("lesson created", "lesson_id", 12)

		assert.Contains(t, buf.String(), "lesson created")
		assert.Contains(t, buf.String(), "lesson_id=12")
	})

	t.Run("json format with service attributes", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{
			Format:         LogFormatJSON,
			Output:         &buf,
			ServiceName:    "lessonboard-api",
			ServiceVersion: "1.2.0",
		})

		logger.Info("board opened", "board", "week")

		entry := decodeEntry(t, &buf)
		assert.Equal(t, "board opened", entry["msg"])
		assert.Equal(t, "week", entry["board"])
		assert.Equal(t, "lessonboard-api", entry["service"])
		assert.Equal(t, "1.2.0", entry["version"])
	})

	t.Run("level filters records", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: LogLevelWarn, Output: &buf})

		logger.Debug("cache lookup")
		logger.Info("lesson created")
		logger.Warn("redis not available")

		assert.NotContains(t, buf.String(), "cache lookup")
		assert.NotContains(t, buf.String(), "lesson created")
		assert.Contains(t, buf.String(), "redis not available")
	})

	t.Run("context ids survive With and WithGroup", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf}).
			With("instructor_id", 1).
			WithGroup("lesson")
		ctx := WithRequestID(WithCorrelationID(context.Background(), "corr-123"), "req-456")

		logger.InfoContext(ctx, "lesson cancelled", "id", 3)

		assert.Contains(t, buf.String(), `"correlation_id":"corr-123"`)
		assert.Contains(t, buf.String(), `"request_id":"req-456"`)
		assert.Contains(t, buf.String(), `"instructor_id":1`)
	})

	t.Run("no ids without context values", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf})

		logger.Info("migrations applied")

		entry := decodeEntry(t, &buf)
		assert.NotContains(t, entry, CorrelationIDKey)
		assert.NotContains(t, entry, RequestIDKey)
	})
}

func TestLoggerFor(t *testing.T) {
	t.Run("development defaults to info", func(t *testing.T) {
		logger := LoggerFor("lessonboard-api", "development", "", "")
		require.NotNil(t, logger)
		assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo))
		assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("level is case insensitive", func(t *testing.T) {
		logger := LoggerFor("", "production", "DEBUG", "json")
		assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("writer overrides the environment output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := LoggerTo(&buf, "lessonboard", "production", "", "")

		logger.Info("command start")

		entry := decodeEntry(t, &buf)
		assert.Equal(t, "command start", entry["msg"])
		assert.Equal(t, "lessonboard", entry["service"])
		assert.Contains(t, entry, "source")
	})

	t.Run("version comes from the environment", func(t *testing.T) {
		t.Setenv("LESSONBOARD_VERSION", "2024.03")
		var buf bytes.Buffer
		logger := LoggerTo(&buf, "lessonboard-worker", "development", "", "json")

		logger.Info("worker started")

		assert.Equal(t, "2024.03", decodeEntry(t, &buf)["version"])
	})
}

func TestLogOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	LogOperation(logger, "cancel_lesson", "lesson_id", 3).Info("lesson cancelled")

	assert.Contains(t, buf.String(), "operation=cancel_lesson")
	assert.Contains(t, buf.String(), "lesson_id=3")
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		input    LogLevel
		expected slog.Level
	}{
		{LogLevelDebug, slog.LevelDebug},
		{LogLevelInfo, slog.LevelInfo},
		{LogLevelWarn, slog.LevelWarn},
		{LogLevelError, slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(string(tt.input), func(t *testing.T) {
			assert.Equal(t, tt.expected, parseSlogLevel(tt.input))
		})
	}
}

func TestCorrelationID(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")
	assert.Len(t, CorrelationIDFromContext(ctx), 36)

	ctx = WithCorrelationID(ctx, "corr-1")
	assert.Equal(t, "corr-1", CorrelationIDFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(ctx))
}
