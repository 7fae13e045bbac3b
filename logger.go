package sigann

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Logger wraps slog.Logger with sigann-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithRunID tags every record with the id of one build-and-evaluate run.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogBuild logs one build stage.
func (l *Logger) LogBuild(ctx context.Context, stage string, elapsed time.Duration, reserved int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "build stage failed",
			"stage", stage,
			"elapsed", elapsed,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "build stage completed",
			"stage", stage,
			"elapsed", elapsed,
			"reserved", humanize.IBytes(uint64(max(reserved, 0))),
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, method Method, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"method", method.String(),
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"method", method.String(),
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogProgress logs evaluation progress.
func (l *Logger) LogProgress(ctx context.Context, done, total int) {
	l.InfoContext(ctx, "evaluating",
		"done", done,
		"total", total,
	)
}

// LogEvaluation logs the summary of an evaluation run.
func (l *Logger) LogEvaluation(ctx context.Context, r *Report) {
	attrs := []any{
		"method", r.Method.String(),
		"queries", r.Queries,
		"k", r.K,
		"recall_mean", r.MeanRecall,
		"recall_stddev", r.StdDevRecall,
		"search_elapsed", r.SearchElapsed,
		"baseline_elapsed", r.BaselineElapsed,
		"qps", r.QPS,
		"evaluated", r.Evaluated,
	}
	for _, kr := range r.Kinds {
		attrs = append(attrs, "recall_"+kr.Kind.String(), kr.MeanRecall)
	}
	l.InfoContext(ctx, "evaluation completed", attrs...)
}
