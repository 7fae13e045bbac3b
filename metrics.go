package sigann

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordBuild is called after each build stage.
	RecordBuild(stage string, duration time.Duration, err error)

	// RecordSearch is called after each search. evaluated is the number of
	// distance computations the search performed.
	RecordSearch(method Method, evaluated int, duration time.Duration, err error)

	// RecordEvaluation is called after each evaluation run.
	RecordEvaluation(queries int, meanRecall float64, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(string, time.Duration, error)       {}
func (NoopMetricsCollector) RecordSearch(Method, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordEvaluation(int, float64, time.Duration)   {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	BuildCount        atomic.Int64
	BuildErrors       atomic.Int64
	BuildTotalNanos   atomic.Int64
	SearchCount       atomic.Int64
	SearchErrors      atomic.Int64
	SearchTotalNanos  atomic.Int64
	DistanceEvaluated atomic.Int64
	EvaluationCount   atomic.Int64
	EvaluatedQueries  atomic.Int64
}

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(_ string, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	b.BuildTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(_ Method, evaluated int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	b.DistanceEvaluated.Add(int64(evaluated))
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordEvaluation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEvaluation(queries int, _ float64, _ time.Duration) {
	b.EvaluationCount.Add(1)
	b.EvaluatedQueries.Add(int64(queries))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:        b.BuildCount.Load(),
		BuildErrors:       b.BuildErrors.Load(),
		BuildTotalNanos:   b.BuildTotalNanos.Load(),
		SearchCount:       b.SearchCount.Load(),
		SearchErrors:      b.SearchErrors.Load(),
		SearchAvgNanos:    b.getAvgSearchNanos(),
		DistanceEvaluated: b.DistanceEvaluated.Load(),
		EvaluationCount:   b.EvaluationCount.Load(),
		EvaluatedQueries:  b.EvaluatedQueries.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount        int64
	BuildErrors       int64
	BuildTotalNanos   int64
	SearchCount       int64
	SearchErrors      int64
	SearchAvgNanos    int64
	DistanceEvaluated int64
	EvaluationCount   int64
	EvaluatedQueries  int64
}
