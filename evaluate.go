package sigann

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/sigann/internal/searcher"
	"github.com/hupe1980/sigann/model"
)

// KindRecall aggregates the recall of one query kind.
type KindRecall struct {
	Kind       model.QueryKind
	Queries    int
	MeanRecall float64
}

// Report summarizes one evaluation run.
type Report struct {
	Method  Method
	K       int
	Queries int

	// Recall holds the recall of each query, in QuerySet order.
	Recall       []float64
	MeanRecall   float64
	StdDevRecall float64
	// Kinds holds one entry per query kind present in the workload.
	Kinds []KindRecall

	// Evaluated and BaselineEvaluated count distance computations.
	Evaluated         int64
	BaselineEvaluated int64

	// SearchElapsed and BaselineElapsed sum per-query wall time over workers.
	SearchElapsed   time.Duration
	BaselineElapsed time.Duration
	// QPS is queries per second of the evaluated method on one worker.
	QPS float64

	Elapsed time.Duration
	Build   []StageTiming
}

// Evaluate answers every query of qs with method and with exhaustive search,
// and reports recall against the exhaustive results. Queries run in parallel
// on the engine's workers.
func (e *Engine) Evaluate(ctx context.Context, qs *model.QuerySet, method Method) (*Report, error) {
	if e.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	n := qs.Len()
	recall := make([]float64, n)

	var (
		evaluated, baselineEvaluated atomic.Int64
		searchNanos, baselineNanos   atomic.Int64
		done                         atomic.Int64
	)
	progress := rate.Sometimes{Interval: time.Second}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.opts.workers)

	for i := range qs.Queries {
		eg.Go(func() error {
			if err := e.opts.resources.AcquireWorker(egCtx); err != nil {
				return err
			}
			defer e.opts.resources.ReleaseWorker()

			q := &qs.Queries[i]

			approx := searcher.Get(e.opts.k)
			defer searcher.Put(approx)
			t0 := time.Now()
			if err := e.search(egCtx, q, method, approx); err != nil {
				return err
			}
			searchNanos.Add(int64(time.Since(t0)))

			baseline := searcher.Get(e.opts.k)
			defer searcher.Put(baseline)
			t0 = time.Now()
			if err := e.search(egCtx, q, MethodExhaustive, baseline); err != nil {
				return err
			}
			baselineNanos.Add(int64(time.Since(t0)))

			recall[i] = Recall(baseline.Board.View(), approx.Board.View(), e.opts.k)
			evaluated.Add(int64(approx.Evaluated))
			baselineEvaluated.Add(int64(baseline.Evaluated))

			d := done.Add(1)
			progress.Do(func() { e.opts.logger.LogProgress(egCtx, int(d), n) })
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	r := &Report{
		Method:            method,
		K:                 e.opts.k,
		Queries:           n,
		Recall:            recall,
		MeanRecall:        mean(recall),
		StdDevRecall:      stdDev(recall),
		Kinds:             kindRecall(qs, recall),
		Evaluated:         evaluated.Load(),
		BaselineEvaluated: baselineEvaluated.Load(),
		SearchElapsed:     time.Duration(searchNanos.Load()),
		BaselineElapsed:   time.Duration(baselineNanos.Load()),
		Elapsed:           time.Since(start),
		Build:             e.stats.Build,
	}
	if r.SearchElapsed > 0 {
		r.QPS = float64(n) / r.SearchElapsed.Seconds()
	}

	e.opts.logger.LogEvaluation(ctx, r)
	e.opts.metricsCollector.RecordEvaluation(n, r.MeanRecall, r.Elapsed)

	return r, nil
}

func kindRecall(qs *model.QuerySet, recall []float64) []KindRecall {
	var byKind [model.NumQueryKinds][]float64
	for i := range qs.Queries {
		k := qs.Queries[i].Kind
		byKind[k] = append(byKind[k], recall[i])
	}

	var out []KindRecall
	for k, values := range byKind {
		if len(values) == 0 {
			continue
		}
		out = append(out, KindRecall{
			Kind:       model.QueryKind(k),
			Queries:    len(values),
			MeanRecall: mean(values),
		})
	}
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}
