package sigann

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/sigann/internal/dimindex"
	"github.com/hupe1980/sigann/internal/filter"
	"github.com/hupe1980/sigann/internal/graph"
	"github.com/hupe1980/sigann/internal/spatial"
	"github.com/hupe1980/sigann/model"
)

// Build stage names, as they appear in logs, metrics and memory diagnostics.
const (
	StageFilterIndex    = "filter index"
	StageMedianTree     = "median tree"
	StageHyperplaneTree = "hyperplane tree"
	StageDimensionIndex = "dimension index page"
	StageGraph          = "proximity graph"
)

// StageTiming records the duration of one build stage.
type StageTiming struct {
	Stage    string
	Elapsed  time.Duration
	Reserved int64
}

// Stats describes a built engine.
type Stats struct {
	Records         int
	Dimension       int
	K               int
	GraphEdges      int
	GraphComputed   int64
	GraphCopied     int64
	GraphPruned     int64
	HyperplaneNodes int
	MedianNodes     int
	MedianDepth     int
	Build           []StageTiming
}

// Engine answers K-nearest-neighbor queries over one Database.
// It is safe for concurrent searches; nothing is mutated after New returns.
type Engine struct {
	db      *model.Database
	opts    options
	filters *filter.Index
	median  *spatial.Median
	hyper   *spatial.Hyperplane
	graph   *graph.Graph
	stats   Stats

	reserved int64
	closed   atomic.Bool
}

// New builds every index structure over db.
//
// The Database must stay unmodified for the lifetime of the engine.
func New(ctx context.Context, db *model.Database, optFns ...Option) (*Engine, error) {
	opts, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	if db.Len() == 0 {
		return nil, ErrEmptyDatabase
	}
	if db.Dimension < 1 {
		return nil, &ErrInvalidOption{Name: "dimension", Value: db.Dimension}
	}

	e := &Engine{
		db:   db,
		opts: opts,
		stats: Stats{
			Records:   db.Len(),
			Dimension: db.Dimension,
			K:         opts.k,
		},
	}

	if err := e.build(ctx); err != nil {
		_ = e.Close()
		return nil, err
	}

	return e, nil
}

func (e *Engine) build(ctx context.Context) error {
	n, dim := e.db.Len(), e.db.Dimension
	treeOpts := spatial.Options{
		LeafSize: e.opts.leafSize,
		Split:    e.opts.hyperplaneSplit,
		Seed:     e.opts.seed,
		Workers:  e.opts.workers,
	}

	err := e.stage(ctx, StageFilterIndex, int64(n)*12, func() error {
		e.filters = filter.NewIndex(e.db)
		return nil
	})
	if err != nil {
		return err
	}

	err = e.stage(ctx, StageMedianTree, medianTreeBytes(n, e.opts.leafSize), func() (err error) {
		e.median, err = spatial.BuildMedian(ctx, e.db, treeOpts)
		if err == nil {
			e.stats.MedianNodes = e.median.Nodes()
			e.stats.MedianDepth = e.median.Depth()
		}
		return err
	})
	if err != nil {
		return err
	}

	err = e.stage(ctx, StageHyperplaneTree, hyperplaneTreeBytes(n, dim, e.opts.leafSize), func() (err error) {
		e.hyper, err = spatial.BuildHyperplane(ctx, e.db, treeOpts)
		if err == nil {
			e.stats.HyperplaneNodes = e.hyper.Nodes()
		}
		return err
	})
	if err != nil {
		return err
	}

	// The page only seeds the graph: its memory is returned right after.
	var page *dimindex.Page
	pageBytes := dimindex.Bytes(n, dim)
	err = e.stage(ctx, StageDimensionIndex, pageBytes, func() (err error) {
		page, err = dimindex.Build(ctx, e.db, e.opts.workers)
		return err
	})
	if err != nil {
		return err
	}
	defer func() {
		page.Release()
		e.free(pageBytes)
	}()

	return e.stage(ctx, StageGraph, graph.Bytes(n, e.opts.neighborCapacity), func() error {
		g, st, err := graph.Build(ctx, e.db, page, graph.Options{
			Capacity:        e.opts.neighborCapacity,
			PartitionLength: e.opts.partitionLength,
			Workers:         e.opts.workers,
		})
		if err != nil {
			return err
		}
		e.graph = g
		e.stats.GraphEdges = g.Edges()
		e.stats.GraphComputed = st.Computed
		e.stats.GraphCopied = st.Copied
		e.stats.GraphPruned = st.Pruned
		return nil
	})
}

// stage reserves memory for one build step, runs it and reports its timing.
func (e *Engine) stage(ctx context.Context, name string, bytes int64, fn func() error) error {
	start := time.Now()

	err := e.opts.resources.Reserve(name, bytes)
	if err == nil {
		e.reserved += bytes
		err = fn()
	}

	elapsed := time.Since(start)
	e.opts.logger.LogBuild(ctx, name, elapsed, bytes, err)
	e.opts.metricsCollector.RecordBuild(name, elapsed, err)
	if err == nil {
		e.stats.Build = append(e.stats.Build, StageTiming{Stage: name, Elapsed: elapsed, Reserved: bytes})
	}
	return err
}

func (e *Engine) free(bytes int64) {
	e.opts.resources.Free(bytes)
	e.reserved -= bytes
}

func medianTreeBytes(n, leafSize int) int64 {
	nodes := int64(2*n/leafSize + 1)
	return int64(n)*4 + nodes*32
}

func hyperplaneTreeBytes(n, dim, leafSize int) int64 {
	nodes := int64(2*n/leafSize + 1)
	return int64(n)*12 + nodes*(int64(dim)*4+48)
}

// K returns the number of results kept per query.
func (e *Engine) K() int { return e.opts.k }

// Dimension returns the vector dimension.
func (e *Engine) Dimension() int { return e.db.Dimension }

// Len returns the number of indexed records.
func (e *Engine) Len() int { return e.db.Len() }

// Stats returns a description of the built structures.
func (e *Engine) Stats() Stats { return e.stats }

// Close releases the graph, both trees and the filter index, and returns
// their memory reservation. Close is idempotent.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	if e.closed.Swap(true) {
		return nil
	}

	if e.graph != nil {
		e.graph.Release()
	}
	if e.hyper != nil {
		e.hyper.Release()
	}
	if e.median != nil {
		e.median.Release()
	}
	if e.filters != nil {
		e.filters.Release()
	}
	e.free(e.reserved)
	return nil
}
