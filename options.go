package sigann

import (
	"runtime"

	"github.com/hupe1980/sigann/internal/filter"
	"github.com/hupe1980/sigann/internal/resource"
	"github.com/hupe1980/sigann/internal/spatial"
)

// FilterMode controls whether query filters gate candidate admission.
type FilterMode = filter.Mode

const (
	// FilterUniform admits only eligible records on every search method.
	FilterUniform = filter.ModeUniform
	// FilterIgnore answers every query as if it were unfiltered.
	FilterIgnore = filter.ModeIgnore
)

// ParseFilterMode parses "uniform" or "ignore".
func ParseFilterMode(s string) (FilterMode, error) {
	return filter.ParseMode(s)
}

// HyperplaneSplit selects how the hyperplane tree routes records between
// the two records a and b sampled at each node.
type HyperplaneSplit = spatial.Split

const (
	// HyperplaneOrigin routes x left iff dot(x, a-b) >= 0.
	HyperplaneOrigin = spatial.SplitOrigin
	// HyperplaneBisector routes x to a's side of the perpendicular
	// bisector of a and b.
	HyperplaneBisector = spatial.SplitBisector
)

// ParseHyperplaneSplit parses "origin" or "bisector".
func ParseHyperplaneSplit(s string) (HyperplaneSplit, error) {
	return spatial.ParseSplit(s)
}

// Defaults.
const (
	DefaultK               = 100
	DefaultPartitionLength = 100
	DefaultLeafSize        = 100
	DefaultGraphHops       = 1
	DefaultSeed            = 1
)

type options struct {
	k                int
	partitionLength  int
	leafSize         int
	hyperplaneSplit  HyperplaneSplit
	neighborCapacity int // 0 means k
	budget           int
	hops             int
	filterMode       FilterMode
	seed             uint64
	workers          int
	resources        *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures an Engine.
type Option func(*options)

// WithK sets the number of results kept per query.
func WithK(k int) Option {
	return func(o *options) {
		o.k = k
	}
}

// WithPartitionLength sets the window size used to pair records during
// graph construction. Larger windows compare more pairs.
func WithPartitionLength(n int) Option {
	return func(o *options) {
		o.partitionLength = n
	}
}

// WithLeafSize sets the largest id range a tree leaf holds.
func WithLeafSize(n int) Option {
	return func(o *options) {
		o.leafSize = n
	}
}

// WithHyperplaneSplit selects the hyperplane tree routing rule.
// Defaults to HyperplaneOrigin.
func WithHyperplaneSplit(s HyperplaneSplit) Option {
	return func(o *options) {
		o.hyperplaneSplit = s
	}
}

// WithNeighborCapacity bounds every graph neighbor list. Defaults to K.
// A capacity above K turns the lists into a candidate pool for expansion.
func WithNeighborCapacity(n int) Option {
	return func(o *options) {
		o.neighborCapacity = n
	}
}

// WithBudget sets how many records a hyperplane tree search may score
// before it stops exploring the far side of splits once its board is full.
func WithBudget(n int) Option {
	return func(o *options) {
		o.budget = n
	}
}

// WithGraphHops sets how many neighbor-list hops graph search expands from the seed.
func WithGraphHops(n int) Option {
	return func(o *options) {
		o.hops = n
	}
}

// WithFilterMode selects how query filters apply.
func WithFilterMode(m FilterMode) Option {
	return func(o *options) {
		o.filterMode = m
	}
}

// WithSeed fixes the random split choices of both trees.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithWorkers bounds build and evaluation parallelism.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithResourceController enforces memory, worker and IO limits.
//
// Example:
//
//	rc := resource.NewController(resource.Config{MemoryLimitBytes: 4 << 30})
//	eng, err := sigann.New(ctx, db, sigann.WithResourceController(rc))
//	// err wraps resource.ErrMemoryLimitExceeded if a stage does not fit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &sigann.BasicMetricsCollector{}
//	eng, _ := sigann.New(ctx, db, sigann.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func applyOptions(optFns []Option) (options, error) {
	o := options{
		k:               DefaultK,
		partitionLength: DefaultPartitionLength,
		leafSize:        DefaultLeafSize,
		hops:            DefaultGraphHops,
		filterMode:      FilterUniform,
		seed:            DefaultSeed,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}

	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.workers <= 0 {
		o.workers = o.resources.Workers()
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	if o.neighborCapacity == 0 {
		o.neighborCapacity = o.k
	}

	return o, o.validate()
}

func (o *options) validate() error {
	switch {
	case o.k < 1:
		return ErrInvalidK
	case o.partitionLength < 2:
		return &ErrInvalidOption{Name: "partition length", Value: o.partitionLength}
	case o.leafSize < 1:
		return &ErrInvalidOption{Name: "leaf size", Value: o.leafSize}
	case o.hyperplaneSplit != HyperplaneOrigin && o.hyperplaneSplit != HyperplaneBisector:
		return &ErrInvalidOption{Name: "hyperplane split", Value: o.hyperplaneSplit}
	case o.neighborCapacity < 1:
		return &ErrInvalidOption{Name: "neighbor capacity", Value: o.neighborCapacity}
	case o.budget < 0:
		return &ErrInvalidOption{Name: "budget", Value: o.budget}
	case o.hops < 1:
		return &ErrInvalidOption{Name: "graph hops", Value: o.hops}
	case o.filterMode != FilterUniform && o.filterMode != FilterIgnore:
		return &ErrInvalidOption{Name: "filter mode", Value: o.filterMode}
	}
	return nil
}
