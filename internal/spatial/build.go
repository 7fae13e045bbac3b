package spatial

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/sigann/model"
)

// ErrInvalidLeafSize is returned for a leaf size below 1.
var ErrInvalidLeafSize = errors.New("spatial: leaf size must be at least 1")

// ErrInvalidSplit is returned for an unknown hyperplane split rule.
var ErrInvalidSplit = errors.New("spatial: invalid hyperplane split")

// Split selects how a hyperplane node routes records from the two records
// it samples, a and b.
type Split uint8

const (
	// SplitOrigin routes x left iff dot(x, a-b) >= 0.
	SplitOrigin Split = iota
	// SplitBisector routes x left iff x lies on a's side of the
	// perpendicular bisector of a and b (ties go left).
	SplitBisector
)

func (s Split) String() string {
	switch s {
	case SplitOrigin:
		return "origin"
	case SplitBisector:
		return "bisector"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(s))
	}
}

// ParseSplit parses "origin" or "bisector". Empty means origin.
func ParseSplit(s string) (Split, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "origin":
		return SplitOrigin, nil
	case "bisector":
		return SplitBisector, nil
	default:
		return 0, fmt.Errorf("unknown hyperplane split %q", s)
	}
}

// Options configures tree construction.
type Options struct {
	// LeafSize is the largest range that is not split further.
	LeafSize int
	// Split is the hyperplane routing rule. Ignored by the median tree.
	Split Split
	// Seed makes split choices reproducible.
	Seed uint64
	// Workers bounds concurrent subtree builds. GOMAXPROCS if <= 0.
	Workers int
}

func (o *Options) validate() error {
	if o.LeafSize < 1 {
		return ErrInvalidLeafSize
	}
	if o.Split > SplitBisector {
		return fmt.Errorf("%w: %s", ErrInvalidSplit, o.Split)
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	return nil
}

// identity returns [0, n) as ids.
func identity(n int) []model.ID {
	ids := make([]model.ID, n)
	for i := range ids {
		ids[i] = model.ID(i)
	}
	return ids
}

// nodeRNG derives the random source of the node covering [start, end).
// Split choices depend only on the seed and the range, never on scheduling.
func nodeRNG(seed uint64, start, end int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(start)<<32|uint64(end))) // nolint gosec
}

// forkJoin runs subtree builds on an errgroup. When every worker slot is
// busy the subtree is built on the calling goroutine instead, so a parent
// never blocks waiting for a slot.
type forkJoin struct {
	ctx context.Context
	eg  *errgroup.Group
}

func newForkJoin(ctx context.Context, workers int) *forkJoin {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	return &forkJoin{ctx: ctx, eg: eg}
}

func (f *forkJoin) spawn(fn func() error) error {
	if f.eg.TryGo(fn) {
		return nil
	}
	return fn()
}

// run builds the root inline and waits for every spawned subtree.
func (f *forkJoin) run(root func() error) error {
	err := root()
	if werr := f.eg.Wait(); err == nil {
		err = werr
	}
	return err
}
