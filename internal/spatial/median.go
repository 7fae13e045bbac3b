package spatial

import (
	"cmp"
	"context"
	"slices"

	"github.com/hupe1980/sigann/distance"
	"github.com/hupe1980/sigann/internal/arena"
	"github.com/hupe1980/sigann/internal/filter"
	"github.com/hupe1980/sigann/model"
)

type medianNode struct {
	leaf        bool
	start, end  uint32
	dim         uint32
	split       float32
	pivot       uint32 // global index of the pivot in ids
	left, right uint32
}

// Median is a median-split tree used to find a single seed for graph expansion.
// Each internal node owns one pivot record, stored at ids[pivot] and in
// neither child.
type Median struct {
	db    *model.Database
	ids   []model.ID
	nodes *arena.Nodes[medianNode]
	root  uint32
}

// BuildMedian builds a median-split tree over every record of db.
func BuildMedian(ctx context.Context, db *model.Database, opts Options) (*Median, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	t := &Median{
		db:    db,
		ids:   identity(db.Len()),
		nodes: arena.New[medianNode](),
	}
	t.root = t.nodes.Alloc(medianNode{})

	fj := newForkJoin(ctx, opts.Workers)
	b := &medianBuilder{tree: t, opts: opts, fj: fj}
	if err := fj.run(func() error { return b.build(t.root, 0, db.Len()) }); err != nil {
		return nil, err
	}
	return t, nil
}

type medianBuilder struct {
	tree *Median
	opts Options
	fj   *forkJoin
}

func (b *medianBuilder) build(slot uint32, start, end int) error {
	if err := b.fj.ctx.Err(); err != nil {
		return err
	}

	t := b.tree
	leaf := medianNode{leaf: true, start: uint32(start), end: uint32(end)}
	if end-start <= b.opts.LeafSize || t.db.Dimension == 0 {
		*t.nodes.Ref(slot) = leaf
		return nil
	}

	rng := nodeRNG(b.opts.Seed, start, end)
	first := rng.IntN(t.db.Dimension)

	// A dimension whose values in the range are all equal has no pivot that
	// leaves both children non-empty. Try the others in order before giving up.
	for k := 0; k < t.db.Dimension; k++ {
		dim := (first + k) % t.db.Dimension
		pivot, ok := t.choosePivot(dim, start, end)
		if !ok {
			continue
		}

		node := medianNode{
			start: uint32(start),
			end:   uint32(end),
			dim:   uint32(dim),
			split: t.db.Vector(t.ids[pivot])[dim],
			pivot: uint32(pivot),
			left:  t.nodes.Alloc(medianNode{}),
			right: t.nodes.Alloc(medianNode{}),
		}
		*t.nodes.Ref(slot) = node

		if err := b.fj.spawn(func() error { return b.build(node.left, start, pivot) }); err != nil {
			return err
		}
		return b.build(node.right, pivot+1, end)
	}

	*t.nodes.Ref(slot) = leaf
	return nil
}

// choosePivot sorts [start, end) by (value at dim, id) and picks the pivot
// index. The structural median is moved to the nearer edge of its run of
// equal values, so every left value is <= split and every right value >= it.
func (t *Median) choosePivot(dim, start, end int) (int, bool) {
	span := t.ids[start:end]
	value := func(id model.ID) float32 { return t.db.Vector(id)[dim] }

	slices.SortFunc(span, func(a, b model.ID) int {
		return cmp.Or(cmp.Compare(value(a), value(b)), cmp.Compare(a, b))
	})

	mid := start + (end-start)/2
	v := value(t.ids[mid])

	lo := mid
	for lo > start && value(t.ids[lo-1]) == v {
		lo--
	}
	hi := mid + 1
	for hi < end && value(t.ids[hi]) == v {
		hi++
	}

	valid := func(p int) bool { return start < p && p < end-1 }
	larger := func(p int) int { return max(p-start, end-p-1) }

	switch a, b := lo, hi-1; {
	case valid(a) && valid(b):
		if larger(b) < larger(a) {
			return b, true
		}
		return a, true
	case valid(a):
		return a, true
	case valid(b):
		return b, true
	default:
		return 0, false
	}
}

// Seed is the result of a median tree descent.
type Seed struct {
	// Candidate is the nearest record met on the descent path.
	Candidate model.Candidate
	// Found is false only for an empty tree.
	Found bool
	// Eligible reports whether Candidate passes the query's filters. An
	// ineligible seed may still start graph expansion but must not be admitted.
	Eligible bool
	// Evaluated is the number of records scored.
	Evaluated int
}

// Nearest descends one root-to-leaf path, scoring every pivot on the way and
// every id of the leaf. When mode filters q, the nearest eligible record is
// preferred over the nearest record overall.
func (t *Median) Nearest(q *model.Query, mode filter.Mode) Seed {
	if t.db.Len() == 0 {
		return Seed{}
	}

	filtered := mode.Active(q)
	var best, bestEligible model.Candidate
	var haveBest, haveEligible bool
	evaluated := 0

	relax := func(id model.ID) {
		evaluated++
		c := model.Candidate{ID: id, Score: distance.Euclidean(q.Vector, t.db.Vector(id))}
		if !haveBest || c.Less(best) {
			best, haveBest = c, true
		}
		if filtered && filter.Eligible(q, &t.db.Records[id]) && (!haveEligible || c.Less(bestEligible)) {
			bestEligible, haveEligible = c, true
		}
	}

	slot := t.root
	for {
		node := t.nodes.Ref(slot)
		if node.leaf {
			for _, id := range t.ids[node.start:node.end] {
				relax(id)
			}
			break
		}

		relax(t.ids[node.pivot])
		if q.Vector[node.dim] <= node.split {
			slot = node.left
		} else {
			slot = node.right
		}
	}

	switch {
	case !filtered:
		return Seed{Candidate: best, Found: true, Eligible: true, Evaluated: evaluated}
	case haveEligible:
		return Seed{Candidate: bestEligible, Found: true, Eligible: true, Evaluated: evaluated}
	default:
		return Seed{Candidate: best, Found: true, Evaluated: evaluated}
	}
}

// Nodes returns the number of nodes.
func (t *Median) Nodes() int { return t.nodes.Len() }

// Depth returns the length of the longest root-to-leaf path.
func (t *Median) Depth() int {
	var walk func(slot uint32) int
	walk = func(slot uint32) int {
		node := t.nodes.Ref(slot)
		if node.leaf {
			return 1
		}
		return 1 + max(walk(node.left), walk(node.right))
	}
	if t.nodes.Len() == 0 {
		return 0
	}
	return walk(t.root)
}

// Release drops the arena and the id permutation.
func (t *Median) Release() {
	t.nodes.Release()
	t.ids = nil
}
