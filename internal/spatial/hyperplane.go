package spatial

import (
	"cmp"
	"context"
	"slices"
	"sort"

	"github.com/hupe1980/sigann/distance"
	"github.com/hupe1980/sigann/internal/arena"
	"github.com/hupe1980/sigann/internal/filter"
	"github.com/hupe1980/sigann/internal/math32"
	"github.com/hupe1980/sigann/internal/searcher"
	"github.com/hupe1980/sigann/model"
)

// splitAttempts bounds the pairs sampled before a range is declared degenerate.
const splitAttempts = 8

type hyperNode struct {
	leaf        bool
	start, end  uint32
	normal      []float32
	offset      float32
	left, right uint32
}

// margin is dot(v, normal) minus the node's offset. The offset is zero
// under SplitOrigin. Non-negative values route left.
func (n *hyperNode) margin(v []float32) float32 {
	return math32.Dot(v, n.normal) - n.offset
}

// Hyperplane is a random-projection tree. Leaves keep two extra orderings
// of their range (by category, by timestamp) for filtered scans.
type Hyperplane struct {
	db         *model.Database
	ids        []model.ID
	byCategory []model.ID
	byTime     []model.ID
	nodes      *arena.Nodes[hyperNode]
	root       uint32
}

// BuildHyperplane builds a hyperplane tree over every record of db.
func BuildHyperplane(ctx context.Context, db *model.Database, opts Options) (*Hyperplane, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	n := db.Len()
	t := &Hyperplane{
		db:         db,
		ids:        identity(n),
		byCategory: make([]model.ID, n),
		byTime:     make([]model.ID, n),
		nodes:      arena.New[hyperNode](),
	}
	t.root = t.nodes.Alloc(hyperNode{})

	fj := newForkJoin(ctx, opts.Workers)
	b := &hyperBuilder{tree: t, opts: opts, fj: fj}
	if err := fj.run(func() error { return b.build(t.root, 0, n) }); err != nil {
		return nil, err
	}
	return t, nil
}

type hyperBuilder struct {
	tree *Hyperplane
	opts Options
	fj   *forkJoin
}

func (b *hyperBuilder) build(slot uint32, start, end int) error {
	if err := b.fj.ctx.Err(); err != nil {
		return err
	}

	t := b.tree
	if end-start <= b.opts.LeafSize {
		t.makeLeaf(slot, start, end)
		return nil
	}

	node, mid, ok := b.split(start, end)
	if !ok {
		t.makeLeaf(slot, start, end)
		return nil
	}

	node.left = t.nodes.Alloc(hyperNode{})
	node.right = t.nodes.Alloc(hyperNode{})
	*t.nodes.Ref(slot) = node

	if err := b.fj.spawn(func() error { return b.build(node.left, start, mid) }); err != nil {
		return err
	}
	return b.build(node.right, mid, end)
}

// split samples pairs until one hyperplane separates [start, end) into two
// non-empty sides, then partitions the range in place around it.
func (b *hyperBuilder) split(start, end int) (hyperNode, int, bool) {
	t := b.tree
	rng := nodeRNG(b.opts.Seed, start, end)
	dim := t.db.Dimension
	var mid []float32
	if b.opts.Split == SplitBisector {
		mid = make([]float32, dim)
	}

	for attempt := 0; attempt < splitAttempts; attempt++ {
		i := start + rng.IntN(end-start)
		j := start + rng.IntN(end-start-1)
		if j >= i {
			j++
		}

		va, vb := t.db.Vector(t.ids[i]), t.db.Vector(t.ids[j])
		node := hyperNode{normal: make([]float32, dim)}
		math32.Sub(node.normal, va, vb)
		if mid != nil {
			math32.Midpoint(mid, va, vb)
			node.offset = math32.Dot(mid, node.normal)
		}

		m := t.partition(&node, start, end)
		if m > start && m < end {
			node.start, node.end = uint32(start), uint32(end)
			return node, m, true
		}
	}
	return hyperNode{}, 0, false
}

// partition moves every id with a non-negative margin before every id with
// a negative one and returns the boundary.
func (t *Hyperplane) partition(node *hyperNode, start, end int) int {
	left := func(id model.ID) bool { return node.margin(t.db.Vector(id)) >= 0 }

	i, j := start, end-1
	for {
		for i <= j && left(t.ids[i]) {
			i++
		}
		for i <= j && !left(t.ids[j]) {
			j--
		}
		if i >= j {
			return i
		}
		t.ids[i], t.ids[j] = t.ids[j], t.ids[i]
		i++
		j--
	}
}

func (t *Hyperplane) makeLeaf(slot uint32, start, end int) {
	cat := t.byCategory[start:end]
	copy(cat, t.ids[start:end])
	slices.SortFunc(cat, func(a, b model.ID) int {
		return cmp.Or(cmp.Compare(t.db.Records[a].Category, t.db.Records[b].Category), cmp.Compare(a, b))
	})

	tm := t.byTime[start:end]
	copy(tm, t.ids[start:end])
	slices.SortFunc(tm, func(a, b model.ID) int {
		return cmp.Or(cmp.Compare(t.db.Records[a].Timestamp, t.db.Records[b].Timestamp), cmp.Compare(a, b))
	})

	*t.nodes.Ref(slot) = hyperNode{leaf: true, start: uint32(start), end: uint32(end)}
}

// SearchOptions controls a tree search.
type SearchOptions struct {
	// Budget keeps the far side of a split explorable while fewer than
	// Budget records have been scored, even once the board is full.
	Budget int
	// Filter decides whether query filters restrict leaf scans.
	Filter filter.Mode
}

// Search pushes the records reached by branch-and-bound descent into board
// and returns how many records were scored.
//
// The near side of every split is searched first; the far side only while
// the board is not full or the budget is not spent. The scored records always
// form a prefix of one fixed depth-first order, so a larger budget never
// scores fewer records.
func (t *Hyperplane) Search(q *model.Query, board *searcher.Scoreboard, opts SearchOptions) int {
	if t.db.Len() == 0 {
		return 0
	}
	s := hyperSearch{tree: t, q: q, board: board, opts: opts, filtered: opts.Filter.Active(q)}
	s.descend(t.root)
	return s.evaluated
}

type hyperSearch struct {
	tree      *Hyperplane
	q         *model.Query
	board     *searcher.Scoreboard
	opts      SearchOptions
	filtered  bool
	evaluated int
}

func (s *hyperSearch) descend(slot uint32) {
	node := s.tree.nodes.Ref(slot)
	if node.leaf {
		s.scan(node)
		return
	}

	near, far := node.left, node.right
	if node.margin(s.q.Vector) < 0 {
		near, far = far, near
	}

	s.descend(near)
	if !s.board.Full() || s.evaluated < s.opts.Budget {
		s.descend(far)
	}
}

func (s *hyperSearch) scan(node *hyperNode) {
	t := s.tree
	start, end := int(node.start), int(node.end)

	if !s.filtered {
		for _, id := range t.ids[start:end] {
			s.score(id)
		}
		return
	}

	switch s.q.Kind {
	case model.KindByCategory, model.KindByCategoryAndTime:
		run := t.byCategory[start:end]
		i := sort.Search(len(run), func(i int) bool {
			return t.db.Records[run[i]].Category >= s.q.Category
		})
		for ; i < len(run) && t.db.Records[run[i]].Category == s.q.Category; i++ {
			if s.q.Kind == model.KindByCategoryAndTime && !filter.InTime(s.q, t.db.Records[run[i]].Timestamp) {
				continue
			}
			s.score(run[i])
		}
	case model.KindByTime:
		run := t.byTime[start:end]
		i := sort.Search(len(run), func(i int) bool {
			return t.db.Records[run[i]].Timestamp >= s.q.TimeLo
		})
		for ; i < len(run) && t.db.Records[run[i]].Timestamp <= s.q.TimeHi; i++ {
			s.score(run[i])
		}
	}
}

func (s *hyperSearch) score(id model.ID) {
	s.evaluated++
	s.board.Push(id, distance.Euclidean(s.q.Vector, s.tree.db.Vector(id)))
}

// Leaves returns the number of leaves.
func (t *Hyperplane) Leaves() int {
	leaves := 0
	for slot := 0; slot < t.nodes.Len(); slot++ {
		if t.nodes.Ref(uint32(slot)).leaf {
			leaves++
		}
	}
	return leaves
}

// Nodes returns the number of nodes.
func (t *Hyperplane) Nodes() int { return t.nodes.Len() }

// Release drops the arena and the id orderings.
func (t *Hyperplane) Release() {
	t.nodes.Release()
	t.ids = nil
	t.byCategory = nil
	t.byTime = nil
}
