package spatial

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sigann/distance"
	"github.com/hupe1980/sigann/internal/filter"
	"github.com/hupe1980/sigann/model"
	"github.com/hupe1980/sigann/testutil"
)

func buildMedian(t *testing.T, db *model.Database, leaf int) *Median {
	t.Helper()
	tree, err := BuildMedian(context.Background(), db, Options{LeafSize: leaf, Seed: 7, Workers: 4})
	require.NoError(t, err)
	return tree
}

// checkMedian verifies ranges, split order and leaf sizes below slot and
// returns the ids it covers.
func checkMedian(t *testing.T, tree *Median, slot uint32) int {
	node := tree.nodes.Ref(slot)
	if node.leaf {
		assert.Less(t, node.start, node.end, "empty leaf")
		return int(node.end - node.start)
	}

	left := tree.nodes.Ref(node.left)
	right := tree.nodes.Ref(node.right)
	require.Equal(t, node.start, left.start)
	require.Equal(t, node.pivot, left.end)
	require.Equal(t, node.pivot+1, right.start)
	require.Equal(t, node.end, right.end)

	value := func(id model.ID) float32 { return tree.db.Vector(id)[node.dim] }
	assert.Equal(t, node.split, value(tree.ids[node.pivot]))
	for _, id := range tree.ids[left.start:left.end] {
		assert.LessOrEqual(t, value(id), node.split)
	}
	for _, id := range tree.ids[right.start:right.end] {
		assert.GreaterOrEqual(t, value(id), node.split)
	}

	return 1 + checkMedian(t, tree, node.left) + checkMedian(t, tree, node.right)
}

func TestMedian_Structure(t *testing.T) {
	db := testutil.RandomDatabase(testutil.NewRNG(1), 3000, 5, 1)
	tree := buildMedian(t, db, 25)

	assert.ElementsMatch(t, identity(db.Len()), tree.ids)
	assert.Equal(t, db.Len(), checkMedian(t, tree, tree.root))
	assert.Greater(t, tree.Depth(), 1)
}

func TestMedian_DuplicateValues(t *testing.T) {
	// Coordinates drawn from a tiny alphabet produce long runs of equal values.
	rng := testutil.NewRNG(2)
	vectors := make([][]float32, 400)
	for i := range vectors {
		vectors[i] = []float32{float32(rng.Intn(3)), float32(rng.Intn(2)), 7}
	}
	db := testutil.DatabaseFromVectors(vectors)
	tree := buildMedian(t, db, 4)

	assert.Equal(t, db.Len(), checkMedian(t, tree, tree.root))
}

func TestMedian_AllEqual(t *testing.T) {
	vectors := make([][]float32, 30)
	for i := range vectors {
		vectors[i] = []float32{2, 2}
	}
	tree := buildMedian(t, testutil.DatabaseFromVectors(vectors), 4)

	assert.Equal(t, 1, tree.Nodes())
	assert.Equal(t, 1, tree.Depth())
}

func TestChoosePivot(t *testing.T) {
	tests := []struct {
		name   string
		values []float32
		want   int
		ok     bool
	}{
		{"Distinct", []float32{5, 1, 4, 2, 3}, 2, true},
		{"RunAroundMedian", []float32{1, 2, 2, 2, 2, 2, 3, 4}, 5, true},
		{"RunTowardsStart", []float32{1, 1, 1, 1, 1, 2, 3, 4}, 4, true},
		{"RunAtStart", []float32{1, 1, 1, 1, 2}, 3, true},
		{"TieTakesLowEdge", []float32{0, 1, 1, 1, 2}, 1, true},
		{"AllEqual", []float32{3, 3, 3, 3}, 0, false},
		{"TwoElements", []float32{1, 2}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vectors := make([][]float32, len(tt.values))
			for i, v := range tt.values {
				vectors[i] = []float32{v}
			}
			tree := &Median{db: testutil.DatabaseFromVectors(vectors), ids: identity(len(vectors))}

			p, ok := tree.choosePivot(0, 0, len(vectors))
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, p)
			}
		})
	}
}

func TestMedian_NearestOnPath(t *testing.T) {
	rng := testutil.NewRNG(3)
	db := testutil.RandomDatabase(rng, 1000, 3, 1)
	tree := buildMedian(t, db, 1000)

	// A single leaf holds every record: the descent is exhaustive.
	qs := testutil.QueriesFrom(rng, db, 20, model.KindNormal)
	for i := range qs.Queries {
		q := &qs.Queries[i]
		seed := tree.Nearest(q, filter.ModeUniform)
		require.True(t, seed.Found)
		assert.True(t, seed.Eligible)
		assert.Equal(t, db.Len(), seed.Evaluated)
		assert.Equal(t, testutil.BruteForce(db, q.Vector, 1)[0], seed.Candidate)
	}
}

func TestMedian_FindsIndexedRecord(t *testing.T) {
	db := testutil.RandomDatabase(testutil.NewRNG(4), 2000, 4, 1)
	tree := buildMedian(t, db, 10)

	// Querying a record's own vector follows the path that record took.
	for id := 0; id < db.Len(); id += 97 {
		q := &model.Query{Vector: db.Records[id].Vector}
		seed := tree.Nearest(q, filter.ModeIgnore)
		assert.Zero(t, seed.Candidate.Score)
		assert.Less(t, seed.Evaluated, db.Len())
	}
}

func TestMedian_FilteredSeed(t *testing.T) {
	db := testutil.DatabaseFromVectors([][]float32{{0, 0}, {1, 0}, {0, 1}, {5, 5}, {5, 6}})
	db.Records[0].Category = 1
	db.Records[3].Category = 2
	tree := buildMedian(t, db, 10)

	q := &model.Query{Kind: model.KindByCategory, Category: 2, Vector: []float32{0, 0}}

	seed := tree.Nearest(q, filter.ModeUniform)
	assert.True(t, seed.Eligible)
	assert.Equal(t, model.ID(3), seed.Candidate.ID)
	assert.InDelta(t, distance.Euclidean([]float32{0, 0}, []float32{5, 5}), seed.Candidate.Score, 1e-5)

	seed = tree.Nearest(q, filter.ModeIgnore)
	assert.True(t, seed.Eligible)
	assert.Equal(t, model.ID(0), seed.Candidate.ID)

	q.Category = 9
	seed = tree.Nearest(q, filter.ModeUniform)
	assert.True(t, seed.Found)
	assert.False(t, seed.Eligible)
	assert.Equal(t, model.ID(0), seed.Candidate.ID)
}

func TestMedian_Empty(t *testing.T) {
	tree := buildMedian(t, model.NewDatabase(0, 2), 4)
	seed := tree.Nearest(&model.Query{Vector: []float32{0, 0}}, filter.ModeUniform)
	assert.False(t, seed.Found)
}
