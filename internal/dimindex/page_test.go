package dimindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sigann/model"
	"github.com/hupe1980/sigann/testutil"
)

func TestBuild_Permutations(t *testing.T) {
	rng := testutil.NewRNG(1)
	db := testutil.RandomDatabase(rng, 500, 6, 10)

	page, err := Build(context.Background(), db, 3)
	require.NoError(t, err)
	require.Equal(t, 6, page.Dimensions())

	for key := 0; key < page.Dimensions(); key++ {
		row := page.Row(key)
		require.Len(t, row, db.Len())

		seen := make([]bool, db.Len())
		for _, id := range row {
			require.False(t, seen[id], "dimension %d repeats id %d", key, id)
			seen[id] = true
		}

		for i := 1; i < len(row); i++ {
			require.Negative(t, Compare(db, key, row[i-1], row[i]), "dimension %d not sorted at %d", key, i)
		}
	}

	page.Release()
	assert.Zero(t, page.Dimensions())
}

func TestCompare_RotatedOrder(t *testing.T) {
	db := model.NewDatabase(3, 3)
	copy(db.Records[0].Vector, []float32{1, 5, 0})
	copy(db.Records[1].Vector, []float32{1, 2, 9})
	copy(db.Records[2].Vector, []float32{0, 5, 0})

	// key 0: (v0, v1, v2)
	assert.Equal(t, 1, Compare(db, 0, 0, 1))
	assert.Equal(t, 1, Compare(db, 0, 0, 2))

	// key 1: (v1, v2, v0)
	assert.Equal(t, -1, Compare(db, 1, 1, 0))
	assert.Equal(t, 1, Compare(db, 1, 0, 2), "tie on v1 and v2 falls through to v0")

	// key 2: (v2, v0, v1)
	assert.Equal(t, 1, Compare(db, 2, 1, 0))
}

func TestCompare_IDTieBreak(t *testing.T) {
	db := model.NewDatabase(2, 2)
	copy(db.Records[0].Vector, []float32{3, 3})
	copy(db.Records[1].Vector, []float32{3, 3})

	assert.Equal(t, -1, Compare(db, 0, 0, 1))
	assert.Equal(t, 1, Compare(db, 1, 1, 0))
	assert.Equal(t, 0, Compare(db, 1, 1, 1))
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	db := testutil.RandomDatabase(testutil.NewRNG(2), 10, 4, 2)
	_, err := Build(ctx, db, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBytes(t *testing.T) {
	assert.Equal(t, int64(400), Bytes(10, 10))
}
