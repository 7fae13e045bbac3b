package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sigann/model"
)

func TestRandomDatabase_Deterministic(t *testing.T) {
	a := RandomDatabase(NewRNG(9), 50, 4, 3)
	b := RandomDatabase(NewRNG(9), 50, 4, 3)
	require.Equal(t, a.Records, b.Records)

	for _, rec := range a.Records {
		assert.Less(t, rec.Category, uint32(3))
		assert.GreaterOrEqual(t, rec.Timestamp, float32(0))
		assert.Less(t, rec.Timestamp, float32(1))
		for _, f := range rec.Vector {
			assert.GreaterOrEqual(t, f, float32(-5))
			assert.Less(t, f, float32(5))
		}
	}
}

func TestQueriesFrom(t *testing.T) {
	rng := NewRNG(4)
	db := RandomDatabase(rng, 20, 3, 5)
	qs := QueriesFrom(rng, db, 10, model.KindByCategoryAndTime)

	require.Equal(t, 10, qs.Len())
	for _, q := range qs.Queries {
		assert.Equal(t, model.KindByCategoryAndTime, q.Kind)
		assert.LessOrEqual(t, q.TimeLo, q.TimeHi)
	}
}

func TestBruteForce(t *testing.T) {
	db := DatabaseFromVectors([][]float32{{0, 0}, {1, 0}, {0, 1}, {5, 5}, {5, 6}})
	got := BruteForce(db, []float32{0, 0}, 3)

	require.Len(t, got, 3)
	assert.Equal(t, []model.ID{0, 1, 2}, []model.ID{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, float32(1), got[1].Score)
}
