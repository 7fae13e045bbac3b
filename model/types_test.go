package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryKind(t *testing.T) {
	tests := []struct {
		kind     QueryKind
		name     string
		category bool
		time     bool
	}{
		{KindNormal, "normal", false, false},
		{KindByCategory, "by_category", true, false},
		{KindByTime, "by_time", false, true},
		{KindByCategoryAndTime, "by_category_and_time", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.kind.Valid())
			assert.Equal(t, tt.name, tt.kind.String())
			assert.Equal(t, tt.category, tt.kind.FiltersCategory())
			assert.Equal(t, tt.time, tt.kind.FiltersTime())
		})
	}

	assert.False(t, QueryKind(7).Valid())
	assert.Equal(t, "Unknown(7)", QueryKind(7).String())
}

func TestCandidateLess(t *testing.T) {
	a := Candidate{ID: 3, Score: 1}
	b := Candidate{ID: 1, Score: 2}
	c := Candidate{ID: 5, Score: 1}

	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))
	assert.True(t, a.Less(c), "equal scores fall back to id")
	assert.False(t, a.Less(a))
}

func TestNewDatabase(t *testing.T) {
	db := NewDatabase(3, 2)
	require.Equal(t, 3, db.Len())

	db.Records[1].Vector[0] = 7
	assert.Equal(t, []float32{0, 0}, db.Vector(0))
	assert.Equal(t, []float32{7, 0}, db.Vector(1))

	// Appending to one vector must never spill into its neighbour.
	_ = append(db.Records[0].Vector, 99)
	assert.Equal(t, float32(7), db.Records[1].Vector[0])

	db.Release()
	assert.Equal(t, 0, db.Len())
}

func TestWrapDatabase(t *testing.T) {
	records := []Record{{Category: 1}, {Category: 2}}
	db := WrapDatabase(2, records, []float32{1, 2, 3, 4})
	require.Equal(t, 2, db.Len())
	assert.Equal(t, []float32{3, 4}, db.Vector(1))
	assert.Equal(t, uint32(2), db.Records[1].Category)

	_ = append(db.Records[0].Vector, 99)
	assert.Equal(t, float32(3), db.Records[1].Vector[0])

	assert.Panics(t, func() { WrapDatabase(2, records, []float32{1}) })

	qs := WrapQuerySet(1, []Query{{Kind: KindByTime}}, []float32{5})
	assert.Equal(t, []float32{5}, qs.Queries[0].Vector)
	assert.Panics(t, func() { WrapQuerySet(3, []Query{{}}, nil) })
}

func TestNewQuerySet(t *testing.T) {
	qs := NewQuerySet(2, 4)
	require.Equal(t, 2, qs.Len())
	for _, q := range qs.Queries {
		assert.Equal(t, KindNormal, q.Kind)
		assert.Equal(t, uint32(NoCategory), q.Category)
		assert.Len(t, q.Vector, 4)
	}
	qs.Release()
	assert.Equal(t, 0, qs.Len())
}
