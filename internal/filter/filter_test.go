package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sigann/model"
	"github.com/hupe1980/sigann/testutil"
)

func TestMode(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want Mode
	}{
		{"", ModeUniform},
		{"uniform", ModeUniform},
		{"IGNORE", ModeIgnore},
		{"none", ModeIgnore},
	} {
		got, err := ParseMode(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseMode("sometimes")
	assert.Error(t, err)

	assert.Equal(t, "uniform", ModeUniform.String())
	assert.Equal(t, "ignore", ModeIgnore.String())

	q := &model.Query{Kind: model.KindByTime}
	assert.True(t, ModeUniform.Active(q))
	assert.False(t, ModeIgnore.Active(q))
	assert.False(t, ModeUniform.Active(&model.Query{Kind: model.KindNormal}))
}

func TestEligible(t *testing.T) {
	rec := &model.Record{Category: 3, Timestamp: 0.5}

	tests := []struct {
		name string
		q    model.Query
		want bool
	}{
		{"Normal", model.Query{Kind: model.KindNormal, Category: 9}, true},
		{"CategoryMatch", model.Query{Kind: model.KindByCategory, Category: 3}, true},
		{"CategoryMiss", model.Query{Kind: model.KindByCategory, Category: 4}, false},
		{"TimeInside", model.Query{Kind: model.KindByTime, TimeLo: 0.2, TimeHi: 0.6}, true},
		{"TimeBoundsInclusive", model.Query{Kind: model.KindByTime, TimeLo: 0.5, TimeHi: 0.5}, true},
		{"TimeOutside", model.Query{Kind: model.KindByTime, TimeLo: 0.6, TimeHi: 0.9}, false},
		{"BothMatch", model.Query{Kind: model.KindByCategoryAndTime, Category: 3, TimeLo: 0, TimeHi: 1}, true},
		{"BothWrongCategory", model.Query{Kind: model.KindByCategoryAndTime, Category: 1, TimeLo: 0, TimeHi: 1}, false},
		{"BothWrongTime", model.Query{Kind: model.KindByCategoryAndTime, Category: 3, TimeLo: 0.7, TimeHi: 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Eligible(&tt.q, rec))
		})
	}
}

func TestIndex_MatchesPredicate(t *testing.T) {
	rng := testutil.NewRNG(5)
	db := testutil.RandomDatabase(rng, 400, 2, 6)
	x := NewIndex(db)
	require.LessOrEqual(t, x.Categories(), 6)

	kinds := []model.QueryKind{model.KindByCategory, model.KindByTime, model.KindByCategoryAndTime}
	for _, kind := range kinds {
		qs := testutil.QueriesFrom(rng, db, 20, kind)
		for i := range qs.Queries {
			q := &qs.Queries[i]
			bm := x.Eligible(q)
			require.NotNil(t, bm)

			for id := range db.Records {
				assert.Equal(t, Eligible(q, &db.Records[id]), bm.Contains(uint32(id)),
					"kind=%v id=%d", kind, id)
			}
		}
	}

	assert.Nil(t, x.Eligible(&model.Query{Kind: model.KindNormal}))
}

func TestIndex_EdgeCases(t *testing.T) {
	db := model.NewDatabase(3, 1)
	db.Records[0].Timestamp = 0.1
	db.Records[1].Timestamp = 0.1
	db.Records[2].Timestamp = 0.9
	x := NewIndex(db)

	assert.Equal(t, uint64(2), x.TimeRange(0.1, 0.1).GetCardinality())
	assert.True(t, x.TimeRange(0.5, 0.2).IsEmpty())
	assert.True(t, x.Category(42).IsEmpty())
	assert.Equal(t, uint64(3), x.Category(0).GetCardinality())

	x.Release()
	assert.Zero(t, x.Categories())
}
