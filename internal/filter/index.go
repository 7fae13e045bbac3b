package filter

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/btree"

	"github.com/hupe1980/sigann/model"
)

const timeTreeDegree = 32

type timeItem struct {
	ts float32
	id model.ID
}

func timeLess(a, b timeItem) bool {
	if a.ts != b.ts {
		return a.ts < b.ts
	}
	return a.id < b.id
}

// Index enumerates eligible records: one roaring bitmap per category and a
// B-tree of (timestamp, id) for range scans.
type Index struct {
	categories map[uint32]*roaring.Bitmap
	times      *btree.BTreeG[timeItem]
}

// NewIndex indexes every record of db.
func NewIndex(db *model.Database) *Index {
	ids := make(map[uint32][]uint32)
	times := btree.NewG(timeTreeDegree, timeLess)

	for i := range db.Records {
		rec := &db.Records[i]
		ids[rec.Category] = append(ids[rec.Category], uint32(i))
		times.ReplaceOrInsert(timeItem{ts: rec.Timestamp, id: model.ID(i)})
	}

	categories := make(map[uint32]*roaring.Bitmap, len(ids))
	for c, members := range ids {
		bm := roaring.BitmapOf(members...)
		bm.RunOptimize()
		categories[c] = bm
	}

	return &Index{categories: categories, times: times}
}

// Categories returns the number of distinct categories.
func (x *Index) Categories() int { return len(x.categories) }

// Category returns the ids of category c. The bitmap must not be modified.
func (x *Index) Category(c uint32) *roaring.Bitmap {
	if bm, ok := x.categories[c]; ok {
		return bm
	}
	return roaring.New()
}

// TimeRange returns the ids whose timestamp lies in [lo, hi].
func (x *Index) TimeRange(lo, hi float32) *roaring.Bitmap {
	bm := roaring.New()
	if lo > hi {
		return bm
	}
	x.times.AscendGreaterOrEqual(timeItem{ts: lo}, func(it timeItem) bool {
		if it.ts > hi {
			return false
		}
		bm.Add(uint32(it.id))
		return true
	})
	return bm
}

// Eligible returns the ids eligible for q, or nil when q has no filter.
func (x *Index) Eligible(q *model.Query) *roaring.Bitmap {
	switch q.Kind {
	case model.KindByCategory:
		return x.Category(q.Category)
	case model.KindByTime:
		return x.TimeRange(q.TimeLo, q.TimeHi)
	case model.KindByCategoryAndTime:
		return roaring.And(x.Category(q.Category), x.TimeRange(q.TimeLo, q.TimeHi))
	default:
		return nil
	}
}

// Release drops every index structure.
func (x *Index) Release() {
	x.categories = nil
	x.times = nil
}
