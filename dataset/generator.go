package dataset

import (
	"math/rand/v2"

	"github.com/hupe1980/sigann/model"
)

const (
	// DefaultCategories is the number of distinct record categories.
	DefaultCategories = 1000
	// DefaultFieldRange bounds generated fields to [-DefaultFieldRange, DefaultFieldRange).
	DefaultFieldRange = 5
)

// Generator produces random record sets and query workloads.
// It is not safe for concurrent use.
type Generator struct {
	Dimension  int
	Categories int
	FieldRange float32

	rng *rand.Rand
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(dim int, seed uint64) *Generator {
	return &Generator{
		Dimension:  dim,
		Categories: DefaultCategories,
		FieldRange: DefaultFieldRange,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (g *Generator) uniform(lo, hi float32) float32 {
	return lo + g.rng.Float32()*(hi-lo)
}

// Database returns n records with uniform categories, timestamps in [0, 1)
// and fields in [-FieldRange, FieldRange).
func (g *Generator) Database(n int) *model.Database {
	db := model.NewDatabase(n, g.Dimension)
	for i := range db.Records {
		rec := &db.Records[i]
		rec.Category = uint32(g.rng.IntN(max(g.Categories, 1)))
		rec.Timestamp = g.rng.Float32()
		for j := range rec.Vector {
			rec.Vector[j] = g.uniform(-g.FieldRange, g.FieldRange)
		}
	}
	return db
}

// Queries crafts n queries. Query i copies the vector of record i mod
// db.Len() and draws a random kind; filters are chosen so that record
// stays eligible. Unused filters hold model.NoCategory and -1.
func (g *Generator) Queries(db *model.Database, n int) *model.QuerySet {
	if db.Len() == 0 {
		return model.NewQuerySet(0, g.Dimension)
	}
	qs := model.NewQuerySet(n, g.Dimension)
	for i := range qs.Queries {
		g.craft(&qs.Queries[i], &db.Records[i%db.Len()])
	}
	return qs
}

func (g *Generator) craft(q *model.Query, rec *model.Record) {
	q.Kind = model.QueryKind(g.rng.IntN(model.NumQueryKinds))
	q.Category = model.NoCategory
	q.TimeLo, q.TimeHi = -1, -1

	if q.Kind.FiltersCategory() {
		q.Category = rec.Category
	}
	if q.Kind.FiltersTime() {
		q.TimeLo = g.uniform(0, rec.Timestamp)
		q.TimeHi = g.uniform(rec.Timestamp, 1)
	}
	copy(q.Vector, rec.Vector)
}
