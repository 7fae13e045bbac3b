package testutil

import (
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/sigann/distance"
	"github.com/hupe1980/sigann/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// RandomDatabase generates n records with fields in [-5, 5), timestamps in
// [0, 1) and categories in [0, categories).
func RandomDatabase(r *RNG, n, dim, categories int) *model.Database {
	db := model.NewDatabase(n, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range db.Records {
		rec := &db.Records[i]
		rec.Category = uint32(r.rand.Intn(max(categories, 1)))
		rec.Timestamp = r.rand.Float32()
		for j := range rec.Vector {
			rec.Vector[j] = r.rand.Float32()*10 - 5
		}
	}
	return db
}

// QueriesFrom crafts n queries of the given kind, each centred on a random
// record of db with filters chosen so that record stays eligible.
func QueriesFrom(r *RNG, db *model.Database, n int, kind model.QueryKind) *model.QuerySet {
	qs := model.NewQuerySet(n, db.Dimension)

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range qs.Queries {
		q := &qs.Queries[i]
		rec := db.Records[r.rand.Intn(db.Len())]
		q.Kind = kind
		q.TimeLo, q.TimeHi = -1, -1
		if kind.FiltersCategory() {
			q.Category = rec.Category
		}
		if kind.FiltersTime() {
			q.TimeLo = r.rand.Float32() * rec.Timestamp
			q.TimeHi = rec.Timestamp + r.rand.Float32()*(1-rec.Timestamp)
		}
		for j := range q.Vector {
			q.Vector[j] = rec.Vector[j] + (r.rand.Float32()-0.5)*0.1
		}
	}
	return qs
}

// DatabaseFromVectors builds a database of category-0, timestamp-0 records.
func DatabaseFromVectors(vectors [][]float32) *model.Database {
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	db := model.NewDatabase(len(vectors), dim)
	for i, v := range vectors {
		copy(db.Records[i].Vector, v)
	}
	return db
}

// BruteForce returns the exact k nearest records to query, ignoring filters,
// ordered by (distance, id).
func BruteForce(db *model.Database, query []float32, k int) []model.Candidate {
	all := make([]model.Candidate, db.Len())
	for i := range all {
		all[i] = model.Candidate{ID: model.ID(i), Score: distance.Euclidean(query, db.Records[i].Vector)}
	}
	slices.SortFunc(all, func(a, b model.Candidate) int {
		if a.Less(b) {
			return -1
		}
		if b.Less(a) {
			return 1
		}
		return 0
	})
	if len(all) > k {
		all = all[:k]
	}
	return all
}
