package model

import (
	"fmt"
	"math"
)

// ID is the implicit identifier of a record: its position in the Database.
type ID uint32

// NoCategory marks an unused category filter.
const NoCategory = math.MaxUint32

// QueryKind selects which filters apply to a query.
type QueryKind uint32

const (
	// KindNormal is an unfiltered query.
	KindNormal QueryKind = iota
	// KindByCategory restricts results to one category.
	KindByCategory
	// KindByTime restricts results to a closed timestamp range.
	KindByTime
	// KindByCategoryAndTime applies both filters.
	KindByCategoryAndTime
)

// NumQueryKinds is the number of defined query kinds.
const NumQueryKinds = 4

func (k QueryKind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindByCategory:
		return "by_category"
	case KindByTime:
		return "by_time"
	case KindByCategoryAndTime:
		return "by_category_and_time"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(k))
	}
}

// Valid reports whether k is one of the defined kinds.
func (k QueryKind) Valid() bool {
	return k < NumQueryKinds
}

// FiltersCategory reports whether the kind carries a category filter.
func (k QueryKind) FiltersCategory() bool {
	return k == KindByCategory || k == KindByCategoryAndTime
}

// FiltersTime reports whether the kind carries a time-range filter.
func (k QueryKind) FiltersTime() bool {
	return k == KindByTime || k == KindByCategoryAndTime
}

// Record is one row of the Database.
type Record struct {
	Category  uint32
	Timestamp float32
	Vector    []float32
}

// Query is one row of the QuerySet.
//
// Category is valid iff Kind.FiltersCategory(); TimeLo and TimeHi are valid iff
// Kind.FiltersTime().
type Query struct {
	Kind     QueryKind
	Category uint32
	TimeLo   float32
	TimeHi   float32
	Vector   []float32
}

// Candidate is a scored reference to a record. Lower scores are closer.
type Candidate struct {
	ID    ID
	Score float32
}

// String returns a string representation of the Candidate.
func (c Candidate) String() string {
	return fmt.Sprintf("Cand(%d:%g)", c.ID, c.Score)
}

// Less orders candidates by score, then by id.
func (c Candidate) Less(o Candidate) bool {
	if c.Score != o.Score {
		return c.Score < o.Score
	}
	return c.ID < o.ID
}

// Database is the immutable record collection of a run.
type Database struct {
	Dimension int
	Records   []Record

	slab []float32
}

// NewDatabase allocates n zeroed records of the given dimension.
func NewDatabase(n, dim int) *Database {
	slab := make([]float32, n*dim)
	records := make([]Record, n)
	for i := range records {
		records[i].Vector = slab[i*dim : (i+1)*dim : (i+1)*dim]
	}
	return &Database{Dimension: dim, Records: records, slab: slab}
}

// WrapDatabase builds a Database over records whose vectors are stored
// row-major in slab, pointing every record's Vector into it.
// It panics if slab does not hold exactly len(records)*dim values.
func WrapDatabase(dim int, records []Record, slab []float32) *Database {
	if len(slab) != len(records)*dim {
		panic("model: slab length does not match records")
	}
	for i := range records {
		records[i].Vector = slab[i*dim : (i+1)*dim : (i+1)*dim]
	}
	return &Database{Dimension: dim, Records: records, slab: slab}
}

// Len returns the number of records.
func (db *Database) Len() int {
	if db == nil {
		return 0
	}
	return len(db.Records)
}

// Vector returns the vector of record id.
func (db *Database) Vector(id ID) []float32 {
	return db.Records[id].Vector
}

// Release drops the records so their memory can be reclaimed.
func (db *Database) Release() {
	if db == nil {
		return
	}
	db.Records = nil
	db.slab = nil
}

// QuerySet is the immutable query workload of a run.
type QuerySet struct {
	Dimension int
	Queries   []Query

	slab []float32
}

// NewQuerySet allocates n zeroed queries of the given dimension.
func NewQuerySet(n, dim int) *QuerySet {
	slab := make([]float32, n*dim)
	queries := make([]Query, n)
	for i := range queries {
		queries[i].Vector = slab[i*dim : (i+1)*dim : (i+1)*dim]
		queries[i].Category = NoCategory
	}
	return &QuerySet{Dimension: dim, Queries: queries, slab: slab}
}

// WrapQuerySet is WrapDatabase for queries.
func WrapQuerySet(dim int, queries []Query, slab []float32) *QuerySet {
	if len(slab) != len(queries)*dim {
		panic("model: slab length does not match queries")
	}
	for i := range queries {
		queries[i].Vector = slab[i*dim : (i+1)*dim : (i+1)*dim]
	}
	return &QuerySet{Dimension: dim, Queries: queries, slab: slab}
}

// Len returns the number of queries.
func (qs *QuerySet) Len() int {
	if qs == nil {
		return 0
	}
	return len(qs.Queries)
}

// Release drops the queries so their memory can be reclaimed.
func (qs *QuerySet) Release() {
	if qs == nil {
		return
	}
	qs.Queries = nil
	qs.slab = nil
}
