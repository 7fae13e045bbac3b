// Package dataset reads, writes and generates record and query sets.
//
// # File Format
//
// Both file kinds are little-endian with no padding: a uint32 count
// followed by count fixed-size rows.
//
//	record: category uint32 | timestamp float32 | D × float32
//	query:  kind uint32 | category uint32 | time_lo float32 | time_hi float32 | D × float32
//
// Rows are transferred in batches of DefaultBatchSize. Batching only
// changes I/O granularity, never the bytes produced.
//
// # Storage
//
// SaveDatabase, LoadDatabase, SaveQuerySet and LoadQuerySet move files
// through any blobstore.Store. Names ending in ".zst" or ".lz4" are
// transparently compressed.
//
// # Generation
//
//	g := dataset.NewGenerator(100, seed)
//	db := g.Database(1_000_000)
//	qs := g.Queries(db, 10_000)
package dataset
