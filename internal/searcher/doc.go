// Package searcher provides the per-query search state.
//
//   - Scoreboard: bounded, ordered set of the K best candidates seen so far
//   - VisitedSet: bitset with a dirty list for cheap resets between queries
//   - Searcher: pooled bundle of both plus scratch counters
//
// Searchers are managed by a package-level pool for reuse across queries.
package searcher
