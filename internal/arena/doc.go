// Package arena provides append-only node storage for the spatial trees.
//
// Nodes live in fixed-size segments that are never moved once allocated, so a
// slot index is a stable reference and disjoint subtrees can be built by
// concurrent goroutines. The whole arena is released in one step.
//
// # Safety
//
// Slots are claimed with an atomic counter; each slot must be written by the
// goroutine that allocated it and read only after that goroutine has been
// joined (errgroup.Wait or similar).
package arena
