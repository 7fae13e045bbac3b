// Package spatial implements two binary space-partitioning trees over the
// record ids of a Database.
//
//   - Hyperplane: splits on the perpendicular bisector of two random records
//     and answers top-K queries with budgeted branch-and-bound.
//   - Median: splits a random dimension at its median and answers a single
//     nearest-neighbor seed by one root-to-leaf descent.
//
// Both trees permute one shared id array in place; every node references a
// range of it. Nodes live in an arena.Nodes and are addressed by slot, so the
// two children of a split are built concurrently and the whole tree is
// released in one step.
package spatial
