// Package graph builds the Proximity Graph: one bounded, sorted neighbor list
// per record, filled by comparing only records that share a window of some
// Dimension Index Page row.
//
// The graph is approximate on purpose. Two true neighbors that never land in
// the same window of any rotated ordering are never compared.
//
// # Construction
//
//  1. Fill: for every dimension, cut the permutation into windows of
//     PartitionLength ids and score every unordered pair inside a window.
//     Windows of one dimension touch disjoint ids and run concurrently;
//     dimension passes run one after another.
//  2. Symmetrize: every one-sided link is offered to the missing side with
//     the score already recorded.
//  3. Prune: links still one-sided after step 2 (the other list was full
//     of better links) are dropped, so a ∈ N(b) ⇔ b ∈ N(a) holds exactly.
package graph
