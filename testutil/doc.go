// Package testutil provides testing utilities for sigann.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded generators for databases and query sets, fixture
// builders for hand-written datasets, and a brute-force ground truth.
//
// # Random Data
//
//	rng := testutil.NewRNG(seed)
//	db := testutil.RandomDatabase(rng, 1000, 16, 10)
//	qs := testutil.QueriesFrom(rng, db, 50, model.KindNormal)
//
// # Fixtures
//
//	db := testutil.DatabaseFromVectors([][]float32{{0, 0}, {1, 0}})
//
// # Ground Truth
//
//	want := testutil.BruteForce(db, query, k)
package testutil
