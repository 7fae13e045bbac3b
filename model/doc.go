// Package model defines core types used throughout sigann.
//
// # Identity Types
//
//   - ID: position of a record inside its Database (uint32)
//
// # Data Types
//
//   - Record: vector annotated with a category and a timestamp
//   - Query: vector plus an optional category and/or time-range filter
//   - Candidate: (ID, Score) pair produced by every search path
//   - Database / QuerySet: immutable collections loaded once per run
//
// Vectors of a Database or QuerySet share one contiguous backing slab:
//
//	db := model.NewDatabase(1_000_000, 100)
//	db.Records[42].Vector[0] = 1.5
package model
