// Package distance provides vector distance calculations with SIMD acceleration.
//
// Kernels use vek32 SIMD code on AVX2/FMA x86-64 CPUs and unrolled scalar
// loops elsewhere.
//
// # Supported Metrics
//
//   - MetricEuclidean: Euclidean distance (default; scores of every search path)
//   - MetricSquaredL2: Squared Euclidean distance (same ordering, no sqrt)
//
// # Usage
//
//	d := distance.Euclidean(a, b)
//	f, _ := distance.Provider(distance.MetricEuclidean)
package distance
