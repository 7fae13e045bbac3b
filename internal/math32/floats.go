// Package math32 provides float32 vector kernels.
// This is an internal package - external users should use the distance package.
//
// On x86-64 CPUs with AVX2 and FMA the kernels delegate to vek32, which ships
// hand-written SIMD; everywhere else a 4-way unrolled scalar loop is used.
package math32

import (
	"math"

	"github.com/viterin/vek/vek32"
	"golang.org/x/sys/cpu"
)

var useVek = cpu.X86.HasAVX2 && cpu.X86.HasFMA

// Accelerated reports whether the SIMD kernels are active.
func Accelerated() bool {
	return useVek
}

// Dot calculates the dot product of two vectors.
// Public for use by the distance package.
func Dot(a, b []float32) float32 {
	if useVek && len(a) > 0 {
		return vek32.Dot(a, b)
	}
	return dotGeneric(a, b)
}

// SquaredL2 calculates the squared L2 distance.
func SquaredL2(a, b []float32) float32 {
	return squaredL2Generic(a, b)
}

// L2 calculates the Euclidean distance.
func L2(a, b []float32) float32 {
	if useVek && len(a) > 0 {
		return vek32.Distance(a, b)
	}
	return Sqrt(squaredL2Generic(a, b))
}

// Sqrt returns the float32 square root of x.
func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// Sub writes a-b into dst.
func Sub(dst, a, b []float32) {
	for i := range dst {
		dst[i] = a[i] - b[i]
	}
}

// Midpoint writes (a+b)/2 into dst.
func Midpoint(dst, a, b []float32) {
	for i := range dst {
		dst[i] = (a[i] + b[i]) * 0.5
	}
}

func dotGeneric(a, b []float32) float32 {
	var s0, s1, s2, s3 float32
	n := len(a)
	i := 0
	for ; i+4 <= n; i += 4 {
		s0 += a[i] * b[i]
		s1 += a[i+1] * b[i+1]
		s2 += a[i+2] * b[i+2]
		s3 += a[i+3] * b[i+3]
	}
	for ; i < n; i++ {
		s0 += a[i] * b[i]
	}
	return s0 + s1 + s2 + s3
}

func squaredL2Generic(a, b []float32) float32 {
	var s0, s1, s2, s3 float32
	n := len(a)
	i := 0
	for ; i+4 <= n; i += 4 {
		d0 := a[i] - b[i]
		d1 := a[i+1] - b[i+1]
		d2 := a[i+2] - b[i+2]
		d3 := a[i+3] - b[i+3]
		s0 += d0 * d0
		s1 += d1 * d1
		s2 += d2 * d2
		s3 += d3 * d3
	}
	for ; i < n; i++ {
		d := a[i] - b[i]
		s0 += d * d
	}
	return s0 + s1 + s2 + s3
}
