package distance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
	}{
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"Unit", []float32{0, 0}, []float32{1, 0}, 1},
		{"Diagonal", []float32{0, 0}, []float32{5, 5}, math.Sqrt(50)},
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, math.Sqrt(27)},
		{"Empty", []float32{}, []float32{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, float64(Euclidean(tt.a, tt.b)), 1e-5)
		})
	}
}

func TestSquaredL2(t *testing.T) {
	assert.InDelta(t, float32(27), SquaredL2([]float32{1, 2, 3}, []float32{4, 5, 6}), 1e-5)
	assert.InDelta(t, float32(8), SquaredL2([]float32{1, -1}, []float32{-1, 1}), 1e-5)
}

func TestDot(t *testing.T) {
	assert.InDelta(t, float32(32), Dot([]float32{1, 2, 3}, []float32{4, 5, 6}), 1e-5)
}

func TestMetric(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		assert.Equal(t, "Euclidean", MetricEuclidean.String())
		assert.Equal(t, "SquaredL2", MetricSquaredL2.String())
		assert.Equal(t, "Unknown(99)", Metric(99).String())
	})

	t.Run("Provider", func(t *testing.T) {
		f, err := Provider(MetricEuclidean)
		require.NoError(t, err)
		assert.InDelta(t, float32(5), f([]float32{0, 0}, []float32{3, 4}), 1e-5)

		f, err = Provider(MetricSquaredL2)
		require.NoError(t, err)
		assert.InDelta(t, float32(25), f([]float32{0, 0}, []float32{3, 4}), 1e-5)

		_, err = Provider(Metric(99))
		assert.Error(t, err)
	})
}
