// internal/correlation/stats_test.go
package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpearmanRho(t *testing.T) {
	t.Run("perfect monotonic increase", func(t *testing.T) {
		rho, ok := SpearmanRho([]float64{1, 2, 3, 4, 5}, []float64{10, 20, 30, 40, 50})
		require.True(t, ok)
		assert.InDelta(t, 1.0, rho, 1e-9)
	})

	t.Run("perfect monotonic decrease", func(t *testing.T) {
		rho, ok := SpearmanRho([]float64{1, 2, 3, 4, 5}, []float64{50, 40, 30, 20, 10})
		require.True(t, ok)
		assert.InDelta(t, -1.0, rho, 1e-9)
	})

	t.Run("nonlinear but monotonic still perfect", func(t *testing.T) {
		rho, ok := SpearmanRho([]float64{1, 2, 3, 4, 5}, []float64{1, 8, 27, 64, 125})
		require.True(t, ok)
		assert.InDelta(t, 1.0, rho, 1e-9)
	})

	t.Run("zero variance is not computable", func(t *testing.T) {
		_, ok := SpearmanRho([]float64{3, 3, 3, 3}, []float64{1, 2, 3, 4})
		assert.False(t, ok)
	})

	t.Run("mismatched lengths are not computable", func(t *testing.T) {
		_, ok := SpearmanRho([]float64{1, 2}, []float64{1, 2, 3})
		assert.False(t, ok)
	})

	t.Run("ties get midranks", func(t *testing.T) {
		rho, ok := SpearmanRho([]float64{1, 2, 2, 3}, []float64{1, 2, 2, 3})
		require.True(t, ok)
		assert.InDelta(t, 1.0, rho, 1e-9)
	})
}

func TestRankBiserial(t *testing.T) {
	t.Run("fully separated groups", func(t *testing.T) {
		delta, ok := RankBiserial([]float64{10, 11, 12}, []float64{1, 2, 3})
		require.True(t, ok)
		assert.Equal(t, 1.0, delta)

		delta, ok = RankBiserial([]float64{1, 2, 3}, []float64{10, 11, 12})
		require.True(t, ok)
		assert.Equal(t, -1.0, delta)
	})

	t.Run("identical groups have zero effect", func(t *testing.T) {
		delta, ok := RankBiserial([]float64{5, 5}, []float64{5, 5})
		require.True(t, ok)
		assert.Equal(t, 0.0, delta)
	})

	t.Run("empty group is not computable", func(t *testing.T) {
		_, ok := RankBiserial(nil, []float64{1})
		assert.False(t, ok)
	})

	t.Run("partial overlap", func(t *testing.T) {
		delta, ok := RankBiserial([]float64{2, 4}, []float64{1, 3})
		require.True(t, ok)
		assert.InDelta(t, 0.5, delta, 1e-9) // 3 wins, 1 loss out of 4
	})
}
