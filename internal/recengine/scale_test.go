package recengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinMaxScaler(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		var s MinMaxScaler
		scaled := s.FitTransform([]float64{10, 25, 40})

		assert.Equal(t, 0.0, scaled[0])
		assert.Equal(t, 1.0, scaled[2])
		// Inverse-scaling the extremes must reproduce the original min and max.
		assert.Equal(t, 10.0, s.Inverse(scaled[0]))
		assert.Equal(t, 40.0, s.Inverse(scaled[2]))
		assert.InDelta(t, 25.0, s.Inverse(scaled[1]), 1e-12)
	})

	t.Run("ConstantColumn", func(t *testing.T) {
		var s MinMaxScaler
		scaled := s.FitTransform([]float64{7, 7, 7})
		assert.Equal(t, []float64{0, 0, 0}, scaled)
	})

	t.Run("EmptyColumn", func(t *testing.T) {
		var s MinMaxScaler
		// Scaling an empty column is a no-op, not an error.
		assert.Empty(t, s.FitTransform(nil))
		assert.Equal(t, 3.0, s.Transform(3.0))
	})
}

func TestCategoricalEncoder(t *testing.T) {
	enc := NewCategoricalEncoder()

	t.Run("Deterministic", func(t *testing.T) {
		a := enc.Encode("vegan menu")
		b := NewCategoricalEncoder().Encode("vegan menu")
		assert.Equal(t, a, b)
		assert.GreaterOrEqual(t, a, 1)
		assert.LessOrEqual(t, a, 999)
	})

	t.Run("SentinelIsZero", func(t *testing.T) {
		assert.Equal(t, 0, enc.Encode("No Preference"))
		assert.Equal(t, 0, enc.Encode("no preference"))
		assert.Equal(t, 0, enc.Encode(""))
		assert.Equal(t, 0, enc.Encode("0"))
	})

	t.Run("DistinctValuesGetOwnCodes", func(t *testing.T) {
		assert.NotEqual(t, enc.Encode("vegan menu"), enc.Encode("street food"))
	})
}

func TestCosineSimilarity(t *testing.T) {
	t.Run("IdenticalVectorsScoreOne", func(t *testing.T) {
		v := []float64{0.3, 0.5, 0.2}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-12)
	})

	t.Run("ZeroVectorScoresZero", func(t *testing.T) {
		assert.Equal(t, 0.0, CosineSimilarity([]float64{0, 0}, []float64{1, 2}))
		assert.Equal(t, 0.0, CosineSimilarity([]float64{1, 2}, []float64{0, 0}))
	})

	t.Run("WithinBounds", func(t *testing.T) {
		pairs := [][2][]float64{
			{{1, 0}, {0, 1}},
			{{1, 2, 3}, {3, 2, 1}},
			{{-1, 1}, {1, -1}},
			{{0.1, 0.9}, {5, 0.01}},
		}
		for _, p := range pairs {
			sim := CosineSimilarity(p[0], p[1])
			assert.GreaterOrEqual(t, sim, -1.0)
			assert.LessOrEqual(t, sim, 1.0)
		}
	})

	t.Run("OppositeVectorsScoreMinusOne", func(t *testing.T) {
		assert.InDelta(t, -1.0, CosineSimilarity([]float64{1, 1}, []float64{-1, -1}), 1e-12)
	})
}
