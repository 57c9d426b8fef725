package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCopiesValues(t *testing.T) {
	values := []float64{1, 2, 3}
	s := New(values)
	values[0] = 100

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 1.0, s.Values[0])
}

func TestPopulationMoments(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i + 1)
	}
	s := New(values)

	assert.InDelta(t, 33.25, s.Variance(), 1e-9)
	assert.InDelta(t, 5.766, s.Std(), 1e-3)
	assert.Equal(t, 0.0, s.Diff().Std())
}

func TestConstantSeries(t *testing.T) {
	s := New([]float64{5, 5, 5, 5})
	assert.Equal(t, 0.0, s.Std())
	assert.Equal(t, 0.0, PopVariance(nil))
}

func TestValidate(t *testing.T) {
	require.NoError(t, New([]float64{1, 2}).Validate())
	assert.ErrorIs(t, New(nil).Validate(), ErrEmpty)
	assert.ErrorIs(t, New([]float64{1, math.NaN()}).Validate(), ErrNonFinite)
	assert.ErrorIs(t, New([]float64{math.Inf(1)}).Validate(), ErrNonFinite)
}

func TestDiffN(t *testing.T) {
	s := New([]float64{1, 4, 9, 16, 25})

	assert.Equal(t, []float64{3, 5, 7, 9}, s.Diff().Values)
	assert.Equal(t, []float64{2, 2, 2}, s.DiffN(2).Values)
	assert.Empty(t, s.DiffN(5).Values)
}

func TestSliceAndHead(t *testing.T) {
	s := New([]float64{1, 2, 3, 4, 5})

	assert.Equal(t, []float64{2, 3}, s.Slice(1, 3).Values)
	assert.Equal(t, []float64{1, 2, 3}, s.Head(3).Values)
	assert.Empty(t, s.Slice(4, 2).Values)
	assert.Equal(t, []float64{4, 5}, s.Slice(3, 99).Values)

	part := s.Slice(0, 2)
	part.Values[0] = 100
	assert.Equal(t, 1.0, s.Values[0])
}

func TestDifference(t *testing.T) {
	assert.Equal(t, []float64{1, 1}, Difference([]float64{1, 2, 3}, 1))
	assert.Equal(t, []float64{1, 2, 3}, Difference([]float64{1, 2, 3}, 0))
	assert.Empty(t, Difference([]float64{1}, 1))
}
