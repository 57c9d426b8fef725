package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linear(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func repeat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestLinearContinuationPasses(t *testing.T) {
	history, preds := linear(20), []float64{21, 22, 23, 24, 25}

	rng, err := RangeCheck(history, preds)
	require.NoError(t, err)
	assert.True(t, rng.Pass)
	assert.Zero(t, rng.ViolationCount)
	assert.NotNil(t, rng.Violations)

	trend, err := TrendConsistency(history, preds)
	require.NoError(t, err)
	assert.True(t, trend.Consistent)
	assert.True(t, trend.SmoothTransition)
	assert.InDelta(t, 1.0, trend.HistSlope, 1e-9)
	assert.InDelta(t, 1.0, trend.PredSlope, 1e-9)
	assert.Equal(t, 1.0, trend.ContinuityGap)

	conf, err := Score(history, preds)
	require.NoError(t, err)
	assert.Equal(t, 1.0, conf.Confidence)
	assert.Equal(t, High, conf.Level)
}

func TestConstantHistory(t *testing.T) {
	history, preds := repeat(20, 5), []float64{5, 5, 5}

	report, err := All(history, preds)
	require.NoError(t, err)
	assert.True(t, report.Range.Pass)
	assert.Equal(t, [2]float64{5, 5}, report.Range.Bounds)
	assert.True(t, report.Trend.Consistent)
	assert.Equal(t, 1.0, report.Confidence.Confidence)
}

func TestRangeViolationsCapped(t *testing.T) {
	history := make([]float64, 20)
	for i := range history {
		history[i] = float64(i % 2)
	}
	preds := repeat(15, 100)
	preds[0] = -100

	rng, err := RangeCheck(history, preds)
	require.NoError(t, err)
	assert.False(t, rng.Pass)
	assert.Equal(t, 15, rng.ViolationCount)
	assert.Len(t, rng.Violations, 10)
	assert.Equal(t, Violation{Index: 0, Value: -100, Bound: "lower"}, rng.Violations[0])
	assert.Equal(t, "upper", rng.Violations[1].Bound)
	assert.Equal(t, [2]float64{-1, 2}, rng.Bounds)

	conf, err := Score(history, preds)
	require.NoError(t, err)
	assert.Equal(t, 0.1, conf.Confidence)
	assert.Equal(t, Low, conf.Level)
}

func TestTrendReversal(t *testing.T) {
	history, preds := linear(20), []float64{20, 19, 18}

	trend, err := TrendConsistency(history, preds)
	require.NoError(t, err)
	assert.False(t, trend.Consistent)
	assert.InDelta(t, -1.0, trend.PredSlope, 1e-9)

	conf, err := Score(history, preds)
	require.NoError(t, err)
	assert.Equal(t, 0.8, conf.Confidence)
	assert.Equal(t, High, conf.Level)
}

func TestLargeGap(t *testing.T) {
	history, preds := linear(20), []float64{40}

	trend, err := TrendConsistency(history, preds)
	require.NoError(t, err)
	assert.Zero(t, trend.PredSlope)
	assert.False(t, trend.SmoothTransition)

	conf, err := Score(history, preds)
	require.NoError(t, err)
	assert.Equal(t, 0.638, conf.Confidence)
	assert.Equal(t, Medium, conf.Level)
}

func TestEmptyInput(t *testing.T) {
	_, err := RangeCheck(nil, []float64{1})
	assert.ErrorIs(t, err, ErrEmptyHistory)
	_, err = Score([]float64{1}, nil)
	assert.ErrorIs(t, err, ErrEmptyPredictions)
	_, err = All(nil, nil)
	assert.Error(t, err)
}

func TestCatalog(t *testing.T) {
	ids := []ID{}
	for _, md := range Catalog() {
		ids = append(ids, md.ID)
	}
	assert.Equal(t, []ID{Range, TrendCheck, Confidence}, ids)
}
