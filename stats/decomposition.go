package stats

import (
	"math"
)

// DecompositionResult is an additive decomposition Y = T + S + R.
type DecompositionResult struct {
	Trend    []float64
	Seasonal []float64
	Residual []float64
	Period   int
}

// EstimatePeriod returns the first lag >= 2 whose normalized
// autocorrelation is a local peak above 0.1. Series shorter than 8 return 2;
// when no peak exists the result is min(7, n/3).
func EstimatePeriod(values []float64) int {
	n := len(values)
	if n < 8 {
		return 2
	}
	acf := ACF(values, n-1)
	if acf != nil {
		if peaks := LocalPeaks(acf, 2, 0.1); len(peaks) > 0 {
			return peaks[0]
		}
	}
	return min(7, n/3)
}

// Decompose performs an additive decomposition. A non-positive period is
// estimated from the data; periods outside [2, n/2] fall back to
// min(7, n/3) and are then clamped into that range.
//
// The trend is a centered moving average of width 2*(period/2)+1 whose
// undefined edges take the nearest defined value. The seasonal component
// is the per-phase mean of the detrended series, left uncentered.
func Decompose(values []float64, period int) (*DecompositionResult, error) {
	n := len(values)
	if n < 4 {
		return nil, ErrInsufficientData
	}

	if period <= 0 {
		period = EstimatePeriod(values)
	}
	if period < 2 || period > n/2 {
		period = min(7, n/3)
	}
	period = max(2, min(period, n/2))

	trend := centeredTrend(values, period)
	if trend == nil {
		return nil, ErrInsufficientData
	}

	sums := make([]float64, period)
	counts := make([]int, period)
	for i, v := range values {
		sums[i%period] += v - trend[i]
		counts[i%period]++
	}

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i, v := range values {
		phase := i % period
		seasonal[i] = sums[phase] / float64(counts[phase])
		residual[i] = v - trend[i] - seasonal[i]
	}

	return &DecompositionResult{
		Trend:    trend,
		Seasonal: seasonal,
		Residual: residual,
		Period:   period,
	}, nil
}

func centeredTrend(values []float64, period int) []float64 {
	half := period / 2
	width := 2*half + 1
	means := MovingAverage(values, width)
	if len(means) == 0 {
		return nil
	}

	n := len(values)
	trend := make([]float64, n)
	for i := range trend {
		j := i - half
		switch {
		case j < 0:
			trend[i] = means[0]
		case j >= len(means):
			trend[i] = means[len(means)-1]
		default:
			trend[i] = means[j]
		}
	}
	return trend
}

// TrendStrength returns 1 - var(R)/var(Y - S) with the denominator floored
// at 1e-10.
func (d *DecompositionResult) TrendStrength(values []float64) float64 {
	return strength(d.Residual, subtract(values, d.Seasonal))
}

// SeasonalStrength returns 1 - var(R)/var(Y - T) with the denominator
// floored at 1e-10.
func (d *DecompositionResult) SeasonalStrength(values []float64) float64 {
	return strength(d.Residual, subtract(values, d.Trend))
}

func strength(residual, adjusted []float64) float64 {
	return 1 - PopVar(residual)/math.Max(PopVar(adjusted), 1e-10)
}

func subtract(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}
