package stats

import (
	"math"
	"sort"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/Yuuki0u0/shuprophet/timeseries"
)

// PopVar returns the population variance, or 0 for an empty slice.
func PopVar(values []float64) float64 {
	return timeseries.PopVariance(values)
}

// PopStd returns the population standard deviation.
func PopStd(values []float64) float64 {
	return math.Sqrt(PopVar(values))
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Percentile returns the p-th percentile (0..100) of values using linear
// interpolation between closest ranks, the convention of numpy's default.
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := p / 100 * float64(n-1)
	lo := int(math.Floor(pos))
	if lo < 0 {
		return sorted[0]
	}
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// Round rounds v to places decimals, half away from zero. Non-finite values
// are returned unchanged.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

// Round4 rounds to four decimals, the precision of every emitted value.
func Round4(v float64) float64 {
	return Round(v, 4)
}

// RoundAll applies Round4 to every element of a copy of values.
func RoundAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = Round4(v)
	}
	return out
}

// MovingAverage returns the trailing simple moving average of every full
// window: element j is the mean of values[j : j+window]. It returns nil when
// window exceeds the length.
func MovingAverage(values []float64, window int) []float64 {
	if window < 1 || window > len(values) {
		return nil
	}
	if window == 1 {
		return append([]float64(nil), values...)
	}
	sma := trend.NewSmaWithPeriod[float64](window)
	out := helper.ChanToSlice(sma.Compute(helper.SliceToChan(values)))
	if want := len(values) - window + 1; len(out) > want {
		out = out[len(out)-want:]
	}
	return out
}

// RollingStd returns the population standard deviation of every full window,
// computed as sqrt(E[x^2] - E[x]^2) from two moving averages.
func RollingStd(values []float64, window int) []float64 {
	means := MovingAverage(values, window)
	if means == nil {
		return nil
	}
	squares := make([]float64, len(values))
	for i, v := range values {
		squares[i] = v * v
	}
	meanSquares := MovingAverage(squares, window)

	out := make([]float64, len(means))
	for i := range means {
		out[i] = math.Sqrt(math.Max(meanSquares[i]-means[i]*means[i], 0))
	}
	return out
}
