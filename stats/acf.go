package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ACF calculates the biased sample autocorrelation for lags 0 to maxLag.
// It returns nil when the series has zero variance.
func ACF(values []float64, maxLag int) []float64 {
	n := len(values)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := stat.Mean(values, nil)
	centered := append([]float64(nil), values...)
	floats.AddConst(-mean, centered)

	variance := floats.Dot(centered, centered)
	if variance == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		acf[k] = floats.Dot(centered[k:], centered[:n-k]) / variance
	}
	return acf
}

// PACF calculates the partial autocorrelation for lags 0 to maxLag by
// Durbin-Levinson recursion on the biased ACF (the Yule-Walker estimate with
// the MLE autocovariance). Index 0 is always 1.
func PACF(values []float64, maxLag int) []float64 {
	n := len(values)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 1 {
		return nil
	}

	acf := ACF(values, maxLag)
	if acf == nil {
		return nil
	}

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1

	phi := make([][]float64, maxLag+1)
	for i := range phi {
		phi[i] = make([]float64, maxLag+1)
	}
	phi[1][1] = acf[1]
	pacf[1] = acf[1]

	for k := 2; k <= maxLag; k++ {
		num := acf[k]
		den := 1.0
		for j := 1; j < k; j++ {
			num -= phi[k-1][j] * acf[k-j]
			den -= phi[k-1][j] * acf[j]
		}
		if den == 0 {
			continue
		}

		phi[k][k] = num / den
		pacf[k] = phi[k][k]
		for j := 1; j < k; j++ {
			phi[k][j] = phi[k-1][j] - phi[k][k]*phi[k-1][k-j]
		}
	}
	return pacf
}

// ConfidenceBound returns the 95% white-noise bound 1.96/sqrt(n).
func ConfidenceBound(n int) float64 {
	if n <= 0 {
		return math.Inf(1)
	}
	return 1.96 / math.Sqrt(float64(n))
}

// SignificantLags returns the lags (>0) whose absolute value exceeds bound.
func SignificantLags(values []float64, bound float64) []int {
	var significant []int
	for i := 1; i < len(values); i++ {
		if math.Abs(values[i]) > bound {
			significant = append(significant, i)
		}
	}
	return significant
}

// LocalPeaks returns the interior indices i >= from that are strictly greater
// than both neighbours and than threshold.
func LocalPeaks(values []float64, from int, threshold float64) []int {
	if from < 1 {
		from = 1
	}
	var peaks []int
	for i := from; i < len(values)-1; i++ {
		v := values[i]
		if v > values[i-1] && v > values[i+1] && v > threshold {
			peaks = append(peaks, i)
		}
	}
	return peaks
}
