// Package stats provides the numerical kernels behind the analysis tools and
// forecasters. Every function works on plain []float64 so callers can pass
// Series values, differenced slices or model residuals alike.
//
// # Stationarity
//
// ADF (null: unit root) and KPSS (null: stationary) are combined into a
// four-way verdict:
//
//	adf, errA := stats.ADF(values, 0)          // lag chosen by AIC
//	kpss, errK := stats.KPSS(values, "c", -1)  // data-driven bandwidth
//	verdict := stats.CombineVerdict(adf.IsStationary, kpss.IsStationary)
//
// # Trend and shape
//
//	line, _ := stats.LinearFit(values)   // slope, intercept, R²
//	mk, _ := stats.MannKendall(values)   // S, z, two-sided p
//	sw, _ := stats.ShapiroWilk(values)
//	ks, _ := stats.KSNormal(values, mean, std)
//	skew, kurt := stats.Skewness(values), stats.Kurtosis(values)
//
// # Autocorrelation
//
//	acf := stats.ACF(values, 20)
//	pacf := stats.PACF(values, 20)
//	sig := stats.SignificantLags(acf, stats.ConfidenceBound(len(values)))
//	peaks := stats.LocalPeaks(acf, 2, 0.1)
//
// # Frequency domain and multiresolution
//
//	sp := stats.FFTSpectrum(values)
//	psd := stats.Welch(values, 64)
//	haar := stats.HaarDecompose(values, 4)
//
// # Structure
//
//	seg := stats.BinarySegmentation(values)
//	dec, _ := stats.Decompose(values, 0)  // period auto-detected
//	diff, _ := stats.Difference(values, 1)
//	d := stats.NDiffs(values, 2)
//
// # Residual diagnostics
//
//	lb, _ := stats.LjungBox(residuals, 10, p+q)
//
// Population moments (denominator n) are used throughout. Values emitted to
// callers are rounded with Round4.
package stats
