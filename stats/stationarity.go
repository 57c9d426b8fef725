package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ADFResult represents the result of an Augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	NObs         int
	CriticalVals map[string]float64
	IsStationary bool
}

// ADF performs the Augmented Dickey-Fuller test with a constant. The null
// hypothesis is a unit root; p < 0.05 rejects it.
//
// When maxLag <= 0 the lag is chosen by AIC over 0..ceil(12*(n/100)^0.25),
// capped at n/2-2. A positive maxLag is used as given.
func ADF(values []float64, maxLag int) (*ADFResult, error) {
	n := len(values)
	if n < 10 {
		return nil, ErrInsufficientData
	}

	lag := maxLag
	if maxLag <= 0 {
		upper := int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
		if limit := n/2 - 2; upper > limit {
			upper = limit
		}
		if upper < 0 {
			return nil, ErrInsufficientData
		}
		best, ok := adfAutolag(values, upper)
		if !ok {
			return nil, ErrSingular
		}
		lag = best
	}
	if lag >= n-2 {
		lag = n - 3
	}

	y, x := adfDesign(values, lag, lag)
	fit, err := OLS(x, y)
	if err != nil {
		return nil, err
	}

	// A perfect fit leaves the t statistic undefined.
	if fit.SSR <= 1e-12*floats.Dot(y, y) {
		return nil, ErrSingular
	}
	se := fit.StdErrors[1]
	if se == 0 || math.IsNaN(se) || math.IsInf(se, 0) {
		return nil, ErrSingular
	}
	tStat := fit.Coeffs[1] / se
	pValue := mackinnonPValue(tStat)

	return &ADFResult{
		Statistic: tStat,
		PValue:    pValue,
		Lags:      lag,
		NObs:      len(y),
		CriticalVals: map[string]float64{
			"1%":  -3.43,
			"5%":  -2.86,
			"10%": -2.57,
		},
		IsStationary: pValue < 0.05,
	}, nil
}

// adfDesign builds the ADF regression of dy_t on [1, y_{t-1}, dy_{t-1..t-lag}],
// starting at offset so that different lags share a sample.
func adfDesign(values []float64, lag, offset int) ([]float64, [][]float64) {
	diff := make([]float64, len(values)-1)
	for i := range diff {
		diff[i] = values[i+1] - values[i]
	}

	nObs := len(diff) - offset
	y := make([]float64, nObs)
	x := make([][]float64, nObs)
	for i := 0; i < nObs; i++ {
		t := i + offset
		y[i] = diff[t]
		row := make([]float64, 2+lag)
		row[0] = 1
		row[1] = values[t]
		for j := 1; j <= lag; j++ {
			row[1+j] = diff[t-j]
		}
		x[i] = row
	}
	return y, x
}

func adfAutolag(values []float64, maxLag int) (int, bool) {
	best, bestAIC := -1, math.Inf(1)
	for lag := 0; lag <= maxLag; lag++ {
		y, x := adfDesign(values, lag, maxLag)
		fit, err := OLS(x, y)
		if err != nil {
			continue
		}
		nobs := float64(fit.NObs)
		aic := nobs*math.Log(fit.SSR/nobs) + 2*float64(len(fit.Coeffs))
		if best < 0 || aic < bestAIC {
			best, bestAIC = lag, aic
		}
	}
	return best, best >= 0
}

// KPSSResult represents the result of a KPSS test.
type KPSSResult struct {
	Statistic    float64
	PValue       float64
	Lags         int
	CriticalVals map[string]float64
	IsStationary bool
}

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test. The null
// hypothesis is stationarity around a level ("c") or trend ("ct").
// When nlags < 0 the bandwidth is chosen from the data (Hobijn et al. 1998).
// The p-value is interpolated from the critical value table and clipped to
// [0.01, 0.10].
func KPSS(values []float64, regression string, nlags int) (*KPSSResult, error) {
	n := len(values)
	if n < 10 {
		return nil, ErrInsufficientData
	}

	var residuals []float64
	if regression == "ct" {
		line, err := LinearFit(values)
		if err != nil {
			return nil, err
		}
		residuals = make([]float64, n)
		for i, v := range values {
			residuals[i] = v - line.At(float64(i))
		}
	} else {
		residuals = append([]float64(nil), values...)
		floats.AddConst(-stat.Mean(values, nil), residuals)
	}

	if nlags < 0 {
		nlags = kpssAutoLags(residuals)
	}
	if nlags >= n {
		nlags = n - 1
	}

	cumSum := make([]float64, n)
	floats.CumSum(cumSum, residuals)
	eta := floats.Dot(cumSum, cumSum) / float64(n*n)

	s2 := floats.Dot(residuals, residuals)
	for l := 1; l <= nlags; l++ {
		weight := 1.0 - float64(l)/float64(nlags+1)
		s2 += 2 * weight * floats.Dot(residuals[l:], residuals[:n-l])
	}
	s2 /= float64(n)
	if s2 <= 0 {
		s2 = 1e-10
	}

	kpssStat := eta / s2
	crit := kpssCritical(regression)
	pValue := kpssPValue(kpssStat, crit)

	return &KPSSResult{
		Statistic: kpssStat,
		PValue:    pValue,
		Lags:      nlags,
		CriticalVals: map[string]float64{
			"10%":  crit[0],
			"5%":   crit[1],
			"2.5%": crit[2],
			"1%":   crit[3],
		},
		IsStationary: pValue > 0.05,
	}, nil
}

func kpssAutoLags(residuals []float64) int {
	n := len(residuals)
	covlags := int(math.Pow(float64(n), 2.0/9.0))
	s0 := floats.Dot(residuals, residuals) / float64(n)
	s1 := 0.0
	for i := 1; i <= covlags && i < n; i++ {
		prod := floats.Dot(residuals[i:], residuals[:n-i]) / (float64(n) / 2)
		s0 += prod
		s1 += float64(i) * prod
	}
	if s0 == 0 {
		return 0
	}
	sHat := s1 / s0
	gamma := 1.1447 * math.Pow(sHat*sHat, 1.0/3.0)
	lags := int(gamma * math.Pow(float64(n), 1.0/3.0))
	if lags > n-1 {
		lags = n - 1
	}
	if lags < 0 {
		lags = 0
	}
	return lags
}

func kpssCritical(regression string) [4]float64 {
	if regression == "ct" {
		return [4]float64{0.119, 0.146, 0.176, 0.216}
	}
	return [4]float64{0.347, 0.463, 0.574, 0.739}
}

// kpssPValue linearly interpolates p in {0.10, 0.05, 0.025, 0.01} over the
// critical values, clipping outside the table.
func kpssPValue(stat float64, crit [4]float64) float64 {
	pvals := [4]float64{0.10, 0.05, 0.025, 0.01}
	if stat <= crit[0] {
		return pvals[0]
	}
	if stat >= crit[3] {
		return pvals[3]
	}
	for i := 1; i < 4; i++ {
		if stat <= crit[i] {
			frac := (stat - crit[i-1]) / (crit[i] - crit[i-1])
			return pvals[i-1] + frac*(pvals[i]-pvals[i-1])
		}
	}
	return pvals[3]
}

// mackinnonPValue is MacKinnon's (1994) response surface for the ADF tau
// statistic with a constant and one variable.
func mackinnonPValue(tau float64) float64 {
	const (
		tauMax  = 2.74
		tauMin  = -18.83
		tauStar = -1.61
	)
	switch {
	case tau > tauMax:
		return 1
	case tau < tauMin:
		return 0
	}

	var z float64
	if tau <= tauStar {
		z = 2.1659 + 1.4412*tau + 0.038269*tau*tau
	} else {
		z = 1.7339 + 0.93202*tau - 0.12745*tau*tau - 0.010368*tau*tau*tau
	}
	return distuv.UnitNormal.CDF(z)
}

// Verdict is the combined classification of the ADF and KPSS outcomes.
type Verdict string

const (
	VerdictStationary           Verdict = "stationary"
	VerdictNonStationary        Verdict = "non_stationary"
	VerdictTrendStationary      Verdict = "trend_stationary"
	VerdictDifferenceStationary Verdict = "difference_stationary"
)

// CombineVerdict classifies the pair of test outcomes. Disagreement is
// labelled trend_stationary when only ADF indicates stationarity and
// difference_stationary when only KPSS does.
func CombineVerdict(adfStationary, kpssStationary bool) Verdict {
	switch {
	case adfStationary && kpssStationary:
		return VerdictStationary
	case !adfStationary && !kpssStationary:
		return VerdictNonStationary
	case adfStationary:
		return VerdictTrendStationary
	default:
		return VerdictDifferenceStationary
	}
}
