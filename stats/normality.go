package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ErrZeroRange is returned by normality tests on constant samples.
var ErrZeroRange = errors.New("stats: sample has zero range")

// ShapiroWilkResult holds the W statistic and its p-value.
type ShapiroWilkResult struct {
	W      float64
	PValue float64
}

// ShapiroWilk performs the Shapiro-Wilk normality test using Royston's
// (1995) approximation, valid for 3 <= n <= 5000.
func ShapiroWilk(values []float64) (*ShapiroWilkResult, error) {
	n := len(values)
	if n < 3 {
		return nil, ErrInsufficientData
	}
	if n > 5000 {
		values = values[:5000]
		n = 5000
	}

	x := append([]float64(nil), values...)
	sort.Float64s(x)
	if x[n-1]-x[0] < 1e-19 {
		return nil, ErrZeroRange
	}

	a := shapiroCoefficients(n)

	mean := stat.Mean(x, nil)
	ss := 0.0
	for _, v := range x {
		ss += (v - mean) * (v - mean)
	}
	num := floats.Dot(a, x)
	w := num * num / ss
	if w > 1 {
		w = 1
	}

	return &ShapiroWilkResult{W: w, PValue: shapiroPValue(w, n)}, nil
}

func shapiroCoefficients(n int) []float64 {
	a := make([]float64, n)
	if n == 3 {
		a[0], a[2] = -math.Sqrt(0.5), math.Sqrt(0.5)
		return a
	}

	m := make([]float64, n)
	nf := float64(n)
	for i := range m {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (nf + 0.25))
	}
	summ2 := floats.Dot(m, m)
	ssumm2 := math.Sqrt(summ2)
	rsn := 1 / math.Sqrt(nf)

	a1 := poly([]float64{0, 0.221157, -0.147981, -2.071190, 4.434685, -2.706056}, rsn) + m[n-1]/ssumm2

	var fac float64
	if n > 5 {
		a2 := poly([]float64{0, 0.042981, -0.293762, -1.752461, 5.682633, -3.582633}, rsn) + m[n-2]/ssumm2
		fac = math.Sqrt((summ2 - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*a1*a1 - 2*a2*a2))
		for i := range a {
			a[i] = m[i] / fac
		}
		a[n-2], a[1] = a2, -a2
	} else {
		fac = math.Sqrt((summ2 - 2*m[n-1]*m[n-1]) / (1 - 2*a1*a1))
		for i := range a {
			a[i] = m[i] / fac
		}
	}
	a[n-1], a[0] = a1, -a1
	return a
}

func shapiroPValue(w float64, n int) float64 {
	nf := float64(n)
	switch {
	case n == 3:
		p := 6 / math.Pi * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return math.Max(p, 0)
	case n <= 11:
		gamma := poly([]float64{-2.273, 0.459}, nf)
		mu := poly([]float64{0.5440, -0.39978, 0.025054, -6.714e-4}, nf)
		sigma := math.Exp(poly([]float64{1.3822, -0.77857, 0.062767, -0.0020322}, nf))
		l := math.Log(1 - w)
		if l >= gamma {
			return 0
		}
		y := -math.Log(gamma - l)
		return 1 - distuv.UnitNormal.CDF((y-mu)/sigma)
	default:
		ln := math.Log(nf)
		mu := poly([]float64{-1.5861, -0.31082, -0.083751, 0.0038915}, ln)
		sigma := math.Exp(poly([]float64{-0.4803, -0.082676, 0.0030302}, ln))
		y := math.Log(1 - w)
		return 1 - distuv.UnitNormal.CDF((y-mu)/sigma)
	}
}

// poly evaluates c[0] + c[1]*x + c[2]*x^2 + ...
func poly(c []float64, x float64) float64 {
	result := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		result = result*x + c[i]
	}
	return result
}

// KSResult holds a one-sample Kolmogorov-Smirnov test outcome.
type KSResult struct {
	D      float64
	PValue float64
}

// KSNormal tests values against N(mu, sigma) with the two-sided
// Kolmogorov-Smirnov statistic and the asymptotic Kolmogorov distribution
// (with Stephens' small-sample adjustment).
func KSNormal(values []float64, mu, sigma float64) (*KSResult, error) {
	n := len(values)
	if n == 0 {
		return nil, ErrInsufficientData
	}
	if sigma <= 0 || math.IsNaN(sigma) {
		return nil, ErrZeroRange
	}

	x := append([]float64(nil), values...)
	sort.Float64s(x)
	dist := distuv.Normal{Mu: mu, Sigma: sigma}

	nf := float64(n)
	d := 0.0
	for i, v := range x {
		cdf := dist.CDF(v)
		d = math.Max(d, math.Max(float64(i+1)/nf-cdf, cdf-float64(i)/nf))
	}

	sqrtN := math.Sqrt(nf)
	return &KSResult{D: d, PValue: kolmogorovQ((sqrtN + 0.12 + 0.11/sqrtN) * d)}, nil
}

// kolmogorovQ is the survival function of the Kolmogorov distribution.
func kolmogorovQ(lambda float64) float64 {
	if lambda < 1e-3 {
		return 1
	}
	sum, sign := 0.0, 1.0
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(-2*float64(j*j)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}
	p := 2 * sum
	return math.Max(0, math.Min(1, p))
}

// Skewness returns the population (biased) skewness m3/m2^1.5, or 0 for a
// constant sample.
func Skewness(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m2 := stat.Moment(2, values, nil)
	if m2 <= 1e-300 {
		return 0
	}
	return stat.Moment(3, values, nil) / math.Pow(m2, 1.5)
}

// Kurtosis returns the population excess kurtosis m4/m2^2 - 3, or 0 for a
// constant sample.
func Kurtosis(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m2 := stat.Moment(2, values, nil)
	if m2 <= 1e-300 {
		return 0
	}
	return stat.Moment(4, values, nil)/(m2*m2) - 3
}
