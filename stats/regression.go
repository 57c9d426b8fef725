package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrInsufficientData is returned when a routine needs more observations.
	ErrInsufficientData = errors.New("stats: insufficient data")

	// ErrSingular is returned when a regression design matrix is rank deficient.
	ErrSingular = errors.New("stats: singular design matrix")
)

// Line is a fitted straight line y = Intercept + Slope*x.
type Line struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// At evaluates the line at x.
func (l Line) At(x float64) float64 {
	return l.Intercept + l.Slope*x
}

// LinearFit regresses values on their indices 0..n-1. A constant series
// yields slope 0 and R² 0.
func LinearFit(values []float64) (Line, error) {
	n := len(values)
	if n < 2 {
		return Line{}, ErrInsufficientData
	}

	xs := Index(n)
	alpha, beta := stat.LinearRegression(xs, values, nil, false)
	r2 := stat.RSquared(xs, values, nil, alpha, beta)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}
	return Line{Slope: beta, Intercept: alpha, RSquared: r2}, nil
}

// Index returns 0, 1, ..., n-1 as float64.
func Index(n int) []float64 {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	return xs
}

// OLSResult holds an ordinary least squares fit.
type OLSResult struct {
	Coeffs    []float64
	StdErrors []float64
	SSR       float64
	NObs      int
}

// OLS regresses y on the rows of x. Each row of x is one observation and must
// already include a constant column when an intercept is wanted.
func OLS(x [][]float64, y []float64) (*OLSResult, error) {
	n := len(y)
	if n == 0 || len(x) != n {
		return nil, ErrInsufficientData
	}
	k := len(x[0])
	if n <= k {
		return nil, ErrInsufficientData
	}

	design := mat.NewDense(n, k, nil)
	for i, row := range x {
		design.SetRow(i, row)
	}
	target := mat.NewVecDense(n, append([]float64(nil), y...))

	var xtx mat.Dense
	xtx.Mul(design.T(), design)

	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil, ErrSingular
	}

	var xty mat.VecDense
	xty.MulVec(design.T(), target)

	var beta mat.VecDense
	beta.MulVec(&inv, &xty)

	var fitted mat.VecDense
	fitted.MulVec(design, &beta)

	ssr := 0.0
	for i := 0; i < n; i++ {
		r := y[i] - fitted.AtVec(i)
		ssr += r * r
	}

	s2 := ssr / float64(n-k)
	coeffs := make([]float64, k)
	stdErrors := make([]float64, k)
	for i := 0; i < k; i++ {
		coeffs[i] = beta.AtVec(i)
		stdErrors[i] = math.Sqrt(s2 * inv.At(i, i))
	}

	return &OLSResult{Coeffs: coeffs, StdErrors: stdErrors, SSR: ssr, NObs: n}, nil
}
