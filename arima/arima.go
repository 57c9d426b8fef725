// Package arima implements ARIMA (AutoRegressive Integrated Moving Average) models.
package arima

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/Yuuki0u0/shuprophet/stats"
)

var (
	// ErrInsufficientData is returned when the series is too short for the order.
	ErrInsufficientData = errors.New("arima: insufficient data points for the specified order")
	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("arima: model must be fitted before prediction")
	// ErrInvalidSteps is returned by Predict for a non-positive horizon.
	ErrInvalidSteps = errors.New("arima: steps must be at least 1")
)

// minVariance floors the residual variance so that an exact fit still has a
// finite, very favourable likelihood.
const minVariance = 1e-10

// coeffBound keeps AR terms stationary and MA terms invertible.
const coeffBound = 0.99

// Order represents ARIMA model order (p, d, q).
type Order struct {
	P int // AR order (number of autoregressive terms)
	D int // Differencing order
	Q int // MA order (number of moving average terms)
}

// String formats the order as ARIMA(p,d,q).
func (o Order) String() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}

// Model represents an ARIMA model.
type Model struct {
	Order     Order
	ARCoeffs  []float64 // AR coefficients (phi)
	MACoeffs  []float64 // MA coefficients (theta)
	Intercept float64
	Variance  float64 // Residual variance
	AIC       float64
	AICc      float64 // Corrected AIC for small sample sizes
	BIC       float64
	LogLik    float64

	fitted     bool
	nObs       int
	lasts      []float64 // last value at each differencing level
	diffData   []float64
	residuals  []float64
	fittedVals []float64
}

// New creates a new ARIMA model with the specified order.
func New(p, d, q int) *Model {
	return &Model{
		Order:    Order{P: p, D: d, Q: q},
		ARCoeffs: make([]float64, p),
		MACoeffs: make([]float64, q),
	}
}

// Fit fits the model to values by conditional sum of squares.
func (m *Model) Fit(values []float64) error {
	if len(values) < m.Order.P+m.Order.Q+m.Order.D+10 {
		return ErrInsufficientData
	}

	m.nObs = len(values)
	m.lasts = make([]float64, m.Order.D)
	diff := append([]float64(nil), values...)
	for i := 0; i < m.Order.D; i++ {
		m.lasts[i] = diff[len(diff)-1]
		diff = difference(diff)
	}
	m.diffData = diff

	if err := m.fitCSS(); err != nil {
		return err
	}

	m.calculateIC()
	m.fitted = true
	return nil
}

func difference(values []float64) []float64 {
	out := make([]float64, len(values)-1)
	floats.SubTo(out, values[1:], values[:len(values)-1])
	return out
}

// fitCSS fits the model using Conditional Sum of Squares estimation.
func (m *Model) fitCSS() error {
	y := m.diffData
	p, q := m.Order.P, m.Order.Q
	m.Intercept = stat.Mean(y, nil)

	if p+q > 0 {
		// Yule-Walker starting point for the AR terms, small MA terms.
		init := make([]float64, p+q)
		if acf := stats.ACF(y, p); p > 0 && acf != nil {
			copy(init, yuleWalker(acf, p))
		}
		for i := p; i < p+q; i++ {
			init[i] = 0.1
		}
		clampCoeffs(init)

		problem := optimize.Problem{
			Func: func(x []float64) float64 {
				return m.sse(y, x)
			},
		}
		result, err := optimize.Minimize(problem, init, &optimize.Settings{MajorIterations: 500}, &optimize.NelderMead{})
		if result == nil {
			return fmt.Errorf("arima: css optimisation: %w", err)
		}
		if math.IsNaN(result.F) || math.IsInf(result.F, 0) {
			return fmt.Errorf("arima: css objective is not finite for %s", m.Order)
		}
		best := append([]float64(nil), result.X...)
		clampCoeffs(best)
		copy(m.ARCoeffs, best[:p])
		copy(m.MACoeffs, best[p:])
	}

	m.residuals, m.fittedVals = m.filter(y, m.ARCoeffs, m.MACoeffs)

	start := max(p, q)
	sse := floats.Dot(m.residuals[start:], m.residuals[start:])
	count := len(y) - start
	if count > p+q+1 {
		m.Variance = sse / float64(count-p-q-1)
	} else {
		m.Variance = sse / float64(max(count, 1))
	}
	if m.Variance < minVariance {
		m.Variance = minVariance
	}
	return nil
}

// sse is the conditional sum of squares for packed coefficients x.
func (m *Model) sse(y, x []float64) float64 {
	coeffs := append([]float64(nil), x...)
	clampCoeffs(coeffs)
	residuals, _ := m.filter(y, coeffs[:m.Order.P], coeffs[m.Order.P:])
	start := max(m.Order.P, m.Order.Q)
	return floats.Dot(residuals[start:], residuals[start:])
}

// filter runs the ARMA recursion over y, returning one-step residuals and
// fitted values. The first max(p, q) points are fitted by the intercept.
func (m *Model) filter(y, ar, ma []float64) (residuals, fitted []float64) {
	n := len(y)
	residuals = make([]float64, n)
	fitted = make([]float64, n)
	start := max(len(ar), len(ma))

	for t := 0; t < n; t++ {
		pred := m.Intercept
		if t >= start {
			for i := range ar {
				pred += ar[i] * (y[t-i-1] - m.Intercept)
			}
			for i := range ma {
				pred += ma[i] * residuals[t-i-1]
			}
		}
		fitted[t] = pred
		residuals[t] = y[t] - pred
	}
	return residuals, fitted
}

func clampCoeffs(x []float64) {
	for i, v := range x {
		x[i] = math.Max(-coeffBound, math.Min(coeffBound, v))
	}
}

// calculateIC calculates AIC, AICc, and BIC from the Gaussian likelihood.
func (m *Model) calculateIC() {
	n := len(m.residuals)
	k := m.Order.P + m.Order.Q + 1 // AR + MA + intercept

	sse := floats.Dot(m.residuals, m.residuals)
	nf := float64(n)
	logLik := -nf/2*math.Log(2*math.Pi) - nf/2*math.Log(m.Variance) - sse/(2*m.Variance)

	ic := stats.CalculateIC(logLik, n, k)
	m.LogLik = ic.LogLik
	m.AIC = ic.AIC
	m.AICc = ic.AICc
	m.BIC = ic.BIC
}

// Predict generates forecasts for the specified number of steps ahead.
func (m *Model) Predict(steps int) ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	if steps < 1 {
		return nil, ErrInvalidSteps
	}

	p, q := m.Order.P, m.Order.Q
	y := m.diffData
	n := len(y)

	extY := make([]float64, n+steps)
	copy(extY, y)
	extResiduals := make([]float64, n+steps)
	copy(extResiduals, m.residuals)

	for h := 0; h < steps; h++ {
		t := n + h
		pred := m.Intercept
		for i := 0; i < p && t-i-1 >= 0; i++ {
			pred += m.ARCoeffs[i] * (extY[t-i-1] - m.Intercept)
		}
		// Future shocks have expectation zero.
		for i := 0; i < q && t-i-1 >= 0 && t-i-1 < n; i++ {
			pred += m.MACoeffs[i] * extResiduals[t-i-1]
		}
		extY[t] = pred
	}

	return m.integrate(extY[n:]), nil
}

// integrate undoes differencing, innermost level first.
func (m *Model) integrate(forecasts []float64) []float64 {
	result := append([]float64(nil), forecasts...)
	for level := m.Order.D - 1; level >= 0; level-- {
		prev := m.lasts[level]
		for j := range result {
			result[j] += prev
			prev = result[j]
		}
	}
	return result
}

// Residuals returns the model residuals on the differenced scale.
func (m *Model) Residuals() []float64 {
	if !m.fitted {
		return nil
	}
	return append([]float64(nil), m.residuals...)
}

// FittedValues returns the fitted values on the differenced scale.
func (m *Model) FittedValues() []float64 {
	if !m.fitted {
		return nil
	}
	return append([]float64(nil), m.fittedVals...)
}

// Summary describes a fitted model.
type Summary struct {
	Order     Order
	ARCoeffs  []float64
	MACoeffs  []float64
	Intercept float64
	Variance  float64
	AIC       float64
	AICc      float64
	BIC       float64
	LogLik    float64
	NObs      int
	LjungBox  *stats.LjungBoxResult // nil when the residuals are too short or constant
}

// Summary returns a summary of the fitted model.
func (m *Model) Summary() *Summary {
	if !m.fitted {
		return nil
	}

	lb, err := stats.LjungBox(m.residuals, 10, m.Order.P+m.Order.Q)
	if err != nil {
		lb = nil
	}

	return &Summary{
		Order:     m.Order,
		ARCoeffs:  append([]float64(nil), m.ARCoeffs...),
		MACoeffs:  append([]float64(nil), m.MACoeffs...),
		Intercept: m.Intercept,
		Variance:  m.Variance,
		AIC:       m.AIC,
		AICc:      m.AICc,
		BIC:       m.BIC,
		LogLik:    m.LogLik,
		NObs:      m.nObs,
		LjungBox:  lb,
	}
}

// yuleWalker estimates AR coefficients from autocorrelations by
// Levinson-Durbin recursion.
func yuleWalker(acf []float64, order int) []float64 {
	if order <= 0 || len(acf) <= order {
		return nil
	}

	phi := make([]float64, order)
	phi[0] = acf[1]
	if order == 1 {
		return phi
	}

	v := 1 - phi[0]*phi[0]
	for i := 1; i < order; i++ {
		if v <= 0 {
			break
		}
		lambda := acf[i+1]
		for j := 0; j < i; j++ {
			lambda -= phi[j] * acf[i-j]
		}
		lambda /= v

		next := make([]float64, i+1)
		for j := 0; j < i; j++ {
			next[j] = phi[j] - lambda*phi[i-1-j]
		}
		next[i] = lambda
		copy(phi, next)

		v *= 1 - lambda*lambda
	}
	return phi
}
