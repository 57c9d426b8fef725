package forecast

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/Yuuki0u0/shuprophet/stats"
)

var errNonFiniteFit = errors.New("forecast: smoothing fit is not finite")

// ETSForecaster is additive Holt-Winters smoothing with an additive trend
// and, for histories of at least MinSeasonalLen points, an additive seasonal
// component of period min(MaxPeriod, n/3).
type ETSForecaster struct {
	MaxPeriod      int
	MinSeasonalLen int
}

// NewETS returns a forecaster with period at most 7, seasonal from 14
// points.
func NewETS() *ETSForecaster {
	return &ETSForecaster{MaxPeriod: 7, MinSeasonalLen: 14}
}

func (f *ETSForecaster) ID() ModelID { return ETS }

// Period returns the seasonal period used for a history of length n, or 0
// when the model has no seasonal component.
func (f *ETSForecaster) Period(n int) int {
	if n < f.MinSeasonalLen {
		return 0
	}
	m := min(f.MaxPeriod, n/3)
	if m < 2 || n < 2*m {
		return 0
	}
	return m
}

// Forecast fits the smoothing parameters by Nelder-Mead on the in-sample
// squared error.
func (f *ETSForecaster) Forecast(history []float64, horizon int) (*Result, error) {
	if err := checkInput(history, horizon); err != nil {
		return nil, err
	}

	m := f.Period(len(history))
	hw, err := fitHoltWinters(history, m)
	if err != nil {
		return fallback(ETS, history, horizon)
	}
	preds := hw.forecast(horizon)
	if !allFinite(preds) {
		return fallback(ETS, history, horizon)
	}

	seasonal := "none"
	if m > 0 {
		seasonal = "add"
	}
	return &Result{
		Model:       ETS,
		Method:      fmt.Sprintf("ETS(add,%s,%d)", seasonal, m),
		Predictions: preds,
		Meta: map[string]float64{
			"alpha": hw.alpha,
			"beta":  hw.beta,
			"gamma": hw.gamma,
			"sse":   hw.sse,
		},
	}, nil
}

// holtWinters holds the smoothing parameters and the final states of a fit.
type holtWinters struct {
	alpha, beta, gamma float64
	period             int
	n                  int
	level, trend       float64
	season             []float64
	sse                float64
}

// fitHoltWinters estimates the smoothing parameters by Nelder-Mead on the
// one-step squared error. Parameters are searched on the logit scale so
// that they stay inside (0, 1).
func fitHoltWinters(y []float64, period int) (*holtWinters, error) {
	dims := 2
	if period > 0 {
		dims = 3
	}
	init := []float64{logit(0.3), logit(0.1), logit(0.1)}[:dims]

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			hw := newHoltWinters(x, period)
			hw.run(y)
			return hw.sse
		},
	}
	result, err := optimize.Minimize(problem, init, &optimize.Settings{MajorIterations: 400}, &optimize.NelderMead{})
	if result == nil {
		return nil, fmt.Errorf("forecast: holt-winters optimisation: %w", err)
	}

	hw := newHoltWinters(result.X, period)
	hw.run(y)
	if math.IsNaN(hw.sse) || math.IsInf(hw.sse, 0) {
		return nil, errNonFiniteFit
	}
	return hw, nil
}

func newHoltWinters(x []float64, period int) *holtWinters {
	hw := &holtWinters{alpha: sigmoid(x[0]), beta: sigmoid(x[1]), period: period}
	if period > 0 {
		hw.gamma = sigmoid(x[2])
	}
	return hw
}

// initialize sets the states for time -1. With a seasonal component the
// level and trend come from the means of the first two cycles and the
// seasonal indices from the detrended first cycle.
func (hw *holtWinters) initialize(y []float64) {
	m := hw.period
	if m == 0 {
		hw.level = y[0] - (y[1] - y[0])
		hw.trend = y[1] - y[0]
		return
	}

	first := stats.Mean(y[:m])
	second := stats.Mean(y[m : 2*m])
	hw.trend = (second - first) / float64(m)

	center := float64(m-1) / 2
	hw.level = first - (center+1)*hw.trend
	hw.season = make([]float64, m)
	for i := 0; i < m; i++ {
		hw.season[i] = y[i] - (first + (float64(i)-center)*hw.trend)
	}
}

func (hw *holtWinters) run(y []float64) {
	hw.initialize(y)
	hw.n = len(y)
	hw.sse = 0

	for t, v := range y {
		s := 0.0
		if hw.period > 0 {
			s = hw.season[t%hw.period]
		}
		pred := hw.level + hw.trend + s
		e := v - pred
		hw.sse += e * e

		prevLevel, prevTrend := hw.level, hw.trend
		hw.level = hw.alpha*(v-s) + (1-hw.alpha)*(prevLevel+prevTrend)
		hw.trend = hw.beta*(hw.level-prevLevel) + (1-hw.beta)*prevTrend
		if hw.period > 0 {
			hw.season[t%hw.period] = hw.gamma*(v-prevLevel-prevTrend) + (1-hw.gamma)*s
		}
	}
}

func (hw *holtWinters) forecast(horizon int) []float64 {
	preds := make([]float64, horizon)
	for h := 1; h <= horizon; h++ {
		v := hw.level + float64(h)*hw.trend
		if hw.period > 0 {
			v += hw.season[(hw.n-1+h)%hw.period]
		}
		preds[h-1] = v
	}
	return preds
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
