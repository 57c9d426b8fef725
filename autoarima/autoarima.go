// Package autoarima implements automatic ARIMA model selection.
package autoarima

import (
	"errors"
	"fmt"
	"math"

	"github.com/Yuuki0u0/shuprophet/arima"
)

// ErrNoModel is returned when neither the grid nor the fallback order fits.
var ErrNoModel = errors.New("autoarima: no candidate order could be fitted")

// Config holds configuration for the order search.
type Config struct {
	PValues   []int       // AR orders to try
	DValues   []int       // differencing orders to try
	QValues   []int       // MA orders to try
	Criterion string      // "aic", "aicc" or "bic" (default: "aic")
	Fallback  arima.Order // tried when no grid order fits
}

// DefaultConfig searches p in {1,2,3,5}, d in {0,1}, q in {0,1} by AIC and
// falls back to ARIMA(1,1,0).
func DefaultConfig() *Config {
	return &Config{
		PValues:   []int{1, 2, 3, 5},
		DValues:   []int{0, 1},
		QValues:   []int{0, 1},
		Criterion: "aic",
		Fallback:  arima.Order{P: 1, D: 1, Q: 0},
	}
}

// Result represents the selected model.
type Result struct {
	Model *arima.Model
	Order arima.Order

	AIC       float64
	BIC       float64
	LogLik    float64
	Criterion float64

	ModelsEvaluated int
	// UsedFallback is set when no grid order fitted and the fallback order was used.
	UsedFallback bool
}

// Search fits every grid order and keeps the one with the lowest criterion.
// Ties keep the earlier order in p, d, q iteration order.
func Search(values []float64, config *Config) (*Result, error) {
	if config == nil {
		config = DefaultConfig()
	}

	best := &Result{Criterion: math.Inf(1)}
	for _, p := range config.PValues {
		for _, d := range config.DValues {
			for _, q := range config.QValues {
				model := arima.New(p, d, q)
				if err := model.Fit(values); err != nil {
					continue
				}
				best.ModelsEvaluated++

				criterion := criterionOf(model, config.Criterion)
				if math.IsNaN(criterion) {
					continue
				}
				if best.Model == nil || criterion < best.Criterion {
					best.Model = model
					best.Order = model.Order
					best.Criterion = criterion
				}
			}
		}
	}

	if best.Model == nil {
		fb := config.Fallback
		model := arima.New(fb.P, fb.D, fb.Q)
		if err := model.Fit(values); err != nil {
			return nil, fmt.Errorf("%w: fallback %s: %v", ErrNoModel, fb, err)
		}
		best.Model = model
		best.Order = fb
		best.Criterion = criterionOf(model, config.Criterion)
		best.UsedFallback = true
	}

	best.AIC = best.Model.AIC
	best.BIC = best.Model.BIC
	best.LogLik = best.Model.LogLik
	return best, nil
}

func criterionOf(model *arima.Model, name string) float64 {
	switch name {
	case "bic":
		return model.BIC
	case "aicc":
		return model.AICc
	default:
		return model.AIC
	}
}

// Predict generates forecasts using the selected model.
func (r *Result) Predict(steps int) ([]float64, error) {
	if r.Model == nil {
		return nil, arima.ErrNotFitted
	}
	return r.Model.Predict(steps)
}

// Residuals returns the selected model's residuals.
func (r *Result) Residuals() []float64 {
	if r.Model == nil {
		return nil
	}
	return r.Model.Residuals()
}
