// Package forecast implements the point forecasters of the model bank:
// ARIMA with grid-searched orders, additive Holt-Winters smoothing, a theta
// style level-plus-slope model and clipped linear regression.
//
// Every forecaster degrades to a linear extrapolation of the history when its
// own fit fails; the result's Fallback flag records that.
package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/Yuuki0u0/shuprophet/stats"
)

var (
	// ErrInsufficientHistory is returned when fewer than two points are given.
	ErrInsufficientHistory = errors.New("forecast: at least 2 points are required")
	// ErrInvalidHorizon is returned for a non-positive horizon.
	ErrInvalidHorizon = errors.New("forecast: horizon must be positive")
)

// ModelID identifies a forecaster.
type ModelID string

const (
	ARIMA  ModelID = "arima"
	ETS    ModelID = "ets"
	Theta  ModelID = "theta"
	Linear ModelID = "linear"
)

// FallbackMethod names the linear extrapolation used when a fit fails.
const FallbackMethod = "fallback_linear"

// Result is the output of one forecaster.
type Result struct {
	Model       ModelID            `json:"model"`
	Method      string             `json:"method"`
	Predictions []float64          `json:"predictions"`
	Meta        map[string]float64 `json:"meta,omitempty"`
	Fallback    bool               `json:"fallback"`
}

// Forecaster fits a history and predicts horizon future points.
type Forecaster interface {
	ID() ModelID
	Forecast(history []float64, horizon int) (*Result, error)
}

// Bank returns the four forecasters in their fixed evaluation order.
func Bank() []Forecaster {
	return []Forecaster{
		NewARIMA(nil),
		NewETS(),
		NewTheta(),
		NewLinear(),
	}
}

func checkInput(history []float64, horizon int) error {
	if horizon < 1 {
		return ErrInvalidHorizon
	}
	if len(history) < 2 {
		return ErrInsufficientHistory
	}
	return nil
}

// Extrapolate continues the least-squares line through history for horizon
// steps.
func Extrapolate(history []float64, horizon int) ([]float64, error) {
	if err := checkInput(history, horizon); err != nil {
		return nil, err
	}
	line, err := stats.LinearFit(history)
	if err != nil {
		return nil, fmt.Errorf("forecast: linear extrapolation: %w", err)
	}

	n := len(history)
	preds := make([]float64, horizon)
	for i := range preds {
		preds[i] = line.At(float64(n + i))
	}
	return preds, nil
}

// fallback builds the degraded result for model.
func fallback(model ModelID, history []float64, horizon int) (*Result, error) {
	preds, err := Extrapolate(history, horizon)
	if err != nil {
		return nil, err
	}
	return &Result{Model: model, Method: FallbackMethod, Predictions: preds, Fallback: true}, nil
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
