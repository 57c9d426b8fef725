package forecast

import (
	"math"

	"github.com/Yuuki0u0/shuprophet/stats"
)

// LinearForecaster extrapolates a degree-1 fit and clips the result to
// mean +/- ClipSigmas standard deviations of the history.
type LinearForecaster struct {
	ClipSigmas float64
}

// NewLinear clips at four standard deviations.
func NewLinear() *LinearForecaster {
	return &LinearForecaster{ClipSigmas: 4}
}

func (f *LinearForecaster) ID() ModelID { return Linear }

// Forecast clips the extrapolated line.
func (f *LinearForecaster) Forecast(history []float64, horizon int) (*Result, error) {
	raw, err := Extrapolate(history, horizon)
	if err != nil {
		return nil, err
	}

	mean := stats.Mean(history)
	std := max(stats.PopStd(history), 1e-10)
	lo, hi := mean-f.ClipSigmas*std, mean+f.ClipSigmas*std

	preds := make([]float64, len(raw))
	for i, v := range raw {
		preds[i] = math.Max(lo, math.Min(hi, v))
	}
	return &Result{
		Model:       Linear,
		Method:      "Linear",
		Predictions: preds,
		Meta:        map[string]float64{"clip_lower": lo, "clip_upper": hi},
	}, nil
}
