package forecast

import (
	"github.com/Yuuki0u0/shuprophet/stats"
)

// ThetaForecaster combines a simple exponential smoothing level with the
// slope of an independent linear fit: prediction i is level + slope*i.
type ThetaForecaster struct {
	Alpha float64
}

// NewTheta returns a forecaster with smoothing weight 0.5.
func NewTheta() *ThetaForecaster {
	return &ThetaForecaster{Alpha: 0.5}
}

func (f *ThetaForecaster) ID() ModelID { return Theta }

// Forecast needs no fitting, so it only fails on invalid input.
func (f *ThetaForecaster) Forecast(history []float64, horizon int) (*Result, error) {
	if err := checkInput(history, horizon); err != nil {
		return nil, err
	}

	level := history[0]
	for _, v := range history[1:] {
		level = f.Alpha*v + (1-f.Alpha)*level
	}

	line, err := stats.LinearFit(history)
	if err != nil {
		return fallback(Theta, history, horizon)
	}

	preds := make([]float64, horizon)
	for i := range preds {
		preds[i] = level + line.Slope*float64(i+1)
	}
	return &Result{
		Model:       Theta,
		Method:      "Theta",
		Predictions: preds,
		Meta:        map[string]float64{"level": level, "slope": line.Slope},
	}, nil
}
