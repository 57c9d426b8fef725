package forecast

import (
	"github.com/Yuuki0u0/shuprophet/autoarima"
)

// ARIMAForecaster selects an ARIMA order by information criterion and
// forecasts with it.
type ARIMAForecaster struct {
	config *autoarima.Config
}

// NewARIMA returns the ARIMA forecaster. A nil config uses
// autoarima.DefaultConfig.
func NewARIMA(config *autoarima.Config) *ARIMAForecaster {
	if config == nil {
		config = autoarima.DefaultConfig()
	}
	return &ARIMAForecaster{config: config}
}

func (f *ARIMAForecaster) ID() ModelID { return ARIMA }

// Forecast reports the selected order as the method, with the fit's AIC and,
// when available, the Ljung-Box p-value of its residuals.
func (f *ARIMAForecaster) Forecast(history []float64, horizon int) (*Result, error) {
	if err := checkInput(history, horizon); err != nil {
		return nil, err
	}

	selected, err := autoarima.Search(history, f.config)
	if err != nil {
		return fallback(ARIMA, history, horizon)
	}
	preds, err := selected.Predict(horizon)
	if err != nil || !allFinite(preds) {
		return fallback(ARIMA, history, horizon)
	}

	meta := map[string]float64{"aic": selected.AIC}
	if summary := selected.Model.Summary(); summary != nil && summary.LjungBox != nil {
		meta["ljung_box_p"] = summary.LjungBox.PValue
	}
	return &Result{
		Model:       ARIMA,
		Method:      selected.Order.String(),
		Predictions: preds,
		Meta:        meta,
	}, nil
}
