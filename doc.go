// Package shuprophet forecasts univariate time series with a profile-driven
// reasoning loop and a cross-validated model ensemble.
//
// A session runs in four phases:
//
//   - Ground: trend, volatility, stationarity and correlation analysis build
//     the baseline profile.
//   - Reason: rules over the profile pick further analyses (anomaly,
//     spectrum, multiscale, seasonal decomposition, differencing,
//     changepoints) within a step budget.
//   - Ensemble: ARIMA, ETS, Theta and linear forecasters are scored on a
//     holdout. ARIMA is kept unless another model cuts its holdout error by
//     at least 80%, and bootstrap bounds are attached.
//   - Correct: the mean holdout bias is removed from the forecast.
//
// # Packages
//
//   - timeseries: the Series type and CSV / list parsing
//   - stats: descriptive statistics, ACF/PACF, ADF and KPSS, normality and
//     trend tests, spectra, decomposition, changepoints
//   - outlier: sigma, isolation forest and local outlier factor detectors
//   - arima, autoarima: ARIMA fitting and order search
//   - forecast: the forecaster bank
//   - ensemble: holdout scoring, conservative selection and bootstrap bounds
//   - analysis: the profiling tools and their registry
//   - reasoning: the session engine
//   - validate: range, trend and confidence checks on a finished forecast
//   - session, metrics, config, logging: result store, Prometheus metrics,
//     settings and logger construction
//
// # Quick Start
//
//	engine := reasoning.New(reasoning.DefaultConfig())
//	res, err := engine.Predict(ctx, history, 12)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Model, res.Predictions, res.Lower, res.Upper)
//
// The shuprophet command in cmd/shuprophet wraps the engine:
//
//	shuprophet predict --file data.csv --column y --horizon 12 --format yaml
package shuprophet
