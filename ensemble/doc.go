// Package ensemble runs the forecaster bank, cross-validates it on a holdout
// and selects one model, with bootstrap prediction intervals.
//
// Selection is deliberately conservative. The default model, ARIMA unless
// configured otherwise, is kept unless cross-validation shows a competitor
// with less than SwitchRatio of its error. Cross-validation is skipped when
// the training prefix left after reserving max(MinHoldout, n/HoldoutDivisor)
// points is shorter than MinTrain.
//
//	sel := ensemble.NewSelector(ensemble.DefaultConfig(), ensemble.WithLogger(log))
//	res, err := sel.Select(ctx, history, 10)
//	if errors.Is(err, ensemble.ErrNoUsableForecast) {
//	    // every forecaster failed
//	}
//
// Forecasters run concurrently when Config.Parallel is set. Their results
// land in per-model slots, so the outcome is the same as a sequential run.
package ensemble
