// Package arima implements AutoRegressive Integrated Moving Average (ARIMA) models.
//
// An ARIMA(p,d,q) model combines:
//   - AR(p): AutoRegressive component with p lags
//   - I(d): Integration (differencing) of order d
//   - MA(q): Moving Average component with q lags
//
// Parameters are estimated by conditional sum of squares, starting the AR
// terms from Yule-Walker estimates and refining all terms with Nelder-Mead.
//
//	model := arima.New(1, 1, 0)
//	if err := model.Fit(values); err != nil {
//	    return err
//	}
//	fmt.Printf("AIC: %.2f, BIC: %.2f\n", model.AIC, model.BIC)
//	forecasts, _ := model.Predict(10)
//
// The residual variance is floored at a small positive value, so an exact fit
// receives a very low AIC instead of an undefined one.
//
// For automatic order selection, use the autoarima package.
package arima
