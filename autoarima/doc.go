// Package autoarima selects an ARIMA order by grid search.
//
// Every (p, d, q) combination in the configured grid is fitted and the one
// with the lowest information criterion is kept:
//
//	result, err := autoarima.Search(values, autoarima.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("Best model: %s, AIC: %.2f\n", result.Order, result.AIC)
//	forecasts, _ := result.Predict(10)
//
// When no grid order can be fitted, typically because the series is too short
// for the larger orders, the fallback order is fitted instead and
// Result.UsedFallback is set.
package autoarima
