package stats

import (
	"math"

	"github.com/Yuuki0u0/shuprophet/timeseries"
)

// Differencing summarizes an order-th repeated first difference.
type Differencing struct {
	Order             int
	Differenced       []float64
	OriginalMean      float64
	DifferencedMean   float64
	DifferencedStd    float64
	VarianceReduction float64
}

// Difference applies the first difference order times. It fails when fewer
// than one observation would remain.
func Difference(values []float64, order int) (*Differencing, error) {
	if order < 1 {
		order = 1
	}
	if len(values) <= order {
		return nil, ErrInsufficientData
	}

	d := timeseries.Difference(values, order)

	return &Differencing{
		Order:             order,
		Differenced:       d,
		OriginalMean:      Mean(values),
		DifferencedMean:   Mean(d),
		DifferencedStd:    PopStd(d),
		VarianceReduction: 1 - PopVar(d)/math.Max(PopVar(values), 1e-10),
	}, nil
}

// NDiffs returns the number of first differences (0..maxD) needed before
// the KPSS level test stops rejecting stationarity. Differencing stops early
// once fewer than 10 observations would remain.
func NDiffs(values []float64, maxD int) int {
	if maxD <= 0 {
		maxD = 2
	}

	current := values
	for d := 0; d < maxD; d++ {
		if len(current) < 2 {
			return d
		}
		res, err := KPSS(current, "c", -1)
		if err == nil && res.IsStationary {
			return d
		}

		next := timeseries.Difference(current, 1)
		if len(next) < 10 {
			return d
		}
		current = next
	}
	return maxD
}
