package analysis

import (
	"github.com/Yuuki0u0/shuprophet/stats"
)

// SeasonalObservation reports an additive decomposition.
type SeasonalObservation struct {
	Header
	Period           int     `json:"period"`
	TrendStrength    float64 `json:"trend_strength"`
	SeasonalStrength float64 `json:"seasonal_strength"`
	ResidualStd      float64 `json:"residual_std"`
	TrendDirection   string  `json:"trend_direction"`
}

// SeasonalTool decomposes with Period, or an estimated period when Period
// is zero.
type SeasonalTool struct {
	Period int
}

func (SeasonalTool) Metadata() Metadata {
	return Metadata{
		ID:          Seasonal,
		Category:    Decomposition,
		Description: "Additive seasonal decomposition into trend, seasonal, residual. Use to understand data structure.",
		Triggers:    []string{"decompose", "seasonal", "trend_seasonal"},
	}
}

// Run reports the component strengths and whether the trend ends above
// where it starts.
func (t SeasonalTool) Run(values []float64) (Observation, error) {
	if len(values) == 0 {
		return nil, ErrEmptySeries
	}
	dec, err := stats.Decompose(values, t.Period)
	if err != nil {
		return nil, err
	}

	direction := "down"
	if dec.Trend[len(dec.Trend)-1] > dec.Trend[0] {
		direction = "up"
	}
	return &SeasonalObservation{
		Header:           Header{Seasonal},
		Period:           dec.Period,
		TrendStrength:    stats.Round4(dec.TrendStrength(values)),
		SeasonalStrength: stats.Round4(dec.SeasonalStrength(values)),
		ResidualStd:      stats.Round4(stats.PopStd(dec.Residual)),
		TrendDirection:   direction,
	}, nil
}

// DifferencingObservation reports the effect of differencing.
type DifferencingObservation struct {
	Header
	Order             int     `json:"order"`
	OriginalMean      float64 `json:"original_mean"`
	DifferencedMean   float64 `json:"differenced_mean"`
	DifferencedStd    float64 `json:"differenced_std"`
	VarianceReduction float64 `json:"variance_reduction"`
	RecommendedOrder  int     `json:"recommended_order"`
}

// DifferencingTool differences Order times (default 1) and recommends an
// order from repeated KPSS tests.
type DifferencingTool struct {
	Order int
}

func (DifferencingTool) Metadata() Metadata {
	return Metadata{
		ID:          Differencing,
		Category:    Decomposition,
		Description: "Differencing transform for non-stationary series. Use when stationarity test fails.",
		Triggers:    []string{"difference", "non_stationary", "integrate"},
	}
}

// Run reports the moments of the differenced series and its variance
// reduction.
func (t DifferencingTool) Run(values []float64) (Observation, error) {
	if len(values) == 0 {
		return nil, ErrEmptySeries
	}
	order := max(t.Order, 1)
	d, err := stats.Difference(values, order)
	if err != nil {
		return nil, err
	}
	return &DifferencingObservation{
		Header:            Header{Differencing},
		Order:             d.Order,
		OriginalMean:      stats.Round4(d.OriginalMean),
		DifferencedMean:   stats.Round4(d.DifferencedMean),
		DifferencedStd:    stats.Round4(d.DifferencedStd),
		VarianceReduction: stats.Round4(d.VarianceReduction),
		RecommendedOrder:  stats.NDiffs(values, 2),
	}, nil
}
