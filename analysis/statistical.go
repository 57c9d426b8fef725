package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/Yuuki0u0/shuprophet/outlier"
	"github.com/Yuuki0u0/shuprophet/stats"
)

const significance = 0.05

// TrendObservation reports the OLS line and the Mann-Kendall test.
type TrendObservation struct {
	Header
	Direction    string  `json:"direction"`
	Slope        float64 `json:"slope"`
	RSquared     float64 `json:"r_squared"`
	MannKendallZ float64 `json:"mann_kendall_z"`
	MannKendallP float64 `json:"mann_kendall_p"`
	Significant  bool    `json:"significant"`
}

// TrendTool classifies the trend of a series.
type TrendTool struct{}

func (TrendTool) Metadata() Metadata {
	return Metadata{
		ID:          Trend,
		Category:    Statistical,
		Description: "Mann-Kendall trend test with linear regression. Use when you need to determine trend direction and significance.",
		Triggers:    []string{"trend", "direction", "slope"},
	}
}

// Run classifies the direction as increasing or decreasing when the
// Mann-Kendall p-value is below 0.05, otherwise no_trend.
func (TrendTool) Run(values []float64) (Observation, error) {
	line, err := stats.LinearFit(values)
	if err != nil {
		return nil, err
	}
	mk, err := stats.MannKendall(values)
	if err != nil {
		return nil, err
	}

	direction := "no_trend"
	if mk.PValue < significance {
		direction = "increasing"
		if mk.Z < 0 {
			direction = "decreasing"
		}
	}
	return &TrendObservation{
		Header:       Header{Trend},
		Direction:    direction,
		Slope:        stats.Round(line.Slope, 6),
		RSquared:     stats.Round4(line.RSquared),
		MannKendallZ: stats.Round4(mk.Z),
		MannKendallP: stats.Round4(mk.PValue),
		Significant:  mk.PValue < significance,
	}, nil
}

// VolatilityObservation reports dispersion and its clustering.
type VolatilityObservation struct {
	Header
	Level                string    `json:"level"`
	Std                  float64   `json:"std"`
	CV                   Unbounded `json:"cv"`
	VolatilityClustering float64   `json:"volatility_clustering"`
	RollingStdMean       float64   `json:"rolling_std_mean"`
	RollingStdTrend      string    `json:"rolling_std_trend"`
}

// VolatilityTool profiles dispersion and volatility clustering.
type VolatilityTool struct{}

func (VolatilityTool) Metadata() Metadata {
	return Metadata{
		ID:          Volatility,
		Category:    Statistical,
		Description: "Volatility profiling with rolling stats and clustering detection. Use for high-variance or heteroscedastic data.",
		Triggers:    []string{"volatility", "variance", "unstable"},
	}
}

// Run buckets the coefficient of variation: high above 0.3, medium above
// 0.1, otherwise low. A mean within 1e-10 of zero gives an infinite cv and
// therefore high volatility.
func (VolatilityTool) Run(values []float64) (Observation, error) {
	n := len(values)
	if n == 0 {
		return nil, ErrEmptySeries
	}
	mean := stats.Mean(values)
	std := stats.PopStd(values)

	cv := math.Inf(1)
	if math.Abs(mean) > 1e-10 {
		cv = std / math.Abs(mean)
	}
	level := "low"
	switch {
	case cv > 0.3:
		level = "high"
	case cv > 0.1:
		level = "medium"
	}

	// Windows end before the last observation.
	window := max(3, min(20, n/4))
	var rolling []float64
	if n-1 >= window {
		rolling = stats.RollingStd(values[:n-1], window)
	}
	rollingMean := 0.0
	if len(rolling) > 0 {
		rollingMean = stats.Mean(rolling)
	}
	rollingTrend := "stable"
	if len(rolling) > 1 && rolling[len(rolling)-1] > rolling[0] {
		rollingTrend = "increasing"
	}

	return &VolatilityObservation{
		Header:               Header{Volatility},
		Level:                level,
		Std:                  stats.Round4(std),
		CV:                   Unbounded(stats.Round4(cv)),
		VolatilityClustering: stats.Round4(volatilityClustering(values)),
		RollingStdMean:       stats.Round4(rollingMean),
		RollingStdTrend:      rollingTrend,
	}, nil
}

// volatilityClustering is the lag-1 correlation of squared first
// differences, or 0 when there are fewer than 6 differences or they are
// degenerate.
func volatilityClustering(values []float64) float64 {
	if len(values) <= 10 {
		return 0
	}
	sq := make([]float64, len(values)-1)
	for i := range sq {
		d := values[i+1] - values[i]
		sq[i] = d * d
	}
	if len(sq) <= 5 || stats.PopStd(sq) <= 1e-10 {
		return 0
	}
	r := stat.Correlation(sq[:len(sq)-1], sq[1:], nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// AnomalyObservation reports per-detector counts and the consensus set.
type AnomalyObservation struct {
	Header
	TotalPoints          int     `json:"total_points"`
	SigmaCount           int     `json:"sigma_count"`
	IsolationForestCount int     `json:"isolation_forest_count"`
	LOFCount             int     `json:"lof_count"`
	ConsensusAnomalies   []int   `json:"consensus_anomalies"`
	ConsensusCount       int     `json:"consensus_count"`
	AnomalyRatio         float64 `json:"anomaly_ratio"`
}

// AnomalyTool votes three detectors. The isolation forest and LOF only run
// on series of at least MinPoints observations.
type AnomalyTool struct {
	MinPoints    int
	MaxReported  int
	Sigma        *outlier.Sigma
	Forest       *outlier.IsolationForest
	LocalOutlier *outlier.LOF
}

// NewAnomalyTool reports at most 20 anomalies and runs every detector
// from 10 points.
func NewAnomalyTool() *AnomalyTool {
	return &AnomalyTool{
		MinPoints:    10,
		MaxReported:  20,
		Sigma:        outlier.NewSigma(),
		Forest:       outlier.NewIsolationForest(),
		LocalOutlier: outlier.NewLOF(),
	}
}

func (*AnomalyTool) Metadata() Metadata {
	return Metadata{
		ID:          Anomaly,
		Category:    Statistical,
		Description: "Multi-method anomaly detection (3-sigma, IsolationForest, LOF). Use when outliers may affect forecasting.",
		Triggers:    []string{"anomaly", "outlier", "spike"},
	}
}

// Run flags an index when at least two detectors agree.
func (t *AnomalyTool) Run(values []float64) (Observation, error) {
	n := len(values)
	if n == 0 {
		return nil, ErrEmptySeries
	}

	sigma := t.Sigma.Detect(values)
	forest, lof := []int{}, []int{}
	if n >= t.MinPoints {
		forest = t.Forest.Detect(values)
		lof = t.LocalOutlier.Detect(values)
	}
	consensus := outlier.Consensus(2, sigma, forest, lof)

	reported := consensus
	if len(reported) > t.MaxReported {
		reported = reported[:t.MaxReported]
	}
	return &AnomalyObservation{
		Header:               Header{Anomaly},
		TotalPoints:          n,
		SigmaCount:           len(sigma),
		IsolationForestCount: len(forest),
		LOFCount:             len(lof),
		ConsensusAnomalies:   reported,
		ConsensusCount:       len(consensus),
		AnomalyRatio:         stats.Round4(float64(len(consensus)) / float64(n)),
	}, nil
}

// StationarityObservation reports the ADF and KPSS tests and their verdict.
type StationarityObservation struct {
	Header
	Verdict        stats.Verdict `json:"verdict"`
	ADFStatistic   float64       `json:"adf_statistic"`
	ADFPValue      float64       `json:"adf_p_value"`
	ADFStationary  bool          `json:"adf_stationary"`
	KPSSStatistic  float64       `json:"kpss_statistic"`
	KPSSPValue     float64       `json:"kpss_p_value"`
	KPSSStationary bool          `json:"kpss_stationary"`
}

// StationarityTool combines ADF and KPSS into one verdict.
type StationarityTool struct{}

func (StationarityTool) Metadata() Metadata {
	return Metadata{
		ID:          Stationarity,
		Category:    Statistical,
		Description: "ADF + KPSS stationarity tests. Use to decide if differencing is needed before forecasting.",
		Triggers:    []string{"stationary", "unit_root", "differencing"},
	}
}

// Run never fails on numerical grounds: an ADF failure counts as
// non-stationary (statistic 0, p 1) and a KPSS failure as stationary
// (statistic 0, p 0).
func (StationarityTool) Run(values []float64) (Observation, error) {
	if len(values) == 0 {
		return nil, ErrEmptySeries
	}

	obs := &StationarityObservation{Header: Header{Stationarity}, ADFPValue: 1, KPSSStationary: true}
	if adf, err := stats.ADF(values, 0); err == nil {
		obs.ADFStatistic = stats.Round4(adf.Statistic)
		obs.ADFPValue = stats.Round4(adf.PValue)
		obs.ADFStationary = adf.IsStationary
	}
	if kpss, err := stats.KPSS(values, "c", -1); err == nil {
		obs.KPSSStatistic = stats.Round4(kpss.Statistic)
		obs.KPSSPValue = stats.Round4(kpss.PValue)
		obs.KPSSStationary = kpss.IsStationary
	}
	obs.Verdict = stats.CombineVerdict(obs.ADFStationary, obs.KPSSStationary)
	return obs, nil
}

// DistributionObservation reports normality tests and shape moments.
type DistributionObservation struct {
	Header
	IsNormal         bool    `json:"is_normal"`
	ShapiroP         float64 `json:"shapiro_p"`
	KSP              float64 `json:"ks_p"`
	Skewness         float64 `json:"skewness"`
	Kurtosis         float64 `json:"kurtosis"`
	DistributionHint string  `json:"distribution_hint"`
}

// DistributionTool tests normality and measures shape.
type DistributionTool struct{}

func (DistributionTool) Metadata() Metadata {
	return Metadata{
		ID:          Distribution,
		Category:    Statistical,
		Description: "Shapiro-Wilk + KS normality tests with skewness/kurtosis. Use to understand data distribution shape.",
		Triggers:    []string{"distribution", "normal", "skew"},
	}
}

// Run treats a failed test as p = 0. The hint is normal when Shapiro-Wilk
// does not reject, else heavy_tailed (excess kurtosis > 1), skewed
// (|skewness| > 1) or non_normal, in that order.
func (DistributionTool) Run(values []float64) (Observation, error) {
	if len(values) == 0 {
		return nil, ErrEmptySeries
	}

	swP := 0.0
	if sw, err := stats.ShapiroWilk(values); err == nil {
		swP = sw.PValue
	}
	ksP := 0.0
	if ks, err := stats.KSNormal(values, stats.Mean(values), stats.PopStd(values)); err == nil {
		ksP = ks.PValue
	}
	skew := stats.Skewness(values)
	kurt := stats.Kurtosis(values)

	hint := "non_normal"
	switch {
	case swP > significance:
		hint = "normal"
	case kurt > 1:
		hint = "heavy_tailed"
	case math.Abs(skew) > 1:
		hint = "skewed"
	}
	return &DistributionObservation{
		Header:           Header{Distribution},
		IsNormal:         swP > significance && ksP > significance,
		ShapiroP:         stats.Round4(swP),
		KSP:              stats.Round4(ksP),
		Skewness:         stats.Round4(skew),
		Kurtosis:         stats.Round4(kurt),
		DistributionHint: hint,
	}, nil
}

// ChangepointObservation reports binary segmentation breaks.
type ChangepointObservation struct {
	Header
	Changepoints []int     `json:"changepoints"`
	Count        int       `json:"count"`
	SegmentMeans []float64 `json:"segment_means"`
}

// ChangepointTool finds level shifts by binary segmentation.
type ChangepointTool struct{}

func (ChangepointTool) Metadata() Metadata {
	return Metadata{
		ID:          Changepoint,
		Category:    Statistical,
		Description: "Binary segmentation changepoint detection. Use when regime shifts or structural breaks are suspected.",
		Triggers:    []string{"changepoint", "regime", "shift", "break"},
	}
}

// Run finds no changepoints in series shorter than 10, which then form a
// single segment.
func (ChangepointTool) Run(values []float64) (Observation, error) {
	if len(values) == 0 {
		return nil, ErrEmptySeries
	}
	seg := stats.BinarySegmentation(values)
	return &ChangepointObservation{
		Header:       Header{Changepoint},
		Changepoints: seg.Changepoints,
		Count:        len(seg.Changepoints),
		SegmentMeans: stats.RoundAll(seg.SegmentMeans),
	}, nil
}

// CorrelationObservation reports the autocorrelation structure.
type CorrelationObservation struct {
	Header
	DominantLag     int       `json:"dominant_lag"`
	ACFTop5         []float64 `json:"acf_top5"`
	PACFTop5        []float64 `json:"pacf_top5"`
	SignificantLags []int     `json:"significant_lags"`
	HasSeasonality  bool      `json:"has_seasonality"`
	EstimatedPeriod int       `json:"estimated_period"`
	ConfidenceBound float64   `json:"confidence_bound"`
}

// CorrelationTool reports significant ACF and PACF lags and seasonality.
type CorrelationTool struct{}

func (CorrelationTool) Metadata() Metadata {
	return Metadata{
		ID:          Correlation,
		Category:    Statistical,
		Description: "ACF/PACF analysis with seasonality detection. Use to identify autocorrelation structure and periodicity.",
		Triggers:    []string{"correlation", "seasonality", "period", "lag"},
	}
}

// Run uses lags up to min(40, n/3). Seasonality needs at least two ACF
// peaks above 1.96/sqrt(n); the first one is the estimated period. A
// constant series has no autocorrelation structure.
func (CorrelationTool) Run(values []float64) (Observation, error) {
	n := len(values)
	if n == 0 {
		return nil, ErrEmptySeries
	}
	bound := stats.ConfidenceBound(n)
	obs := &CorrelationObservation{
		Header:          Header{Correlation},
		ACFTop5:         []float64{},
		PACFTop5:        []float64{},
		SignificantLags: []int{},
		ConfidenceBound: stats.Round4(bound),
	}

	maxLag := min(40, n/3)
	if maxLag < 2 {
		return obs, nil
	}
	acf := stats.ACF(values, maxLag)
	if acf == nil {
		return obs, nil
	}
	pacf := stats.PACF(values, maxLag)
	if pacf == nil {
		pacf = make([]float64, len(acf))
	}

	if lags := stats.SignificantLags(acf, bound); len(lags) > 0 {
		obs.DominantLag = lags[0]
		obs.SignificantLags = lags[:min(10, len(lags))]
	}
	obs.ACFTop5 = stats.RoundAll(acf[1:min(6, len(acf))])
	obs.PACFTop5 = stats.RoundAll(pacf[1:min(6, len(pacf))])

	peaks := stats.LocalPeaks(acf, 2, bound)
	obs.HasSeasonality = len(peaks) >= 2
	if len(peaks) > 0 {
		obs.EstimatedPeriod = peaks[0]
	}
	return obs, nil
}
