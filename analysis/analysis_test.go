package analysis

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/Yuuki0u0/shuprophet/stats"
)

func linear(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func sine(n int, period float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * float64(i) / period)
	}
	return out
}

func runTool[T Observation](t *testing.T, tool Tool, values []float64) T {
	t.Helper()
	obs, err := tool.Run(values)
	require.NoError(t, err)
	typed, ok := obs.(T)
	require.True(t, ok, "unexpected observation type %T", obs)
	return typed
}

func TestTrendIncreasing(t *testing.T) {
	obs := runTool[*TrendObservation](t, TrendTool{}, linear(20))
	assert.Equal(t, Trend, obs.ToolID())
	assert.Equal(t, "increasing", obs.Direction)
	assert.True(t, obs.Significant)
	assert.InDelta(t, 1.0, obs.Slope, 1e-9)
	assert.InDelta(t, 1.0, obs.RSquared, 1e-9)
	assert.Less(t, obs.MannKendallP, 0.05)
}

func TestTrendDecreasing(t *testing.T) {
	values := linear(20)
	for i := range values {
		values[i] = -values[i]
	}
	obs := runTool[*TrendObservation](t, TrendTool{}, values)
	assert.Equal(t, "decreasing", obs.Direction)
	assert.Less(t, obs.MannKendallZ, 0.0)
}

func TestVolatilityConstant(t *testing.T) {
	obs := runTool[*VolatilityObservation](t, VolatilityTool{}, constant(20, 5))
	assert.Equal(t, "low", obs.Level)
	assert.Equal(t, Unbounded(0), obs.CV)
	assert.Equal(t, 0.0, obs.VolatilityClustering)
	assert.Equal(t, "stable", obs.RollingStdTrend)
}

func TestVolatilityZeroMeanIsHigh(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 1
		if i%2 == 1 {
			values[i] = -1
		}
	}
	obs := runTool[*VolatilityObservation](t, VolatilityTool{}, values)
	assert.Equal(t, "high", obs.Level)
	assert.True(t, obs.CV.IsInf())

	raw, err := json.Marshal(obs)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"cv":null`)
	assert.Contains(t, string(raw), `"tool":"volatility_analysis"`)
}

func TestAnomalyConsensus(t *testing.T) {
	values := sine(50, 10)
	values[25] = 20

	obs := runTool[*AnomalyObservation](t, NewAnomalyTool(), values)
	assert.Equal(t, 50, obs.TotalPoints)
	assert.Contains(t, obs.ConsensusAnomalies, 25)
	assert.Equal(t, len(obs.ConsensusAnomalies), obs.ConsensusCount)
	assert.InDelta(t, float64(obs.ConsensusCount)/50, obs.AnomalyRatio, 1e-4)
}

func TestAnomalySmallSeriesSkipsModels(t *testing.T) {
	obs := runTool[*AnomalyObservation](t, NewAnomalyTool(), []float64{1, 2, 3, 2, 1})
	assert.Zero(t, obs.IsolationForestCount)
	assert.Zero(t, obs.LOFCount)
	assert.Empty(t, obs.ConsensusAnomalies)
	assert.NotNil(t, obs.ConsensusAnomalies)
}

func TestStationarityVerdictIsDeterministic(t *testing.T) {
	verdicts := []stats.Verdict{
		stats.VerdictStationary,
		stats.VerdictNonStationary,
		stats.VerdictTrendStationary,
		stats.VerdictDifferenceStationary,
	}
	for _, values := range [][]float64{linear(20), constant(20, 5), sine(60, 12), {1, 2}} {
		first := runTool[*StationarityObservation](t, StationarityTool{}, values)
		second := runTool[*StationarityObservation](t, StationarityTool{}, values)
		assert.Contains(t, verdicts, first.Verdict)
		assert.Equal(t, first, second)
	}
}

func TestStationarityShortSeriesDefaults(t *testing.T) {
	obs := runTool[*StationarityObservation](t, StationarityTool{}, []float64{1, 2, 3})
	assert.False(t, obs.ADFStationary)
	assert.Equal(t, 1.0, obs.ADFPValue)
	assert.True(t, obs.KPSSStationary)
	assert.Equal(t, stats.VerdictDifferenceStationary, obs.Verdict)
}

func TestDistributionConstant(t *testing.T) {
	obs := runTool[*DistributionObservation](t, DistributionTool{}, constant(20, 5))
	assert.False(t, obs.IsNormal)
	assert.Equal(t, 0.0, obs.Skewness)
	assert.Equal(t, 0.0, obs.Kurtosis)
	assert.Equal(t, "non_normal", obs.DistributionHint)
}

func TestChangepointSingleRegime(t *testing.T) {
	obs := runTool[*ChangepointObservation](t, ChangepointTool{}, constant(30, 5))
	assert.Empty(t, obs.Changepoints)
	assert.Zero(t, obs.Count)
	assert.Equal(t, []float64{5}, obs.SegmentMeans)
}

func TestChangepointStep(t *testing.T) {
	values := append(constant(30, 0), constant(30, 10)...)
	obs := runTool[*ChangepointObservation](t, ChangepointTool{}, values)
	assert.Equal(t, []int{30}, obs.Changepoints)
	assert.Equal(t, []float64{0, 10}, obs.SegmentMeans)
}

func TestCorrelationSeasonality(t *testing.T) {
	obs := runTool[*CorrelationObservation](t, CorrelationTool{}, sine(90, 10))
	assert.True(t, obs.HasSeasonality)
	assert.Equal(t, 10, obs.EstimatedPeriod)
	assert.Equal(t, 1, obs.DominantLag)
	assert.Len(t, obs.ACFTop5, 5)
	assert.Len(t, obs.PACFTop5, 5)
	assert.LessOrEqual(t, len(obs.SignificantLags), 10)
	assert.InDelta(t, 1.96/math.Sqrt(90), obs.ConfidenceBound, 1e-4)
}

func TestCorrelationConstant(t *testing.T) {
	obs := runTool[*CorrelationObservation](t, CorrelationTool{}, constant(20, 5))
	assert.False(t, obs.HasSeasonality)
	assert.Zero(t, obs.DominantLag)
	assert.Empty(t, obs.ACFTop5)
	assert.NotNil(t, obs.SignificantLags)
}

func TestSpectrumDominantPeriod(t *testing.T) {
	obs := runTool[*SpectrumObservation](t, SpectrumTool{TopK: 5}, sine(100, 10))
	require.NotEmpty(t, obs.DominantPeriods)
	assert.Equal(t, 10.0, obs.DominantPeriods[0].Period)
	assert.Equal(t, 0.1, obs.DominantPeriods[0].Frequency)
	assert.True(t, obs.HasStrongPeriodicity)
	assert.LessOrEqual(t, len(obs.DominantPeriods), 5)
}

func TestMultiscaleAlternating(t *testing.T) {
	values := make([]float64, 16)
	for i := range values {
		values[i] = 1
		if i%2 == 1 {
			values[i] = -1
		}
	}
	obs := runTool[*MultiscaleObservation](t, MultiscaleTool{MaxLevel: 4}, values)
	require.Len(t, obs.Levels, 3)
	assert.Equal(t, 1, obs.DominantScale)
	assert.InDelta(t, 16.0, obs.TotalEnergy, 1e-9)
	assert.InDelta(t, 1.0, obs.Levels[0].EnergyRatio, 1e-4)
	assert.Equal(t, 8, obs.Levels[0].DetailLen)
	assert.Equal(t, 2, obs.Levels[2].DetailLen)
}

func TestMultiscaleTooShort(t *testing.T) {
	obs := runTool[*MultiscaleObservation](t, MultiscaleTool{}, []float64{1, 2, 3})
	assert.Empty(t, obs.Levels)
	assert.Zero(t, obs.DominantScale)
}

func TestPeriodogramPeak(t *testing.T) {
	obs := runTool[*PeriodogramObservation](t, PeriodogramTool{}, sine(128, 8))
	assert.Equal(t, 64, obs.Nperseg)
	require.NotEmpty(t, obs.Peaks)
	assert.Equal(t, 8.0, obs.Peaks[0].Period)
	assert.Greater(t, obs.TotalPower, 0.0)

	psd := stats.Welch(sine(128, 8), 64)
	assert.Equal(t, stats.Round4(floats.Sum(psd.Power[1:])), obs.TotalPower)
}

func TestSeasonalDecomposition(t *testing.T) {
	values := sine(60, 10)
	for i := range values {
		values[i] += 0.5 * float64(i)
	}
	obs := runTool[*SeasonalObservation](t, SeasonalTool{Period: 10}, values)
	assert.Equal(t, 10, obs.Period)
	assert.Equal(t, "up", obs.TrendDirection)
}

func TestDifferencingLinear(t *testing.T) {
	obs := runTool[*DifferencingObservation](t, DifferencingTool{Order: 1}, linear(20))
	assert.Equal(t, 1, obs.Order)
	assert.Equal(t, 10.5, obs.OriginalMean)
	assert.Equal(t, 1.0, obs.DifferencedMean)
	assert.Equal(t, 0.0, obs.DifferencedStd)
	assert.Equal(t, 1.0, obs.VarianceReduction)
	assert.GreaterOrEqual(t, obs.RecommendedOrder, 0)
	assert.LessOrEqual(t, obs.RecommendedOrder, 2)
}

func TestDefaultRegistryOrder(t *testing.T) {
	var ids []ID
	for _, md := range DefaultRegistry().Metadata() {
		ids = append(ids, md.ID)
	}
	assert.Equal(t, []ID{
		Trend, Volatility, Anomaly, Stationarity, Distribution, Changepoint, Correlation,
		Spectrum, Multiscale, Periodogram, Seasonal, Differencing,
	}, ids)
}

func TestRegistryMatch(t *testing.T) {
	reg := DefaultRegistry()
	matched := reg.Match("seasonality")
	require.Len(t, matched, 1)
	assert.Equal(t, Correlation, matched[0].ID)
	assert.Empty(t, reg.Match("nothing"))
}

type panicky struct{}

func (panicky) Metadata() Metadata { return Metadata{ID: "panicky"} }

func (panicky) Run([]float64) (Observation, error) { panic("index out of range") }

func TestRegistryRunFailures(t *testing.T) {
	reg := NewRegistry(VolatilityTool{}, panicky{})

	out := reg.Run("missing", linear(10))
	assert.False(t, out.OK())
	assert.ErrorIs(t, out.Err, ErrUnknownTool)

	out = reg.Run(Volatility, nil)
	assert.False(t, out.OK())
	assert.ErrorIs(t, out.Err, ErrEmptySeries)

	out = reg.Run("panicky", linear(10))
	assert.False(t, out.OK())
	var toolErr *ToolError
	require.True(t, errors.As(out.Err, &toolErr))
	assert.Equal(t, ID("panicky"), toolErr.Tool)
	assert.Nil(t, out.Observation)

	out = reg.Run(Volatility, linear(10))
	assert.True(t, out.OK())
}

func TestProfileOrderAndLookup(t *testing.T) {
	p := NewProfile()
	p.Set(&TrendObservation{Header: Header{Trend}, Direction: "increasing"})
	p.Set(&VolatilityObservation{Header: Header{Volatility}, Level: "low"})
	p.Set(&TrendObservation{Header: Header{Trend}, Direction: "no_trend"})

	assert.Equal(t, []ID{Trend, Volatility}, p.IDs())
	assert.Equal(t, 2, p.Len())

	trend, ok := Lookup[*TrendObservation](p, Trend)
	require.True(t, ok)
	assert.Equal(t, "no_trend", trend.Direction)

	_, ok = Lookup[*TrendObservation](p, Volatility)
	assert.False(t, ok)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Regexp(t, `^\{"trend_analysis":\{.*\},"volatility_analysis":\{.*\}\}$`, string(raw))

	clone := p.Clone()
	clone.Set(&ChangepointObservation{Header: Header{Changepoint}})
	assert.False(t, p.Has(Changepoint))
	assert.True(t, clone.Has(Changepoint))
}
