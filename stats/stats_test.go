package stats

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func linear(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func sine(n int, period, amplitude, level float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = level + amplitude*math.Sin(2*math.Pi*float64(i)/period)
	}
	return out
}

func noise(n int, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}

func normalQuantiles(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = distuv.UnitNormal.Quantile((float64(i) + 0.5) / float64(n))
	}
	return out
}

func TestACF(t *testing.T) {
	acf := ACF(linear(20), 5)
	require.Len(t, acf, 6)
	assert.Equal(t, 1.0, acf[0])
	for k := 1; k < len(acf); k++ {
		assert.Less(t, acf[k], acf[k-1], "ACF of a ramp decays")
	}

	assert.Nil(t, ACF([]float64{5, 5, 5, 5}, 2), "zero variance")
}

func TestPACFWhiteNoiseInsideBound(t *testing.T) {
	values := noise(500, 7)
	pacf := PACF(values, 10)
	require.Len(t, pacf, 11)
	assert.Equal(t, 1.0, pacf[0])

	bound := ConfidenceBound(len(values))
	outside := 0
	for _, v := range pacf[1:] {
		if math.Abs(v) > bound {
			outside++
		}
	}
	assert.LessOrEqual(t, outside, 3)
}

func TestLocalPeaksAndSignificantLags(t *testing.T) {
	values := []float64{1, 0.2, 0.5, 0.1, 0.6, 0.3, 0.05}
	assert.Equal(t, []int{2, 4}, LocalPeaks(values, 2, 0.1))
	assert.Equal(t, []int{4}, LocalPeaks(values, 2, 0.55))
	assert.Equal(t, []int{2, 4, 5}, SignificantLags(values, 0.25))
}

func TestCombineVerdict(t *testing.T) {
	assert.Equal(t, VerdictStationary, CombineVerdict(true, true))
	assert.Equal(t, VerdictNonStationary, CombineVerdict(false, false))
	assert.Equal(t, VerdictTrendStationary, CombineVerdict(true, false))
	assert.Equal(t, VerdictDifferenceStationary, CombineVerdict(false, true))
}

func TestADFWhiteNoiseIsStationary(t *testing.T) {
	res, err := ADF(noise(200, 42), 0)
	require.NoError(t, err)
	assert.True(t, res.IsStationary)
	assert.Less(t, res.PValue, 0.01)
}

func TestADFRandomWalkIsNotStationary(t *testing.T) {
	walk := make([]float64, 200)
	for k := 1; k < len(walk); k++ {
		walk[k] = walk[k-1] + math.Sin(float64(k*k))
	}

	res, err := ADF(walk, 0)
	require.NoError(t, err)
	assert.False(t, res.IsStationary)
	assert.Greater(t, res.PValue, 0.05)
}

func TestADFPerfectTrendIsSingular(t *testing.T) {
	_, err := ADF(linear(20), 0)
	assert.ErrorIs(t, err, ErrSingular)
}

func TestADFShortSeries(t *testing.T) {
	_, err := ADF(linear(5), 0)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestKPSS(t *testing.T) {
	res, err := KPSS(sine(200, 6.28, 1, 0), "c", -1)
	require.NoError(t, err)
	assert.True(t, res.IsStationary)

	res, err = KPSS(linear(100), "c", -1)
	require.NoError(t, err)
	assert.False(t, res.IsStationary)
	assert.Equal(t, 0.01, res.PValue)
}

func TestPValueTables(t *testing.T) {
	assert.InDelta(t, 0.05, mackinnonPValue(-2.86), 0.005)
	assert.InDelta(t, 0.01, mackinnonPValue(-3.43), 0.003)
	assert.Greater(t, mackinnonPValue(0), 0.9)

	crit := kpssCritical("c")
	assert.Equal(t, 0.10, kpssPValue(0.1, crit))
	assert.InDelta(t, 0.05, kpssPValue(0.463, crit), 1e-12)
	assert.Equal(t, 0.01, kpssPValue(1.5, crit))
}

func TestMannKendall(t *testing.T) {
	res, err := MannKendall(linear(20))
	require.NoError(t, err)
	assert.Equal(t, 190, res.S)
	assert.InDelta(t, 950.0, res.Variance, 1e-9)
	assert.InDelta(t, 189/math.Sqrt(950), res.Z, 1e-9)
	assert.Less(t, res.PValue, 1e-6)

	down := linear(20)
	for i := range down {
		down[i] = -down[i]
	}
	res, err = MannKendall(down)
	require.NoError(t, err)
	assert.Equal(t, -190, res.S)
	assert.Less(t, res.Z, 0.0)

	res, err = MannKendall([]float64{5, 5, 5, 5})
	require.NoError(t, err)
	assert.Equal(t, 0, res.S)
	assert.InDelta(t, 1.0, res.PValue, 1e-12)
}

func TestLinearFit(t *testing.T) {
	line, err := LinearFit(linear(20))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, line.Slope, 1e-9)
	assert.InDelta(t, 1.0, line.Intercept, 1e-9)
	assert.InDelta(t, 1.0, line.RSquared, 1e-9)
	assert.InDelta(t, 21.0, line.At(20), 1e-9)

	flat, err := LinearFit([]float64{3, 3, 3})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, flat.Slope, 1e-12)
	assert.Equal(t, 0.0, flat.RSquared)

	_, err = LinearFit([]float64{1})
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestOLSSingular(t *testing.T) {
	x := [][]float64{{1, 2}, {1, 2}, {1, 2}, {1, 2}}
	_, err := OLS(x, []float64{1, 2, 3, 4})
	assert.ErrorIs(t, err, ErrSingular)
}

func TestShapiroWilk(t *testing.T) {
	res, err := ShapiroWilk(normalQuantiles(50))
	require.NoError(t, err)
	assert.Greater(t, res.W, 0.97)
	assert.Greater(t, res.PValue, 0.05)

	skewed := make([]float64, 50)
	for i := range skewed {
		skewed[i] = math.Exp(float64(i) / 5)
	}
	res, err = ShapiroWilk(skewed)
	require.NoError(t, err)
	assert.Less(t, res.PValue, 0.05)

	res, err = ShapiroWilk([]float64{1, 2, 4})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.PValue, 0.0)
	assert.LessOrEqual(t, res.PValue, 1.0)

	_, err = ShapiroWilk([]float64{2, 2, 2, 2})
	assert.ErrorIs(t, err, ErrZeroRange)
}

func TestKSNormal(t *testing.T) {
	values := normalQuantiles(100)
	res, err := KSNormal(values, Mean(values), PopStd(values))
	require.NoError(t, err)
	assert.Less(t, res.D, 0.05)
	assert.Greater(t, res.PValue, 0.05)

	_, err = KSNormal([]float64{1, 1}, 1, 0)
	assert.ErrorIs(t, err, ErrZeroRange)
}

func TestMoments(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 0.0, Skewness(values), 1e-12)
	assert.InDelta(t, -1.3, Kurtosis(values), 1e-12)
	assert.Equal(t, 0.0, Skewness([]float64{4, 4, 4}))
	assert.Equal(t, 0.0, Kurtosis([]float64{4, 4, 4}))
}

func TestBinarySegmentation(t *testing.T) {
	step := make([]float64, 60)
	for i := 30; i < 60; i++ {
		step[i] = 10
	}
	seg := BinarySegmentation(step)
	assert.Equal(t, []int{30}, seg.Changepoints)
	require.Len(t, seg.SegmentMeans, 2)
	assert.InDelta(t, 0.0, seg.SegmentMeans[0], 1e-12)
	assert.InDelta(t, 10.0, seg.SegmentMeans[1], 1e-12)

	calm := make([]float64, 60)
	for i := range calm {
		calm[i] = 10 + 0.5*math.Sin(float64(i))
	}
	seg = BinarySegmentation(calm)
	assert.Empty(t, seg.Changepoints)
	assert.Len(t, seg.SegmentMeans, 1)

	seg = BinarySegmentation([]float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5})
	assert.Empty(t, seg.Changepoints)
}

func TestFFTSpectrum(t *testing.T) {
	sp := FFTSpectrum(sine(100, 10, 2, 5))
	require.Len(t, sp.Frequencies, 50)

	top := sp.TopK(1)
	require.Len(t, top, 1)
	assert.InDelta(t, 0.1, sp.Frequencies[top[0]], 1e-12)
	assert.GreaterOrEqual(t, sp.Entropy(), 0.0)

	assert.Empty(t, FFTSpectrum([]float64{1}).Magnitudes)
}

func TestWelchFindsPeriod(t *testing.T) {
	psd := Welch(sine(200, 10, 1, 0), 50)
	require.Len(t, psd.Power, 26)
	assert.Equal(t, 50, psd.SegmentLen)

	best := 1
	for k := 1; k < len(psd.Power); k++ {
		if psd.Power[k] > psd.Power[best] {
			best = k
		}
	}
	assert.InDelta(t, 0.1, psd.Frequencies[best], 1e-12)

	peaks := FindPeaks(psd.Power[1:], Mean(psd.Power[1:]))
	assert.Contains(t, peaks, best-1)
}

func TestHaarDecompose(t *testing.T) {
	h := HaarDecompose([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 4)
	require.Len(t, h.Levels, 2)
	assert.InDelta(t, 2.0, h.Levels[0].Energy, 1e-9)
	assert.InDelta(t, 8.0, h.Levels[1].Energy, 1e-9)
	assert.InDelta(t, 204.0, h.TotalEnergy, 1e-9)
	assert.Len(t, h.Approx, 2)

	assert.Empty(t, HaarDecompose([]float64{1, 2, 3}, 4).Levels)
}

func TestDecomposeSeasonal(t *testing.T) {
	values := sine(70, 7, 3, 10)
	assert.Equal(t, 7, EstimatePeriod(values))

	dec, err := Decompose(values, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, dec.Period)
	assert.Greater(t, dec.SeasonalStrength(values), 0.9)
	require.Len(t, dec.Trend, 70)
	assert.InDelta(t, 10.0, dec.Trend[0], 1e-6)

	_, err = Decompose([]float64{1, 2, 3}, 0)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestDecomposeClampsPeriod(t *testing.T) {
	dec, err := Decompose(linear(10), 50)
	require.NoError(t, err)
	assert.Equal(t, 3, dec.Period)
	assert.Equal(t, 2, EstimatePeriod(linear(5)))
}

func TestDifference(t *testing.T) {
	d, err := Difference(linear(20), 1)
	require.NoError(t, err)
	assert.Len(t, d.Differenced, 19)
	assert.InDelta(t, 1.0, d.DifferencedMean, 1e-12)
	assert.InDelta(t, 0.0, d.DifferencedStd, 1e-12)
	assert.InDelta(t, 1.0, d.VarianceReduction, 1e-12)

	d2, err := Difference([]float64{1, 4, 9, 16}, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2}, d2.Differenced)

	_, err = Difference([]float64{1}, 1)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestNDiffs(t *testing.T) {
	assert.Equal(t, 0, NDiffs(sine(200, 6.28, 1, 0), 2))
	assert.GreaterOrEqual(t, NDiffs(linear(100), 2), 1)
}

func TestLjungBox(t *testing.T) {
	res, err := LjungBox(noise(300, 11), 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, res.DOF)
	assert.GreaterOrEqual(t, res.PValue, 0.0)
	assert.LessOrEqual(t, res.PValue, 1.0)

	res, err = LjungBox(sine(100, 10, 1, 0), 10, 0)
	require.NoError(t, err)
	assert.Less(t, res.PValue, 0.001)
}

func TestPercentileAndRound(t *testing.T) {
	values := []float64{4, 1, 3, 2}
	assert.InDelta(t, 2.5, Percentile(values, 50), 1e-12)
	assert.InDelta(t, 1.075, Percentile(values, 2.5), 1e-12)
	assert.Equal(t, 4.0, Percentile(values, 100))
	assert.True(t, math.IsNaN(Percentile(nil, 50)))

	assert.Equal(t, 1.2346, Round4(1.23456))
	assert.Equal(t, -1.2346, Round4(-1.23456))
	assert.True(t, math.IsInf(Round4(math.Inf(1)), 1))
}

func TestRollingStd(t *testing.T) {
	out := RollingStd([]float64{1, 1, 1, 5, 5, 5}, 3)
	require.Len(t, out, 4)
	assert.InDelta(t, 0.0, out[0], 1e-9)
	assert.InDelta(t, math.Sqrt(32.0/9.0), out[1], 1e-9)
	assert.Nil(t, RollingStd([]float64{1, 2}, 3))
}
