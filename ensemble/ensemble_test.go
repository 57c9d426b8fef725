package ensemble

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yuuki0u0/shuprophet/forecast"
)

type stub struct {
	id    forecast.ModelID
	value float64
	err   error
	short bool
}

func (s stub) ID() forecast.ModelID { return s.id }

func (s stub) Forecast(history []float64, horizon int) (*forecast.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	n := horizon
	if s.short {
		n--
	}
	preds := make([]float64, n)
	for i := range preds {
		preds[i] = s.value
	}
	return &forecast.Result{Model: s.id, Method: string(s.id), Predictions: preds}, nil
}

// scribbler zeroes its input; recorder keeps a copy of every input it saw.
type scribbler struct{ id forecast.ModelID }

func (s scribbler) ID() forecast.ModelID { return s.id }

func (s scribbler) Forecast(history []float64, horizon int) (*forecast.Result, error) {
	for i := range history {
		history[i] = 0
	}
	return &forecast.Result{Model: s.id, Method: "scribbler", Predictions: make([]float64, horizon)}, nil
}

type recorder struct {
	id   forecast.ModelID
	seen *[][]float64
}

func (r recorder) ID() forecast.ModelID { return r.id }

func (r recorder) Forecast(history []float64, horizon int) (*forecast.Result, error) {
	*r.seen = append(*r.seen, append([]float64(nil), history...))
	return &forecast.Result{Model: r.id, Method: "recorder", Predictions: make([]float64, horizon)}, nil
}

func zeros(n int) []float64 {
	return make([]float64, n)
}

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func TestChooseConservativeSwitch(t *testing.T) {
	keep := Choose([]Score{{forecast.ARIMA, 1.0}, {forecast.ETS, 0.25}}, forecast.ARIMA, 0.2)
	assert.Equal(t, forecast.ARIMA, keep)

	switched := Choose([]Score{{forecast.ARIMA, 1.0}, {forecast.ETS, 0.15}}, forecast.ARIMA, 0.2)
	assert.Equal(t, forecast.ETS, switched)

	boundary := Choose([]Score{{forecast.ARIMA, 1.0}, {forecast.ETS, 0.2}}, forecast.ARIMA, 0.2)
	assert.Equal(t, forecast.ARIMA, boundary)
}

func TestChooseWithoutDefault(t *testing.T) {
	got := Choose([]Score{{forecast.Theta, 3}, {forecast.Linear, 2}, {forecast.ETS, 2}}, forecast.ARIMA, 0.2)
	assert.Equal(t, forecast.Linear, got)
	assert.Equal(t, forecast.ARIMA, Choose(nil, forecast.ARIMA, 0.2))
}

func TestBootstrapCIBrackets(t *testing.T) {
	history := []float64{1, 4, 2, 8, 5, 7, 3, 9}
	preds := []float64{6, 6.5, 7, 7.5}

	lower, upper := BootstrapCI(history, preds, 200, 42)
	require.Len(t, lower, 4)
	require.Len(t, upper, 4)
	for i := range preds {
		assert.LessOrEqual(t, lower[i], preds[i])
		assert.GreaterOrEqual(t, upper[i], preds[i])
		assert.Greater(t, upper[i]-lower[i], 1.0)
	}

	lower2, upper2 := BootstrapCI(history, preds, 200, 42)
	assert.Equal(t, lower, lower2)
	assert.Equal(t, upper, upper2)
}

func TestBootstrapCIZeroSpread(t *testing.T) {
	preds := []float64{5, 5, 5}
	lower, upper := BootstrapCI([]float64{5, 5, 5, 5}, preds, 200, 42)
	assert.Equal(t, preds, lower)
	assert.Equal(t, preds, upper)

	lower, upper = BootstrapCI([]float64{5}, preds, 0, 42)
	assert.Equal(t, preds, lower)
	assert.Equal(t, preds, upper)
}

func TestBootstrapCIUsesDifferencedSpread(t *testing.T) {
	preds := []float64{31, 32}
	lower, upper := BootstrapCI(ramp(30), preds, 200, 42)
	assert.Equal(t, preds, lower)
	assert.Equal(t, preds, upper)
}

func TestHoldout(t *testing.T) {
	cfg := DefaultConfig()
	holdout, train := cfg.Holdout(20)
	assert.Equal(t, 8, holdout)
	assert.Equal(t, 12, train)

	holdout, train = cfg.Holdout(100)
	assert.Equal(t, 20, holdout)
	assert.Equal(t, 80, train)
}

func TestSelectShortHistorySkipsCV(t *testing.T) {
	history := make([]float64, 20)
	for i := range history {
		history[i] = float64(i + 1)
	}

	res, err := NewSelector(DefaultConfig()).Select(context.Background(), history, 5)
	require.NoError(t, err)
	assert.Equal(t, forecast.ARIMA, res.Model)
	assert.False(t, res.CrossValidated)
	assert.Empty(t, res.CVResiduals)
	assert.Empty(t, res.CVErrors)
	assert.Equal(t, map[forecast.ModelID]float64{forecast.ARIMA: 1.0}, res.Weights)
	assert.InDeltaSlice(t, []float64{21, 22, 23, 24, 25}, res.Predictions, 1e-6)
	assert.ElementsMatch(t, []forecast.ModelID{forecast.ARIMA, forecast.ETS, forecast.Theta, forecast.Linear}, res.ModelsUsed)
}

func TestSelectKeepsDefault(t *testing.T) {
	bank := []forecast.Forecaster{
		stub{id: forecast.ARIMA, value: 1},
		stub{id: forecast.ETS, value: 0.5},
	}
	res, err := NewSelector(DefaultConfig(), WithBank(bank)).Select(context.Background(), zeros(40), 3)
	require.NoError(t, err)

	assert.Equal(t, forecast.ARIMA, res.Model)
	assert.True(t, res.CrossValidated)
	assert.InDelta(t, 1.0, res.CVErrors[forecast.ARIMA], 1e-12)
	assert.InDelta(t, 0.25, res.CVErrors[forecast.ETS], 1e-12)
	assert.Len(t, res.CVResiduals, 8)
	assert.InDelta(t, 1.0, res.CVResiduals[0], 1e-12)
}

func TestSelectSwitchesOnOverwhelmingEvidence(t *testing.T) {
	bank := []forecast.Forecaster{
		stub{id: forecast.ARIMA, value: 1},
		stub{id: forecast.ETS, value: 0.3},
	}
	res, err := NewSelector(DefaultConfig(), WithBank(bank)).Select(context.Background(), zeros(40), 3)
	require.NoError(t, err)

	assert.Equal(t, forecast.ETS, res.Model)
	assert.Equal(t, []float64{0.3, 0.3, 0.3}, res.Predictions)
	assert.InDelta(t, 0.3, res.CVResiduals[0], 1e-12)
}

func TestSelectExcludesBrokenForecasters(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	bank := []forecast.Forecaster{
		stub{id: forecast.ARIMA, err: errors.New("boom")},
		stub{id: forecast.ETS, value: 2, short: true},
		stub{id: forecast.Theta, value: 4},
	}
	res, err := NewSelector(DefaultConfig(), WithBank(bank), WithLogger(logger)).Select(context.Background(), zeros(40), 3)
	require.NoError(t, err)

	assert.Equal(t, forecast.Theta, res.Model)
	assert.False(t, res.CrossValidated)
	assert.Equal(t, []forecast.ModelID{forecast.Theta}, res.ModelsUsed)
	assert.Contains(t, res.Failures, forecast.ARIMA)
	assert.Contains(t, res.Failures, forecast.ETS)
	assert.Len(t, hook.AllEntries(), 2)
}

func TestSelectPenalisesHoldoutFailure(t *testing.T) {
	bank := []forecast.Forecaster{
		stub{id: forecast.ARIMA, value: 1},
		&failOnShort{stub: stub{id: forecast.ETS, value: 0}},
	}
	res, err := NewSelector(DefaultConfig(), WithBank(bank)).Select(context.Background(), zeros(40), 3)
	require.NoError(t, err)
	assert.Equal(t, forecast.ARIMA, res.Model)
	assert.Equal(t, 1e6, res.CVErrors[forecast.ETS])
}

type failOnShort struct{ stub }

func (f *failOnShort) Forecast(history []float64, horizon int) (*forecast.Result, error) {
	if len(history) < 40 {
		return nil, errors.New("too short")
	}
	return f.stub.Forecast(history, horizon)
}

func TestSelectNoUsableForecast(t *testing.T) {
	bank := []forecast.Forecaster{stub{id: forecast.ARIMA, err: errors.New("boom")}}
	_, err := NewSelector(DefaultConfig(), WithBank(bank)).Select(context.Background(), zeros(40), 3)
	assert.ErrorIs(t, err, ErrNoUsableForecast)
}

func TestSelectParallelMatchesSequential(t *testing.T) {
	history := make([]float64, 60)
	for i := range history {
		history[i] = float64(i%7) + 0.1*float64(i)
	}

	par := DefaultConfig()
	seq := DefaultConfig()
	seq.Parallel = false

	a, err := NewSelector(par).Select(context.Background(), history, 6)
	require.NoError(t, err)
	b, err := NewSelector(seq).Select(context.Background(), history, 6)
	require.NoError(t, err)

	assert.Equal(t, a.Model, b.Model)
	assert.Equal(t, a.Predictions, b.Predictions)
	assert.Equal(t, a.CVErrors, b.CVErrors)
	assert.Equal(t, a.Lower, b.Lower)
}

func TestSelectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultConfig()
	cfg.Parallel = false
	_, err := NewSelector(cfg).Select(ctx, zeros(40), 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSelectIsolatesForecasterInputs(t *testing.T) {
	var seen [][]float64
	bank := []forecast.Forecaster{
		scribbler{id: forecast.ARIMA},
		recorder{id: forecast.ETS, seen: &seen},
	}
	history := ramp(40)

	res, err := NewSelector(DefaultConfig(), WithBank(bank)).Select(context.Background(), history, 2)
	require.NoError(t, err)
	assert.True(t, res.CrossValidated)
	assert.Equal(t, ramp(40), history)

	require.Len(t, seen, 2)
	assert.Equal(t, ramp(40), seen[0])
	assert.Equal(t, ramp(32), seen[1])
	assert.Equal(t, res.CVErrors[forecast.ARIMA], res.CVErrors[forecast.ETS])
}

func TestSelectorDiscardsLogsByDefault(t *testing.T) {
	s := NewSelector(DefaultConfig())
	logger, ok := s.logger.(*logrus.Logger)
	require.True(t, ok)
	assert.Equal(t, io.Discard, logger.Out)
}
