package ensemble

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/Yuuki0u0/shuprophet/forecast"
	"github.com/Yuuki0u0/shuprophet/logging"
	"github.com/Yuuki0u0/shuprophet/timeseries"
)

// ErrNoUsableForecast is returned when no forecaster produced a usable
// prediction for the full history.
var ErrNoUsableForecast = errors.New("ensemble: no forecaster produced a usable forecast")

// Config controls holdout sizing, the switch rule and the bootstrap.
type Config struct {
	DefaultModel      forecast.ModelID
	MinHoldout        int
	HoldoutDivisor    int
	MinTrain          int
	SwitchRatio       float64
	FailurePenalty    float64
	BootstrapReplicas int
	Seed              uint64
	Parallel          bool
}

// DefaultConfig keeps ARIMA unless a competitor cuts its CV error by 80%.
func DefaultConfig() Config {
	return Config{
		DefaultModel:      forecast.ARIMA,
		MinHoldout:        8,
		HoldoutDivisor:    5,
		MinTrain:          15,
		SwitchRatio:       0.2,
		FailurePenalty:    1e6,
		BootstrapReplicas: 200,
		Seed:              42,
		Parallel:          true,
	}
}

// Holdout returns the holdout and training sizes for n points.
func (c Config) Holdout(n int) (holdout, train int) {
	holdout = max(c.MinHoldout, n/max(c.HoldoutDivisor, 1))
	return holdout, n - holdout
}

// Result is the selected forecast.
type Result struct {
	Model       forecast.ModelID             `json:"model"`
	Method      string                       `json:"method"`
	Predictions []float64                    `json:"predictions"`
	Weights     map[forecast.ModelID]float64 `json:"weights"`
	Lower       []float64                    `json:"ci_lower"`
	Upper       []float64                    `json:"ci_upper"`
	CVResiduals []float64                    `json:"cv_residuals"`
	CVErrors    map[forecast.ModelID]float64 `json:"cv_errors"`
	ModelsUsed  []forecast.ModelID           `json:"models_used"`
	// CrossValidated is false when selection skipped the holdout.
	CrossValidated bool `json:"cross_validated"`

	// Failures records why a forecaster was excluded on the full history.
	Failures map[forecast.ModelID]string `json:"-"`
}

// Selector runs a forecaster bank.
type Selector struct {
	config Config
	bank   []forecast.Forecaster
	logger logrus.FieldLogger
}

// Option configures a Selector.
type Option func(*Selector)

// WithLogger sets the logger for excluded forecasters.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Selector) { s.logger = logger }
}

// WithBank replaces the forecaster bank. Order matters: it decides ties and
// the model used when the default is unavailable.
func WithBank(bank []forecast.Forecaster) Option {
	return func(s *Selector) { s.bank = bank }
}

// NewSelector returns a Selector over forecast.Bank.
func NewSelector(config Config, opts ...Option) *Selector {
	s := &Selector{config: config, bank: forecast.Bank(), logger: logging.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the selector's configuration.
func (s *Selector) Config() Config {
	return s.config
}

type slot struct {
	result *forecast.Result
	err    error
}

// runBank forecasts every model into its own slot so that output order does
// not depend on scheduling. Each model gets its own copy of history.
func (s *Selector) runBank(ctx context.Context, history []float64, horizon int) ([]slot, error) {
	slots := make([]slot, len(s.bank))
	run := func(i int) {
		f := s.bank[i]
		res, err := f.Forecast(timeseries.New(history).Values, horizon)
		switch {
		case err != nil:
			slots[i].err = err
		case len(res.Predictions) != horizon:
			slots[i].err = fmt.Errorf("%s returned %d predictions, want %d", f.ID(), len(res.Predictions), horizon)
		case !finite(res.Predictions):
			slots[i].err = fmt.Errorf("%s returned non-finite predictions", f.ID())
		default:
			slots[i].result = res
		}
	}

	if !s.config.Parallel {
		for i := range s.bank {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			run(i)
		}
		return slots, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range s.bank {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			run(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slots, nil
}

// Select forecasts horizon steps with every model, picks one and attaches
// bootstrap bounds.
func (s *Selector) Select(ctx context.Context, history []float64, horizon int) (*Result, error) {
	full, err := s.runBank(ctx, history, horizon)
	if err != nil {
		return nil, err
	}

	res := &Result{
		CVResiduals: []float64{},
		CVErrors:    map[forecast.ModelID]float64{},
		ModelsUsed:  []forecast.ModelID{},
		Failures:    map[forecast.ModelID]string{},
	}
	usable := map[forecast.ModelID]*forecast.Result{}
	for i, sl := range full {
		id := s.bank[i].ID()
		if sl.err != nil {
			res.Failures[id] = sl.err.Error()
			s.logger.WithFields(logrus.Fields{"model": id, "phase": "full"}).WithError(sl.err).Debug("forecaster excluded")
			continue
		}
		usable[id] = sl.result
		res.ModelsUsed = append(res.ModelsUsed, id)
	}
	if len(usable) == 0 {
		return nil, ErrNoUsableForecast
	}

	chosen := s.config.DefaultModel
	if _, ok := usable[chosen]; !ok {
		chosen = res.ModelsUsed[0]
	}

	holdout, train := s.config.Holdout(len(history))
	if _, ok := usable[s.config.DefaultModel]; ok && train >= s.config.MinTrain {
		chosen, err = s.crossValidate(ctx, history, holdout, usable, res)
		if err != nil {
			return nil, err
		}
	}

	picked := usable[chosen]
	res.Model = chosen
	res.Method = picked.Method
	res.Predictions = append([]float64(nil), picked.Predictions...)
	res.Weights = map[forecast.ModelID]float64{chosen: 1.0}
	res.Lower, res.Upper = BootstrapCI(history, res.Predictions, s.config.BootstrapReplicas, s.config.Seed)
	return res, nil
}

// crossValidate refits the usable models on the training prefix, scores them
// on the holdout and fills the CV fields of res.
func (s *Selector) crossValidate(ctx context.Context, history []float64, holdout int, usable map[forecast.ModelID]*forecast.Result, res *Result) (forecast.ModelID, error) {
	series := timeseries.New(history)
	cut := series.Len() - holdout
	train := series.Head(cut).Values
	actual := series.Slice(cut, series.Len()).Values

	slots, err := s.runBank(ctx, train, holdout)
	if err != nil {
		return "", err
	}

	var scores []Score
	cvPreds := map[forecast.ModelID][]float64{}
	for i, sl := range slots {
		id := s.bank[i].ID()
		if _, ok := usable[id]; !ok {
			continue
		}
		if sl.err != nil {
			s.logger.WithFields(logrus.Fields{"model": id, "phase": "cv"}).WithError(sl.err).Debug("forecaster failed on holdout")
			scores = append(scores, Score{Model: id, Error: s.config.FailurePenalty})
			continue
		}
		mse := meanSquaredError(sl.result.Predictions, actual)
		scores = append(scores, Score{Model: id, Error: mse})
		cvPreds[id] = sl.result.Predictions
	}

	for _, sc := range scores {
		res.CVErrors[sc.Model] = sc.Error
	}
	res.CrossValidated = true

	chosen := Choose(scores, s.config.DefaultModel, s.config.SwitchRatio)
	if p, ok := cvPreds[chosen]; ok {
		k := min(len(p), len(actual))
		res.CVResiduals = make([]float64, k)
		for i := 0; i < k; i++ {
			res.CVResiduals[i] = p[i] - actual[i]
		}
	}
	return chosen, nil
}

// meanSquaredError over the overlapping length, floored at 1e-10.
func meanSquaredError(pred, actual []float64) float64 {
	k := min(len(pred), len(actual))
	if k == 0 {
		return math.Inf(1)
	}
	sum := 0.0
	for i := 0; i < k; i++ {
		d := pred[i] - actual[i]
		sum += d * d
	}
	return math.Max(sum/float64(k), 1e-10)
}

func finite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
