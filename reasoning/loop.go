package reasoning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Yuuki0u0/shuprophet/analysis"
	"github.com/Yuuki0u0/shuprophet/ensemble"
	"github.com/Yuuki0u0/shuprophet/forecast"
	"github.com/Yuuki0u0/shuprophet/logging"
	"github.com/Yuuki0u0/shuprophet/metrics"
	"github.com/Yuuki0u0/shuprophet/session"
	"github.com/Yuuki0u0/shuprophet/timeseries"
)

var (
	// ErrInvalidHorizon is returned for a non-positive horizon.
	ErrInvalidHorizon = errors.New("reasoning: horizon must be positive")
	// ErrInsufficientHistory is returned for fewer than two observations.
	ErrInsufficientHistory = errors.New("reasoning: at least 2 observations are required")
	// ErrNonFiniteValue is returned when the history holds NaN or Inf.
	ErrNonFiniteValue = errors.New("reasoning: history contains a non-finite value")
)

// Action identifiers recorded by the loop besides tool IDs.
const (
	ActionEnsemble   = "ensemble_predict"
	ActionCorrection = "post_predict"
)

// GroundingTools always run first, in this order.
var GroundingTools = []analysis.ID{
	analysis.Trend,
	analysis.Volatility,
	analysis.Stationarity,
	analysis.Correlation,
}

// Config is the read-only configuration of one session.
type Config struct {
	// MaxSteps bounds the memory length before each adaptive tool run.
	MaxSteps         int
	EnableCorrection bool
	// Horizon is the default for callers that do not choose one.
	Horizon       int
	BiasThreshold float64
	Ensemble      ensemble.Config
}

// DefaultConfig returns an eight-step budget with bias correction and a
// ten-step horizon.
func DefaultConfig() Config {
	return Config{
		MaxSteps:         8,
		EnableCorrection: true,
		Horizon:          10,
		BiasThreshold:    DefaultBiasThreshold,
		Ensemble:         ensemble.DefaultConfig(),
	}
}

// Engine runs forecasting sessions. It holds no per-session state and is
// safe for concurrent use when its collaborators are.
type Engine struct {
	config   Config
	registry *analysis.Registry
	rules    []Rule
	bank     []forecast.Forecaster
	selector *ensemble.Selector
	logger   logrus.FieldLogger
	metrics  *metrics.Recorder
	tracer   trace.Tracer
	store    *session.Store[*Result]
	clock    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the session logger. The default discards output.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithRegistry replaces the analysis tools.
func WithRegistry(r *analysis.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithRules replaces the rule table consulted in the Reason phase.
func WithRules(rules []Rule) Option {
	return func(e *Engine) { e.rules = rules }
}

// WithBank replaces the forecaster bank used by the ensemble phase.
func WithBank(bank []forecast.Forecaster) Option {
	return func(e *Engine) { e.bank = bank }
}

// WithMetrics records tool, selection and latency metrics on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithTracer opens one span per phase and per tool run.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// WithStore records every finished result under its session ID.
func WithStore(s *session.Store[*Result]) Option {
	return func(e *Engine) { e.store = s }
}

// WithClock replaces time.Now for step timestamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// New returns an engine over the default registry, rules and forecaster
// bank.
func New(config Config, opts ...Option) *Engine {
	e := &Engine{
		config:   config,
		registry: analysis.DefaultRegistry(),
		rules:    DefaultRules(),
		logger:   logging.Discard(),
		tracer:   otel.Tracer("github.com/Yuuki0u0/shuprophet/reasoning"),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	selOpts := []ensemble.Option{ensemble.WithLogger(e.logger)}
	if e.bank != nil {
		selOpts = append(selOpts, ensemble.WithBank(e.bank))
	}
	e.selector = ensemble.NewSelector(config.Ensemble, selOpts...)
	return e
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.config
}

// state carries one session through the phases.
type state struct {
	id      string
	history []float64
	horizon int
	memory  *Memory
	profile *analysis.Profile
	log     logrus.FieldLogger
}

// Predict runs Ground, Reason, Ensemble and Correct over history. Only
// invalid input and context cancellation are errors; failing tools and
// forecasters are skipped.
func (e *Engine) Predict(ctx context.Context, history []float64, horizon int) (*Result, error) {
	series := timeseries.New(history)
	if err := checkInput(series, horizon); err != nil {
		return nil, err
	}
	began := e.clock()

	st := &state{
		id:      uuid.NewString(),
		history: series.Values,
		horizon: horizon,
		memory:  NewMemory(e.clock),
		profile: analysis.NewProfile(),
	}
	st.log = e.logger.WithField("session_id", st.id)

	ctx, span := e.tracer.Start(ctx, "reasoning.Predict", trace.WithAttributes(
		attribute.String("session.id", st.id),
		attribute.Int("history.len", len(history)),
		attribute.Int("horizon", horizon),
	))
	defer span.End()

	res, err := e.predict(ctx, st)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("model", string(res.Model)),
		attribute.Int("steps", res.Trajectory.TotalSteps),
		attribute.Bool("fallback", res.Fallback),
	)

	e.metrics.ObservePredict(e.clock().Sub(began))
	if e.store != nil && !e.store.Put(st.id, res) {
		st.log.Debug("session store rejected result")
	}
	return res, nil
}

func (e *Engine) predict(ctx context.Context, st *state) (*Result, error) {
	if err := e.ground(ctx, st); err != nil {
		return nil, err
	}
	if err := e.reason(ctx, st); err != nil {
		return nil, err
	}
	ens, fallback, err := e.ensemble(ctx, st)
	if err != nil {
		return nil, err
	}

	preds, lower, upper := ens.Predictions, ens.Lower, ens.Upper
	var corrections []Correction
	if e.config.EnableCorrection {
		var c Correction
		preds, lower, upper, c = e.correct(ctx, st, ens)
		if c.Applied {
			corrections = append(corrections, c)
		}
	}

	return newResult(st, ens, fallback, preds, lower, upper, corrections), nil
}

func checkInput(series *timeseries.Series, horizon int) error {
	if horizon < 1 {
		return ErrInvalidHorizon
	}
	if series.Len() < 2 {
		return ErrInsufficientHistory
	}
	if err := series.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrNonFiniteValue, err)
	}
	return nil
}

// ground runs the baseline tools unconditionally.
func (e *Engine) ground(ctx context.Context, st *state) error {
	ctx, span := e.tracer.Start(ctx, "reasoning.ground")
	defer span.End()

	for _, id := range GroundingTools {
		if err := ctx.Err(); err != nil {
			return err
		}
		thought := fmt.Sprintf("Grounding: run %s for baseline profile.", id)
		e.runTool(ctx, st, id, thought)
	}
	span.SetAttributes(attribute.Int("profile.len", st.profile.Len()))
	return nil
}

// reason runs the tools selected by the rules until the step budget is
// spent.
func (e *Engine) reason(ctx context.Context, st *state) error {
	ctx, span := e.tracer.Start(ctx, "reasoning.reason")
	defer span.End()

	selected := SelectTools(st.profile, e.rules)
	for _, id := range selected {
		if st.memory.Len() >= e.config.MaxSteps {
			st.log.WithFields(logrus.Fields{"phase": "reason", "tool": id}).Debug("step budget exhausted")
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		tool, ok := e.registry.Lookup(id)
		if !ok {
			continue
		}
		thought := fmt.Sprintf("Profile suggests running %s: %s", id, tool.Metadata().Description)
		e.runTool(ctx, st, id, thought)
	}
	span.SetAttributes(attribute.Int("tools.selected", len(selected)))
	return nil
}

func (e *Engine) runTool(ctx context.Context, st *state, id analysis.ID, thought string) {
	_, span := e.tracer.Start(ctx, "analysis."+string(id))
	defer span.End()

	began := e.clock()
	out := e.registry.Run(id, st.history)
	e.metrics.ObserveTool(string(id), out.OK(), e.clock().Sub(began))

	if !out.OK() {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, "tool failed")
		st.log.WithFields(logrus.Fields{"tool": id}).WithError(out.Err).Debug("tool skipped")
		return
	}
	st.profile.Set(out.Observation)
	st.memory.Add(thought, string(id), nil, out.Observation)
}

// EnsembleObservation is recorded for the ensemble step.
type EnsembleObservation struct {
	Weights        map[forecast.ModelID]float64 `json:"weights"`
	Model          forecast.ModelID             `json:"model"`
	Method         string                       `json:"method"`
	ModelsUsed     []forecast.ModelID           `json:"models_used"`
	CVErrors       map[forecast.ModelID]float64 `json:"cv_errors"`
	CrossValidated bool                         `json:"cross_validated"`
}

// fallbackWeight is the nominal weight reported when every forecaster failed.
const fallbackWeight = 0.1

// ensemble selects a forecast from the raw history. When every forecaster
// fails it extrapolates the least-squares line instead.
func (e *Engine) ensemble(ctx context.Context, st *state) (*ensemble.Result, bool, error) {
	ctx, span := e.tracer.Start(ctx, "reasoning.ensemble")
	defer span.End()

	fallback := false
	res, err := e.selector.Select(ctx, st.history, st.horizon)
	switch {
	case errors.Is(err, ensemble.ErrNoUsableForecast):
		st.log.WithField("phase", "ensemble").Warn("all forecasters failed, extrapolating linearly")
		res, err = e.extrapolate(st)
		if err != nil {
			span.RecordError(err)
			return nil, false, err
		}
		fallback = true
	case err != nil:
		span.RecordError(err)
		return nil, false, err
	}

	for model := range res.Failures {
		e.metrics.ObserveExclusion(string(model))
	}
	e.metrics.ObserveSelection(string(res.Model), res.CrossValidated)
	span.SetAttributes(
		attribute.String("model", string(res.Model)),
		attribute.Bool("cross_validated", res.CrossValidated),
	)

	thought := "Ensemble complete."
	if e.config.EnableCorrection {
		thought = "Ensemble complete. Applying residual correction."
	}
	st.memory.Add(thought, ActionEnsemble, map[string]any{"steps": st.horizon}, &EnsembleObservation{
		Weights:        res.Weights,
		Model:          res.Model,
		Method:         res.Method,
		ModelsUsed:     res.ModelsUsed,
		CVErrors:       res.CVErrors,
		CrossValidated: res.CrossValidated,
	})
	return res, fallback, nil
}

func (e *Engine) extrapolate(st *state) (*ensemble.Result, error) {
	preds, err := forecast.Extrapolate(st.history, st.horizon)
	if err != nil {
		return nil, err
	}
	cfg := e.config.Ensemble
	lower, upper := ensemble.BootstrapCI(st.history, preds, cfg.BootstrapReplicas, cfg.Seed)
	return &ensemble.Result{
		Model:       forecast.FallbackMethod,
		Method:      forecast.FallbackMethod,
		Predictions: preds,
		Weights:     map[forecast.ModelID]float64{forecast.FallbackMethod: fallbackWeight},
		Lower:       lower,
		Upper:       upper,
		CVResiduals: []float64{},
		CVErrors:    map[forecast.ModelID]float64{},
		ModelsUsed:  []forecast.ModelID{},
	}, nil
}

// correct removes the mean CV bias from the predictions and shifts the
// bounds with them.
func (e *Engine) correct(ctx context.Context, st *state, ens *ensemble.Result) (preds, lower, upper []float64, c Correction) {
	_, span := e.tracer.Start(ctx, "reasoning.correct")
	defer span.End()

	preds, c = Correct(ens.Predictions, ens.CVResiduals, e.config.BiasThreshold)
	lower, upper = ens.Lower, ens.Upper
	if c.Applied {
		lower, _ = Correct(lower, ens.CVResiduals, e.config.BiasThreshold)
		upper, _ = Correct(upper, ens.CVResiduals, e.config.BiasThreshold)
		st.log.WithFields(logrus.Fields{"phase": "correct", "mean_bias": *c.MeanBias}).Debug("bias removed")
	}

	e.metrics.ObserveCorrection(c.Applied)
	span.SetAttributes(attribute.Bool("applied", c.Applied))
	st.memory.Add(c.Thought(), ActionCorrection, nil, c)
	return preds, lower, upper, c
}
