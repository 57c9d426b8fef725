package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Yuuki0u0/shuprophet/config"
	"github.com/Yuuki0u0/shuprophet/logging"
	"github.com/Yuuki0u0/shuprophet/metrics"
	"github.com/Yuuki0u0/shuprophet/reasoning"
	"github.com/Yuuki0u0/shuprophet/session"
)

const tracerName = "github.com/Yuuki0u0/shuprophet/cmd/shuprophet"

var errUnknownFormat = errors.New("unknown output format")

// app holds the global flags and the collaborators built from them for one
// command invocation.
type app struct {
	configPath string
	format     string
	logLevel   string
	trace      bool
	dumpStats  bool

	cfg      *config.Config
	logger   *logrus.Logger
	registry *prometheus.Registry
	recorder *metrics.Recorder
	store    *session.Store[*reasoning.Result]
	provider *sdktrace.TracerProvider
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "shuprophet",
		Short: "Profile and forecast univariate time series",
		Long: `shuprophet profiles a univariate series with statistical, spectral and
decomposition tools, lets the profile pick further analyses, and forecasts
with a cross-validated ensemble of ARIMA, ETS, Theta and linear models.

Examples:
  shuprophet predict --values "12,14,13,15,17,16,18,20,19,21" --horizon 5
  shuprophet predict --file data.csv --column y --format yaml
  shuprophet profile --file data.csv
  shuprophet tools --match seasonal`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML configuration file")
	flags.StringVarP(&a.format, "format", "o", "json", "output format: json, yaml or text")
	flags.StringVar(&a.logLevel, "log-level", "", "log level, overrides log.level")
	flags.BoolVar(&a.trace, "trace", false, "print spans to stderr")
	flags.BoolVar(&a.dumpStats, "metrics", false, "print collected metrics to stderr on exit")

	cmd.AddCommand(
		newPredictCmd(a),
		newProfileCmd(a),
		newValidateCmd(a),
		newToolsCmd(a),
		newDemoCmd(a),
	)
	return cmd
}

// run builds the collaborators, invokes fn and releases them again.
func (a *app) run(cmd *cobra.Command, fn func(ctx context.Context) error) (err error) {
	if err := a.setup(cmd); err != nil {
		return err
	}
	defer func() {
		if cerr := a.teardown(cmd); err == nil {
			err = cerr
		}
	}()
	return fn(cmd.Context())
}

func (a *app) setup(cmd *cobra.Command) error {
	switch a.format {
	case "json", "yaml", "text":
	default:
		return fmt.Errorf("%w %q", errUnknownFormat, a.format)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logger, err := logging.NewWithOutput(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	store, err := session.New[*reasoning.Result](cfg.Store)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.store = store
	a.registry = prometheus.NewRegistry()
	a.recorder = metrics.New(a.registry)

	if a.trace {
		exporter, err := stdouttrace.New(
			stdouttrace.WithWriter(cmd.ErrOrStderr()),
			stdouttrace.WithPrettyPrint(),
		)
		if err != nil {
			return fmt.Errorf("create span exporter: %w", err)
		}
		a.provider = sdktrace.NewTracerProvider(
			sdktrace.WithSyncer(exporter),
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
		)
	}
	return nil
}

func (a *app) teardown(cmd *cobra.Command) error {
	if a.store != nil {
		a.store.Close()
	}
	if a.provider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.provider.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown tracer provider: %w", err)
		}
	}
	if a.dumpStats && a.registry != nil {
		families, err := a.registry.Gather()
		if err != nil {
			return fmt.Errorf("gather metrics: %w", err)
		}
		enc := expfmt.NewEncoder(cmd.ErrOrStderr(), expfmt.NewFormat(expfmt.TypeTextPlain))
		for _, mf := range families {
			if err := enc.Encode(mf); err != nil {
				return fmt.Errorf("encode metrics: %w", err)
			}
		}
	}
	return nil
}

// engine builds a reasoning engine wired to the app's logger, metrics,
// tracer and session store.
func (a *app) engine(rc reasoning.Config) *reasoning.Engine {
	opts := []reasoning.Option{
		reasoning.WithLogger(a.logger),
		reasoning.WithMetrics(a.recorder),
		reasoning.WithStore(a.store),
	}
	if a.provider != nil {
		opts = append(opts, reasoning.WithTracer(a.provider.Tracer(tracerName)))
	}
	return reasoning.New(rc, opts...)
}
