package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Yuuki0u0/shuprophet/reasoning"
	"github.com/Yuuki0u0/shuprophet/session"
	"github.com/Yuuki0u0/shuprophet/validate"
)

var errSessionNotStored = errors.New("session not stored")

// predictOutput is a session result with the validator reports attached.
type predictOutput struct {
	*reasoning.Result
	Validation *validate.Report `json:"validation,omitempty"`
}

func newPredictCmd(a *app) *cobra.Command {
	var (
		in           inputFlags
		horizon      int
		maxSteps     int
		noCorrection bool
		noValidate   bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Profile a series and forecast it",
		Long: `Run a forecasting session: ground the series with trend, volatility,
stationarity and correlation analysis, run the further tools the profile
asks for, select a forecaster by holdout error and correct the
forecast for its cross-validated bias.

Examples:
  shuprophet predict --values "3,5,4,6,8,7,9,11,10,12" --horizon 3
  shuprophet predict --file data.csv --column sales --format text
  shuprophet predict --file data.csv --no-correction --max-steps 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				history, err := in.load(a.cfg.Input.MinPoints)
				if err != nil {
					return err
				}

				rc := a.cfg.ReasoningSettings()
				if cmd.Flags().Changed("max-steps") {
					rc.MaxSteps = maxSteps
				}
				if noCorrection {
					rc.EnableCorrection = false
				}
				h := rc.Horizon
				if cmd.Flags().Changed("horizon") {
					h = horizon
				}

				out, err := predict(ctx, a.engine(rc), a.store, history, h, !noValidate)
				if err != nil {
					return err
				}
				a.logger.WithField("session_id", out.SessionID).Debug("session read back")
				return a.emit(cmd.OutOrStdout(), out, func(w io.Writer) error {
					return renderPrediction(w, out)
				})
			})
		},
	}

	in.bind(cmd)
	cmd.Flags().IntVarP(&horizon, "horizon", "n", 0, "steps to forecast (default session.horizon)")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "step budget for adaptive tools (default session.max_steps)")
	cmd.Flags().BoolVar(&noCorrection, "no-correction", false, "skip the bias correction phase")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "omit the validator reports")
	return cmd
}

// predict runs a session and emits the result the engine stored under its
// session ID, so the output is what later lookups would see.
func predict(ctx context.Context, engine *reasoning.Engine, store *session.Store[*reasoning.Result], history []float64, horizon int, withValidation bool) (*predictOutput, error) {
	res, err := engine.Predict(ctx, history, horizon)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	stored, ok := store.Get(res.SessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errSessionNotStored, res.SessionID)
	}
	out := &predictOutput{Result: stored}
	if withValidation {
		report, err := validate.All(history, stored.Predictions)
		if err != nil {
			return nil, fmt.Errorf("validate: %w", err)
		}
		out.Validation = report
	}
	return out, nil
}
