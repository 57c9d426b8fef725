package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/Yuuki0u0/shuprophet/timeseries"
	"github.com/Yuuki0u0/shuprophet/validate"
)

var errNoPredictions = errors.New("provide --predictions")

func newValidateCmd(a *app) *cobra.Command {
	var (
		in          inputFlags
		predictions string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a forecast against its history",
		Long: `Run the range, trend consistency and confidence checks on a forecast
produced elsewhere.

Example:
  shuprophet validate --values "1,2,3,4,5,6,7,8,9,10" --predictions "11,12,13"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				history, err := in.load(a.cfg.Input.MinPoints)
				if err != nil {
					return err
				}
				if predictions == "" {
					return errNoPredictions
				}
				preds, err := timeseries.ParseValues(predictions)
				if err != nil {
					return err
				}
				if err := preds.Validate(); err != nil {
					return err
				}
				report, err := validate.All(history, preds.Values)
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), report, func(w io.Writer) error {
					renderValidation(w, report)
					return nil
				})
			})
		},
	}

	in.bind(cmd)
	cmd.Flags().StringVar(&predictions, "predictions", "", "comma or whitespace separated forecast values")
	return cmd
}
