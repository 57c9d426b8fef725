package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/Yuuki0u0/shuprophet/analysis"
)

type profileOutput struct {
	Points  int               `json:"points"`
	Profile *analysis.Profile `json:"profile"`
	Skipped skipped           `json:"skipped,omitempty"`
}

func newProfileCmd(a *app) *cobra.Command {
	var (
		in    inputFlags
		tools []string
	)

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Run analysis tools over a series",
		Long: `Run every analysis tool, or the ones named with --tool, and print
their observations in registry order. Tools that cannot handle the series
are listed as skipped.

Examples:
  shuprophet profile --values "1,3,2,4,3,5,4,6,5,7"
  shuprophet profile --file data.csv --tool spectrum_analysis --tool seasonal_decompose`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				history, err := in.load(a.cfg.Input.MinPoints)
				if err != nil {
					return err
				}
				ids := make([]analysis.ID, len(tools))
				for i, t := range tools {
					ids[i] = analysis.ID(t)
				}
				out, err := profile(analysis.DefaultRegistry(), history, ids)
				if err != nil {
					return err
				}
				for id, reason := range out.Skipped {
					a.logger.WithField("tool", id).WithField("reason", reason).Debug("tool skipped")
				}
				return a.emit(cmd.OutOrStdout(), out, func(w io.Writer) error {
					return renderProfile(w, out)
				})
			})
		},
	}

	in.bind(cmd)
	cmd.Flags().StringArrayVar(&tools, "tool", nil, "tool to run, repeatable (default all)")
	return cmd
}

// profile runs ids, or every registered tool when ids is empty. An unknown
// ID is an error; a tool failing on the data is recorded as skipped.
func profile(reg *analysis.Registry, history []float64, ids []analysis.ID) (*profileOutput, error) {
	if len(ids) == 0 {
		for _, md := range reg.Metadata() {
			ids = append(ids, md.ID)
		}
	}

	out := &profileOutput{Points: len(history), Profile: analysis.NewProfile(), Skipped: skipped{}}
	for _, id := range ids {
		o := reg.Run(id, history)
		switch {
		case errors.Is(o.Err, analysis.ErrUnknownTool):
			return nil, o.Err
		case !o.OK():
			out.Skipped[id] = o.Err.Error()
		default:
			out.Profile.Set(o.Observation)
		}
	}
	return out, nil
}
