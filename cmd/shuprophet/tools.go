package main

import (
	"context"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/Yuuki0u0/shuprophet/analysis"
	"github.com/Yuuki0u0/shuprophet/validate"
)

type toolsOutput struct {
	Tools      []analysis.Metadata `json:"tools"`
	Validators []validate.Metadata `json:"validators"`
}

func newToolsCmd(a *app) *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List analysis tools and validators",
		Long: `List every analysis tool and validator with its description and trigger
keywords. --match keeps only entries with the given trigger.

Examples:
  shuprophet tools
  shuprophet tools --match seasonal --format text`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				out := listTools(analysis.DefaultRegistry(), match)
				return a.emit(cmd.OutOrStdout(), out, func(w io.Writer) error {
					return renderTools(w, out)
				})
			})
		},
	}

	cmd.Flags().StringVar(&match, "match", "", "only entries triggered by this keyword")
	return cmd
}

func listTools(reg *analysis.Registry, match string) *toolsOutput {
	if match == "" {
		return &toolsOutput{Tools: reg.Metadata(), Validators: validate.Catalog()}
	}
	out := &toolsOutput{Tools: reg.Match(match), Validators: []validate.Metadata{}}
	if out.Tools == nil {
		out.Tools = []analysis.Metadata{}
	}
	for _, md := range validate.Catalog() {
		if slices.Contains(md.Triggers, match) {
			out.Validators = append(out.Validators, md)
		}
	}
	return out
}
