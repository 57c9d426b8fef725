package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Yuuki0u0/shuprophet/timeseries"
)

var (
	errNoInput       = errors.New("provide --values or --file")
	errAmbiguousData = errors.New("--values and --file are mutually exclusive")
	errTooFewPoints  = errors.New("not enough data points")
)

// inputFlags selects the history a command works on.
type inputFlags struct {
	values string
	file   string
	column string
}

func (f *inputFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.values, "values", "", "comma or whitespace separated observations")
	cmd.Flags().StringVar(&f.file, "file", "", "CSV file holding the series")
	cmd.Flags().StringVar(&f.column, "column", "", "CSV value column (default: y, value or the last column)")
}

// load reads the history and rejects it when it holds fewer than minPoints
// finite observations.
func (f *inputFlags) load(minPoints int) ([]float64, error) {
	var (
		series *timeseries.Series
		err    error
	)
	switch {
	case f.values != "" && f.file != "":
		return nil, errAmbiguousData
	case f.values != "":
		series, err = timeseries.ParseValues(f.values)
	case f.file != "":
		opts := timeseries.DefaultCSVOptions()
		opts.Column = f.column
		series, err = timeseries.LoadCSV(f.file, opts)
	default:
		return nil, errNoInput
	}
	if err != nil {
		return nil, err
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	if series.Len() < minPoints {
		return nil, fmt.Errorf("%w: got %d, need at least %d", errTooFewPoints, series.Len(), minPoints)
	}
	return series.Values, nil
}
