// Package timeseries provides the Series type. The reasoning engine copies
// each request's history into a Series, the ensemble splits it into training
// prefix and holdout with Head and Slice, and stats builds its differencing
// and population variance on Difference and PopVariance.
//
// A Series is an ordered sequence of float64 observations. Variance and Std
// are population moments (denominator n).
//
// # Creating a Series
//
//	s := timeseries.New([]float64{100, 102, 105, 103, 108, 110})
//	if err := s.Validate(); err != nil {
//	    return err
//	}
//
// # Reading input
//
// ReadCSV and LoadCSV extract one numeric column from delimited text, with
// header detection and NA handling:
//
//	opts := timeseries.DefaultCSVOptions()
//	opts.Column = "sales"
//	s, err := timeseries.LoadCSV("data.csv", opts)
//
// ParseValues accepts a free-form list such as "1, 2, 3" for command-line use.
//
// # Transformations
//
//	d := s.Diff()           // first difference
//	d2 := s.DiffN(2)        // second-order difference
//	train := s.Head(80)     // training prefix
//	holdout := s.Slice(80, s.Len())
//	sigma := s.Diff().Std() // spread of one-step changes
package timeseries
