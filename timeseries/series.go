package timeseries

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrEmpty is returned when a series has no observations.
	ErrEmpty = errors.New("timeseries: empty series")

	// ErrNonFinite is returned when a series contains NaN or Inf.
	ErrNonFinite = errors.New("timeseries: non-finite value")
)

// Series is an ordered sequence of observations. A Series is treated as
// immutable once built; every transformation returns a new Series.
type Series struct {
	Values []float64
	Name   string
}

// New creates a series that owns a copy of values.
func New(values []float64) *Series {
	v := make([]float64, len(values))
	copy(v, values)
	return &Series{Values: v}
}

// Validate reports whether the series is non-empty and finite.
func (s *Series) Validate() error {
	if len(s.Values) == 0 {
		return ErrEmpty
	}
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w at index %d", ErrNonFinite, i)
		}
	}
	return nil
}

// Len returns the number of observations.
func (s *Series) Len() int {
	return len(s.Values)
}

// Variance returns the population variance (denominator n).
func (s *Series) Variance() float64 {
	return PopVariance(s.Values)
}

// Std returns the population standard deviation.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// Diff returns the first difference of the series.
func (s *Series) Diff() *Series {
	return s.DiffN(1)
}

// DiffN applies the first difference order times. The result is empty when
// order is not smaller than the length.
func (s *Series) DiffN(order int) *Series {
	out := &Series{Values: Difference(s.Values, order), Name: s.Name}
	if s.Name != "" {
		out.Name = fmt.Sprintf("%s_diff%d", s.Name, order)
	}
	return out
}

// Slice returns a copy of observations [start, end).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Name: s.Name}
	}
	return &Series{Values: append([]float64(nil), s.Values[start:end]...), Name: s.Name}
}

// Head returns the first n observations.
func (s *Series) Head(n int) *Series {
	return s.Slice(0, n)
}

// Difference applies the first difference order times to values.
func Difference(values []float64, order int) []float64 {
	out := append([]float64(nil), values...)
	for d := 0; d < order; d++ {
		if len(out) < 2 {
			return []float64{}
		}
		next := make([]float64, len(out)-1)
		for i := 1; i < len(out); i++ {
			next[i-1] = out[i] - out[i-1]
		}
		out = next
	}
	return out
}

// PopVariance returns the population variance of values, or 0 when empty.
func PopVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	_, v := stat.PopMeanVariance(values, nil)
	if v < 0 {
		return 0
	}
	return v
}
