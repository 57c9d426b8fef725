package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// MannKendallResult is the outcome of the Mann-Kendall trend test.
type MannKendallResult struct {
	S        int
	Variance float64
	Z        float64
	PValue   float64
}

// MannKendall computes the S statistic over all pairs and its two-sided
// normal-approximation p-value. Ties are not corrected for.
func MannKendall(values []float64) (*MannKendallResult, error) {
	n := len(values)
	if n < 3 {
		return nil, ErrInsufficientData
	}

	s := 0
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			switch d := values[j] - values[i]; {
			case d > 0:
				s++
			case d < 0:
				s--
			}
		}
	}

	nf := float64(n)
	variance := nf * (nf - 1) * (2*nf + 5) / 18

	var z float64
	switch {
	case s > 0:
		z = float64(s-1) / math.Sqrt(variance)
	case s < 0:
		z = float64(s+1) / math.Sqrt(variance)
	}
	p := 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))

	return &MannKendallResult{S: s, Variance: variance, Z: z, PValue: p}, nil
}
