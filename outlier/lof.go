package outlier

import (
	"math"
	"sort"
)

// LOF is the local outlier factor detector: a point whose local
// reachability density is low relative to its neighbours' is an outlier.
type LOF struct {
	Neighbors     int
	Contamination float64
}

// NewLOF returns a detector with 5 neighbours and contamination 0.05.
func NewLOF() *LOF {
	return &LOF{Neighbors: 5, Contamination: 0.05}
}

func (l *LOF) Name() string { return "lof" }

// Detect flags the points with the largest outlier factors.
func (l *LOF) Detect(values []float64) []int {
	if len(values) < 2 {
		return []int{}
	}
	factors := l.Factors(values)
	neg := make([]float64, len(factors))
	for i, f := range factors {
		neg[i] = -f
	}
	return flagBelowPercentile(neg, l.Contamination)
}

// Factors returns the local outlier factor of every point with
// k = min(Neighbors, n-1).
func (l *LOF) Factors(values []float64) []float64 {
	n := len(values)
	k := min(l.Neighbors, n-1)

	neighbors := make([][]int, n)
	kdist := make([]float64, n)
	for i := range values {
		idx := make([]int, 0, n-1)
		for j := range values {
			if j != i {
				idx = append(idx, j)
			}
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return math.Abs(values[idx[a]]-values[i]) < math.Abs(values[idx[b]]-values[i])
		})
		neighbors[i] = idx[:k]
		kdist[i] = math.Abs(values[idx[k-1]] - values[i])
	}

	lrd := make([]float64, n)
	for i := range values {
		sum := 0.0
		for _, j := range neighbors[i] {
			sum += math.Max(kdist[j], math.Abs(values[i]-values[j]))
		}
		lrd[i] = 1 / (sum/float64(k) + 1e-10)
	}

	factors := make([]float64, n)
	for i := range values {
		sum := 0.0
		for _, j := range neighbors[i] {
			sum += lrd[j]
		}
		factors[i] = sum / float64(k) / lrd[i]
	}
	return factors
}
