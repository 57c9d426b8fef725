package outlier

import (
	"math"
	"math/rand/v2"
)

// IsolationForest scores points by how quickly random axis splits isolate
// them. Scores are made reproducible by a fixed Seed.
type IsolationForest struct {
	Trees         int
	MaxSamples    int
	Contamination float64
	Seed          uint64
}

// NewIsolationForest returns a 100-tree forest with 256-point subsamples,
// contamination 0.05 and seed 42.
func NewIsolationForest() *IsolationForest {
	return &IsolationForest{Trees: 100, MaxSamples: 256, Contamination: 0.05, Seed: 42}
}

func (f *IsolationForest) Name() string { return "isolation_forest" }

// Detect flags the points whose anomaly score falls in the top
// contamination share.
func (f *IsolationForest) Detect(values []float64) []int {
	if len(values) < 2 {
		return []int{}
	}
	scores := f.Scores(values)
	neg := make([]float64, len(scores))
	for i, s := range scores {
		neg[i] = -s
	}
	return flagBelowPercentile(neg, f.Contamination)
}

// Scores returns the anomaly score 2^(-E[h(x)]/c(psi)) of every point;
// higher is more anomalous.
func (f *IsolationForest) Scores(values []float64) []float64 {
	n := len(values)
	psi := min(f.MaxSamples, n)
	limit := int(math.Ceil(math.Log2(float64(max(psi, 2)))))
	rng := rand.New(rand.NewPCG(f.Seed, f.Seed))

	depth := make([]float64, n)
	for t := 0; t < f.Trees; t++ {
		sample := rng.Perm(n)[:psi]
		sub := make([]float64, psi)
		for i, idx := range sample {
			sub[i] = values[idx]
		}
		root := growTree(sub, 0, limit, rng)
		for i, v := range values {
			depth[i] += root.pathLength(v, 0)
		}
	}

	norm := averagePathLength(psi)
	scores := make([]float64, n)
	for i := range scores {
		mean := depth[i] / float64(f.Trees)
		if norm == 0 {
			scores[i] = 0.5
			continue
		}
		scores[i] = math.Pow(2, -mean/norm)
	}
	return scores
}

type isoNode struct {
	split       float64
	left, right *isoNode
	size        int
}

func growTree(values []float64, depth, limit int, rng *rand.Rand) *isoNode {
	if depth >= limit || len(values) <= 1 {
		return &isoNode{size: len(values)}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return &isoNode{size: len(values)}
	}

	split := lo + rng.Float64()*(hi-lo)
	var left, right []float64
	for _, v := range values {
		if v < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}
	return &isoNode{
		split: split,
		left:  growTree(left, depth+1, limit, rng),
		right: growTree(right, depth+1, limit, rng),
	}
}

func (n *isoNode) pathLength(v float64, depth int) float64 {
	if n.left == nil {
		return float64(depth) + averagePathLength(n.size)
	}
	if v < n.split {
		return n.left.pathLength(v, depth+1)
	}
	return n.right.pathLength(v, depth+1)
}

// averagePathLength is c(n), the mean unsuccessful search length in a
// binary search tree of n points.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	nf := float64(n)
	harmonic := math.Log(nf-1) + 0.5772156649
	return 2*harmonic - 2*(nf-1)/nf
}
