// Package outlier implements univariate anomaly detectors and a voting
// consensus over them.
package outlier

import (
	"math"
	"sort"

	"github.com/Yuuki0u0/shuprophet/stats"
)

// Detector flags anomalous positions in a series.
type Detector interface {
	Name() string
	// Detect returns the sorted indices of flagged points.
	Detect(values []float64) []int
}

// Sigma flags points whose population z-score exceeds Threshold in
// magnitude. A series with std <= 1e-10 has no anomalies.
type Sigma struct {
	Threshold float64
}

// NewSigma returns a three-sigma detector.
func NewSigma() *Sigma {
	return &Sigma{Threshold: 3}
}

func (s *Sigma) Name() string { return "sigma" }

// Detect flags values more than Threshold standard deviations from the
// mean.
func (s *Sigma) Detect(values []float64) []int {
	z := ZScores(values)
	flagged := []int{}
	for i, v := range z {
		if math.Abs(v) > s.Threshold {
			flagged = append(flagged, i)
		}
	}
	return flagged
}

// ZScores standardizes values by the population mean and std. All scores
// are zero when std <= 1e-10.
func ZScores(values []float64) []float64 {
	z := make([]float64, len(values))
	std := stats.PopStd(values)
	if std <= 1e-10 {
		return z
	}
	mean := stats.Mean(values)
	for i, v := range values {
		z[i] = (v - mean) / std
	}
	return z
}

// flagBelowPercentile returns the indices whose score is strictly below the
// contamination percentile of all scores, where lower scores are more
// abnormal.
func flagBelowPercentile(scores []float64, contamination float64) []int {
	offset := stats.Percentile(scores, 100*contamination)
	flagged := []int{}
	for i, s := range scores {
		if s < offset {
			flagged = append(flagged, i)
		}
	}
	return flagged
}

// Consensus returns the sorted indices flagged by at least minVotes of the
// given index sets.
func Consensus(minVotes int, sets ...[]int) []int {
	votes := make(map[int]int)
	for _, set := range sets {
		seen := make(map[int]bool, len(set))
		for _, i := range set {
			if !seen[i] {
				votes[i]++
				seen[i] = true
			}
		}
	}

	out := []int{}
	for i, v := range votes {
		if v >= minVotes {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}
