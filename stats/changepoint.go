package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Segmentation is the result of binary segmentation.
type Segmentation struct {
	Changepoints []int
	SegmentMeans []float64
	Penalty      float64
}

type segment struct{ start, end int }

// segmentCost is length times population variance.
func segmentCost(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return float64(len(values)) * PopVar(values)
}

// BinarySegmentation detects mean/variance shifts. Each round evaluates every
// active segment of length >= 6 at split points 2..len-3 and accepts the best
// split across all segments only if its cost reduction exceeds
// 3*ln(n)*var(values). At most min(10, n/10) rounds are run.
func BinarySegmentation(values []float64) *Segmentation {
	n := len(values)
	result := &Segmentation{Changepoints: []int{}}
	if n == 0 {
		return result
	}
	result.Penalty = 3 * math.Log(float64(n)) * PopVar(values)

	segments := []segment{{0, n}}
	changepoints := []int{}

	rounds := n / 10
	if rounds > 10 {
		rounds = 10
	}
	for r := 0; r < rounds; r++ {
		bestGain, bestIdx, bestSeg := -1.0, -1, -1

		for si, sg := range segments {
			seg := values[sg.start:sg.end]
			if len(seg) < 6 {
				continue
			}
			whole := segmentCost(seg)
			for i := 2; i < len(seg)-2; i++ {
				gain := whole - segmentCost(seg[:i]) - segmentCost(seg[i:])
				if gain > bestGain {
					bestGain, bestIdx, bestSeg = gain, sg.start+i, si
				}
			}
		}

		if bestSeg < 0 || bestGain <= result.Penalty {
			break
		}

		sg := segments[bestSeg]
		changepoints = append(changepoints, bestIdx)
		segments = append(segments[:bestSeg], append([]segment{{sg.start, bestIdx}, {bestIdx, sg.end}}, segments[bestSeg+1:]...)...)
	}

	sort.Ints(changepoints)
	bounds := append([]int{0}, changepoints...)
	bounds = append(bounds, n)
	for i := 0; i < len(bounds)-1; i++ {
		result.SegmentMeans = append(result.SegmentMeans, stat.Mean(values[bounds[i]:bounds[i+1]], nil))
	}
	result.Changepoints = changepoints
	return result
}
