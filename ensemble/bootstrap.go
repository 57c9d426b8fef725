package ensemble

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Yuuki0u0/shuprophet/stats"
	"github.com/Yuuki0u0/shuprophet/timeseries"
)

// BootstrapCI perturbs preds with Gaussian noise whose standard deviation is
// that of the history's first differences (1 when there are none) and
// returns the 2.5th and 97.5th percentiles per step over replicas draws.
// The bounds are clamped so that lower <= preds <= upper holds for every
// step.
func BootstrapCI(history, preds []float64, replicas int, seed uint64) (lower, upper []float64) {
	sigma := 1.0
	if len(history) > 1 {
		sigma = timeseries.New(history).Diff().Std()
	}

	h := len(preds)
	lower = make([]float64, h)
	upper = make([]float64, h)
	if replicas < 1 {
		copy(lower, preds)
		copy(upper, preds)
		return lower, upper
	}

	noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: rand.NewPCG(seed, seed)}
	columns := make([][]float64, h)
	for i := range columns {
		columns[i] = make([]float64, replicas)
	}
	for r := 0; r < replicas; r++ {
		for i, p := range preds {
			columns[i][r] = p + noise.Rand()
		}
	}

	for i, col := range columns {
		lower[i] = min(stats.Percentile(col, 2.5), preds[i])
		upper[i] = max(stats.Percentile(col, 97.5), preds[i])
	}
	return lower, upper
}
