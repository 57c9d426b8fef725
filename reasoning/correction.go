package reasoning

import (
	"fmt"

	"github.com/Yuuki0u0/shuprophet/stats"
)

// DefaultBiasThreshold is the smallest mean CV residual worth removing.
const DefaultBiasThreshold = 0.01

// Correction records one post-predict bias correction decision.
type Correction struct {
	Applied bool `json:"applied"`
	// MeanBias is nil when there were too few residuals to estimate it.
	MeanBias *float64 `json:"mean_bias,omitempty"`
}

// Thought describes the decision in the trajectory.
func (c Correction) Thought() string {
	switch {
	case c.MeanBias == nil:
		return "No CV residuals available, skipping post-predict."
	case !c.Applied:
		return fmt.Sprintf("Mean bias too small (%+.4f), skipping.", *c.MeanBias)
	default:
		return fmt.Sprintf("Post-predict: subtracted mean bias %+.4f.", *c.MeanBias)
	}
}

// Correct subtracts the mean CV residual from every prediction when at
// least two residuals exist and the mean's magnitude reaches threshold.
// Otherwise preds is returned unchanged. The input slice is never modified.
func Correct(preds, residuals []float64, threshold float64) ([]float64, Correction) {
	if len(residuals) < 2 {
		return preds, Correction{}
	}
	bias := stats.Mean(residuals)
	rounded := stats.Round4(bias)
	if bias > -threshold && bias < threshold {
		return preds, Correction{MeanBias: &rounded}
	}

	out := make([]float64, len(preds))
	for i, p := range preds {
		out[i] = p - bias
	}
	return out, Correction{Applied: true, MeanBias: &rounded}
}
