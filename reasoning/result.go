package reasoning

import (
	"github.com/Yuuki0u0/shuprophet/analysis"
	"github.com/Yuuki0u0/shuprophet/ensemble"
	"github.com/Yuuki0u0/shuprophet/forecast"
	"github.com/Yuuki0u0/shuprophet/stats"
)

// Result is the fully resolved outcome of one session. It shares no
// state with the engine.
type Result struct {
	SessionID   string                       `json:"session_id"`
	Model       forecast.ModelID             `json:"model"`
	Method      string                       `json:"method"`
	Predictions []float64                    `json:"predictions"`
	Weights     map[forecast.ModelID]float64 `json:"weights"`
	Lower       []float64                    `json:"ci_lower"`
	Upper       []float64                    `json:"ci_upper"`
	ModelsUsed  []forecast.ModelID           `json:"models_used"`
	CVErrors    map[forecast.ModelID]float64 `json:"cv_errors"`
	Profile     *analysis.Profile            `json:"data_profile"`
	Trajectory  Trajectory                   `json:"trajectory"`
	Corrections []Correction                 `json:"correction_log"`
	Horizon     int                          `json:"steps"`
	// Fallback is set when every forecaster failed and the predictions are
	// a linear extrapolation.
	Fallback bool `json:"fallback"`
}

func newResult(st *state, ens *ensemble.Result, fallback bool, preds, lower, upper []float64, corrections []Correction) *Result {
	if corrections == nil {
		corrections = []Correction{}
	}
	weights := make(map[forecast.ModelID]float64, len(ens.Weights))
	for k, v := range ens.Weights {
		weights[k] = v
	}
	cvErrors := make(map[forecast.ModelID]float64, len(ens.CVErrors))
	for k, v := range ens.CVErrors {
		cvErrors[k] = stats.Round(v, 6)
	}

	return &Result{
		SessionID:   st.id,
		Model:       ens.Model,
		Method:      ens.Method,
		Predictions: stats.RoundAll(preds),
		Weights:     weights,
		Lower:       stats.RoundAll(lower),
		Upper:       stats.RoundAll(upper),
		ModelsUsed:  append([]forecast.ModelID{}, ens.ModelsUsed...),
		CVErrors:    cvErrors,
		Profile:     st.profile.Clone(),
		Trajectory:  st.memory.Snapshot(),
		Corrections: corrections,
		Horizon:     st.horizon,
		Fallback:    fallback,
	}
}
