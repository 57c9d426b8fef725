package ensemble

import (
	"math"

	"github.com/Yuuki0u0/shuprophet/forecast"
)

// Score is one model's cross-validation error.
type Score struct {
	Model forecast.ModelID
	Error float64
}

// Choose applies the conservative selection rule to scores given in bank
// order. The best-scoring model (first on ties) replaces defaultModel only
// when its error is strictly below ratio times the default's error.
// Otherwise the default is kept if it was scored, else the best model wins.
func Choose(scores []Score, defaultModel forecast.ModelID, ratio float64) forecast.ModelID {
	if len(scores) == 0 {
		return defaultModel
	}

	best := scores[0]
	defaultErr := math.Inf(1)
	hasDefault := false
	for _, s := range scores {
		if s.Error < best.Error {
			best = s
		}
		if s.Model == defaultModel {
			defaultErr = s.Error
			hasDefault = true
		}
	}

	if best.Model != defaultModel && best.Error < defaultErr*ratio {
		return best.Model
	}
	if hasDefault {
		return defaultModel
	}
	return best.Model
}
