package reasoning

import (
	"github.com/Yuuki0u0/shuprophet/analysis"
	"github.com/Yuuki0u0/shuprophet/stats"
)

// Rule adds tools when its condition holds on a profile snapshot.
type Rule struct {
	Name string
	When func(p *analysis.Profile) bool
	Add  []analysis.ID
}

// DefaultRules are evaluated in order after the grounding tools have run.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "high_volatility",
			When: func(p *analysis.Profile) bool {
				vol, ok := analysis.Lookup[*analysis.VolatilityObservation](p, analysis.Volatility)
				return ok && vol.Level == "high"
			},
			Add: []analysis.ID{analysis.Multiscale, analysis.Anomaly},
		},
		{
			Name: "seasonality",
			When: func(p *analysis.Profile) bool {
				corr, ok := analysis.Lookup[*analysis.CorrelationObservation](p, analysis.Correlation)
				return ok && corr.HasSeasonality
			},
			Add: []analysis.ID{analysis.Spectrum, analysis.Seasonal},
		},
		{
			Name: "non_stationary",
			When: func(p *analysis.Profile) bool {
				st, ok := analysis.Lookup[*analysis.StationarityObservation](p, analysis.Stationarity)
				return ok && (st.Verdict == stats.VerdictNonStationary || st.Verdict == stats.VerdictDifferenceStationary)
			},
			Add: []analysis.ID{analysis.Differencing},
		},
		{
			Name: "changepoints",
			When: func(p *analysis.Profile) bool { return !p.Has(analysis.Changepoint) },
			Add:  []analysis.ID{analysis.Changepoint},
		},
	}
}

// SelectTools evaluates rules once against p and returns the tools they
// add, deduplicated in first-seen order and without tools p already holds.
func SelectTools(p *analysis.Profile, rules []Rule) []analysis.ID {
	seen := make(map[analysis.ID]bool)
	for _, id := range p.IDs() {
		seen[id] = true
	}

	var selected []analysis.ID
	for _, r := range rules {
		if !r.When(p) {
			continue
		}
		for _, id := range r.Add {
			if !seen[id] {
				seen[id] = true
				selected = append(selected, id)
			}
		}
	}
	return selected
}
