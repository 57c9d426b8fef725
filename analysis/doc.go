// Package analysis implements the profiling tools run over a single series:
// seven statistical tools (trend, volatility, anomalies, stationarity,
// distribution, changepoints, autocorrelation) and five spectral and
// decomposition tools.
//
// Each tool is a value implementing Tool. Its Metadata is static and its
// Run method returns a typed observation embedding Header, so callers can
// recover concrete fields with Lookup:
//
//	reg := analysis.DefaultRegistry()
//	out := reg.Run(analysis.Volatility, values)
//	if out.OK() {
//	    profile.Set(out.Observation)
//	}
//	vol, _ := analysis.Lookup[*analysis.VolatilityObservation](profile, analysis.Volatility)
//
// Degenerate input maps to documented defaults instead of NaN. The one
// exception is the volatility coefficient of variation, which is +Inf for a
// zero-mean series and encodes as JSON null.
package analysis
