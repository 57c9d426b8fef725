// Command shuprophet profiles a univariate series and forecasts it with a
// cross-validated ensemble.
//
// Usage:
//
//	shuprophet predict --values "1,2,3,..." --horizon 12
//	shuprophet predict --file sales.csv --column y --format yaml
//	shuprophet profile --file sales.csv --tool spectrum_analysis
//	shuprophet validate --values "..." --predictions "..."
//	shuprophet tools --match seasonal
//	shuprophet demo --points 120
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
