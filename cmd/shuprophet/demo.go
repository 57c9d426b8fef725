package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/Yuuki0u0/shuprophet/forecast"
	"github.com/Yuuki0u0/shuprophet/reasoning"
)

// scenario is a synthetic dataset. Period is the known seasonal period, or
// zero.
type scenario struct {
	Name     string
	Period   int
	generate func(n int, noise func() float64) []float64
}

var scenarios = []scenario{
	{
		Name: "linear_trend",
		generate: func(n int, noise func() float64) []float64 {
			out := make([]float64, n)
			for i := range out {
				out[i] = 10 + 0.5*float64(i) + noise()
			}
			return out
		},
	},
	{
		Name:   "seasonal",
		Period: 12,
		generate: func(n int, noise func() float64) []float64 {
			out := make([]float64, n)
			for i := range out {
				t := float64(i)
				out[i] = 50 + 0.2*t + 8*math.Sin(2*math.Pi*t/12) + 1.5*noise()
			}
			return out
		},
	},
	{
		Name: "random_walk",
		generate: func(n int, noise func() float64) []float64 {
			out := make([]float64, n)
			level := 100.0
			for i := range out {
				level += noise()
				out[i] = level
			}
			return out
		},
	},
	{
		Name: "level_shift",
		generate: func(n int, noise func() float64) []float64 {
			out := make([]float64, n)
			for i := range out {
				base := 20.0
				if i >= n/2 {
					base = 35
				}
				out[i] = base + noise()
			}
			return out
		},
	},
}

// demoRun is the holdout accuracy of one scenario.
type demoRun struct {
	Scenario  string           `json:"scenario"`
	Model     forecast.ModelID `json:"model"`
	Method    string           `json:"method"`
	TrainSize int              `json:"train_size"`
	TestSize  int              `json:"test_size"`
	RMSE      float64          `json:"rmse"`
	MAE       float64          `json:"mae"`
	MAPE      float64          `json:"mape"`
	// Coverage is the share of test points inside the forecast bounds.
	Coverage float64 `json:"coverage"`
	Fallback bool    `json:"fallback"`
}

type demoOutput struct {
	Points int       `json:"points"`
	Seed   uint64    `json:"seed"`
	Runs   []demoRun `json:"runs"`
}

func newDemoCmd(a *app) *cobra.Command {
	var (
		points int
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Forecast synthetic series and score them on a holdout",
		Long: `Generate trend, seasonal, random walk and level shift series, forecast
the last part of each from the rest and report RMSE, MAE, MAPE and the
coverage of the forecast bounds.

Example:
  shuprophet demo --points 144 --seed 7 --format text`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, func(ctx context.Context) error {
				if points < 2*a.cfg.Input.MinPoints {
					return fmt.Errorf("%w: --points must be at least %d", errTooFewPoints, 2*a.cfg.Input.MinPoints)
				}
				out, err := runDemo(ctx, a.engine(a.cfg.ReasoningSettings()), points, seed)
				if err != nil {
					return err
				}
				return a.emit(cmd.OutOrStdout(), out, func(w io.Writer) error {
					return renderDemo(w, out)
				})
			})
		},
	}

	cmd.Flags().IntVar(&points, "points", 120, "length of each synthetic series")
	cmd.Flags().Uint64Var(&seed, "seed", 42, "noise seed")
	return cmd
}

func runDemo(ctx context.Context, engine *reasoning.Engine, points int, seed uint64) (*demoOutput, error) {
	out := &demoOutput{Points: points, Seed: seed}
	for i, sc := range scenarios {
		src := rand.NewPCG(seed, seed+uint64(i))
		noise := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
		series := sc.generate(points, noise.Rand)

		testSize := holdoutSize(points, sc.Period)
		train, test := series[:points-testSize], series[points-testSize:]

		res, err := engine.Predict(ctx, train, testSize)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sc.Name, err)
		}
		rmse, mae, mape := accuracy(test, res.Predictions)
		out.Runs = append(out.Runs, demoRun{
			Scenario:  sc.Name,
			Model:     res.Model,
			Method:    res.Method,
			TrainSize: len(train),
			TestSize:  testSize,
			RMSE:      rmse,
			MAE:       mae,
			MAPE:      mape,
			Coverage:  coverage(test, res.Lower, res.Upper),
			Fallback:  res.Fallback,
		})
	}
	return out, nil
}

// holdoutSize is a fifth of the series, at least one period, clamped to
// [3, 30].
func holdoutSize(n, period int) int {
	size := n / 5
	if period > 0 {
		size = max(size, period)
	}
	return max(min(size, 30), 3)
}

// accuracy returns RMSE, MAE and MAPE in percent. Zero actuals are left out
// of MAPE's sum but not its denominator.
func accuracy(actual, predicted []float64) (rmse, mae, mape float64) {
	n := min(len(actual), len(predicted))
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		d := actual[i] - predicted[i]
		rmse += d * d
		mae += math.Abs(d)
		if actual[i] != 0 {
			mape += math.Abs(d) / math.Abs(actual[i]) * 100
		}
	}
	return math.Sqrt(rmse / float64(n)), mae / float64(n), mape / float64(n)
}

func coverage(actual, lower, upper []float64) float64 {
	n := min(len(actual), len(lower), len(upper))
	if n == 0 {
		return 0
	}
	inside := 0
	for i := 0; i < n; i++ {
		if actual[i] >= lower[i] && actual[i] <= upper[i] {
			inside++
		}
	}
	return float64(inside) / float64(n)
}
