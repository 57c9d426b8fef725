package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Yuuki0u0/shuprophet/analysis"
	"github.com/Yuuki0u0/shuprophet/forecast"
	"github.com/Yuuki0u0/shuprophet/validate"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func title(w io.Writer, s string) {
	fmt.Fprintln(w, titleStyle.Render(s))
}

func field(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "  %s %v\n", labelStyle.Render(label), value)
}

func status(ok bool, yes, no string) string {
	if ok {
		return okStyle.Render(yes)
	}
	return warnStyle.Render(no)
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}

func sortedWeights(weights map[forecast.ModelID]float64) string {
	ids := make([]string, 0, len(weights))
	for id := range weights {
		ids = append(ids, string(id))
	}
	slices.Sort(ids)
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%s=%.3f", id, weights[forecast.ModelID(id)])
	}
	return strings.Join(parts, " ")
}

func renderPrediction(w io.Writer, out *predictOutput) error {
	res := out.Result
	title(w, "Forecast")
	field(w, "session", res.SessionID)
	field(w, "model", fmt.Sprintf("%s (%s)", res.Model, res.Method))
	if res.Fallback {
		field(w, "fallback", warnStyle.Render("linear extrapolation"))
	}
	field(w, "weights", sortedWeights(res.Weights))
	field(w, "steps", res.Horizon)
	field(w, "predictions", joinFloats(res.Predictions))
	field(w, "lower", joinFloats(res.Lower))
	field(w, "upper", joinFloats(res.Upper))
	for _, c := range res.Corrections {
		if c.MeanBias != nil {
			field(w, "bias corrected", fmt.Sprintf("%+.4f", *c.MeanBias))
		}
	}

	fmt.Fprintln(w)
	title(w, "Trajectory")
	for _, s := range res.Trajectory.Steps {
		fmt.Fprintf(w, "  %2d. %s %s\n", s.Number, s.Action, mutedStyle.Render(s.Thought))
	}

	if out.Validation != nil {
		fmt.Fprintln(w)
		renderValidation(w, out.Validation)
	}
	return nil
}

func renderValidation(w io.Writer, r *validate.Report) {
	title(w, "Validation")
	field(w, "range", status(r.Range.Pass, "pass", fmt.Sprintf("%d violations", r.Range.ViolationCount)))
	field(w, "trend", status(r.Trend.Consistent, "consistent", "reversed"))
	field(w, "transition", status(r.Trend.SmoothTransition, "smooth", fmt.Sprintf("gap ratio %.3f", r.Trend.GapRatio)))
	field(w, "confidence", fmt.Sprintf("%.3f (%s)", r.Confidence.Confidence, r.Confidence.Level))
}

func renderProfile(w io.Writer, out *profileOutput) error {
	title(w, fmt.Sprintf("Profile of %d points", out.Points))
	for _, id := range out.Profile.IDs() {
		obs, _ := out.Profile.Get(id)
		data, err := json.Marshal(obs)
		if err != nil {
			return err
		}
		field(w, string(id), string(data))
	}
	for _, id := range out.Skipped.ids() {
		field(w, string(id), warnStyle.Render("skipped: "+out.Skipped[id]))
	}
	return nil
}

func renderTools(w io.Writer, out *toolsOutput) error {
	title(w, "Analysis tools")
	for _, md := range out.Tools {
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Width(24).Render(string(md.ID)), md.Description)
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Width(24).Render(""), mutedStyle.Render(string(md.Category)+": "+strings.Join(md.Triggers, ", ")))
	}
	if len(out.Validators) > 0 {
		fmt.Fprintln(w)
		title(w, "Validators")
		for _, md := range out.Validators {
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Width(24).Render(string(md.ID)), md.Description)
		}
	}
	return nil
}

func renderDemo(w io.Writer, out *demoOutput) error {
	title(w, fmt.Sprintf("Holdout accuracy (%d points, seed %d)", out.Points, out.Seed))
	header := fmt.Sprintf("  %-14s %-22s %5s %10s %10s %9s %8s", "scenario", "model", "test", "rmse", "mae", "mape%", "cover")
	fmt.Fprintln(w, mutedStyle.Render(header))
	for _, r := range out.Runs {
		model := string(r.Model)
		if r.Fallback {
			model += "*"
		}
		fmt.Fprintf(w, "  %-14s %-22s %5d %10.4f %10.4f %9.2f %8.2f\n",
			r.Scenario, model, r.TestSize, r.RMSE, r.MAE, r.MAPE, r.Coverage)
	}
	return nil
}

// skipped maps a tool to the reason it produced no observation.
type skipped map[analysis.ID]string

func (s skipped) ids() []analysis.ID {
	ids := make([]analysis.ID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
