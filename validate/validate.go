// Package validate checks a finished forecast against its history. The
// checks are independent and stateless.
package validate

import (
	"errors"
	"math"

	"github.com/Yuuki0u0/shuprophet/stats"
)

var (
	// ErrEmptyHistory is returned when there is no history to compare with.
	ErrEmptyHistory = errors.New("validate: empty history")
	// ErrEmptyPredictions is returned when there is nothing to check.
	ErrEmptyPredictions = errors.New("validate: empty predictions")
)

// ID identifies a validator.
type ID string

const (
	Range      ID = "prediction_range_check"
	TrendCheck ID = "trend_consistency_check"
	Confidence ID = "confidence_scoring"
)

// Metadata describes a validator.
type Metadata struct {
	ID          ID       `json:"id"`
	Description string   `json:"description"`
	Triggers    []string `json:"triggers"`
}

// Catalog lists the validators in evaluation order.
func Catalog() []Metadata {
	return []Metadata{
		{ID: Range, Description: "Check predictions against 3-sigma statistical bounds.", Triggers: []string{"range", "bounds", "validate"}},
		{ID: TrendCheck, Description: "Verify predictions maintain historical trend direction.", Triggers: []string{"trend_check", "consistency"}},
		{ID: Confidence, Description: "Compute overall confidence score for predictions.", Triggers: []string{"confidence", "score"}},
	}
}

const sigmaBand = 3.0

func check(history, preds []float64) error {
	if len(history) == 0 {
		return ErrEmptyHistory
	}
	if len(preds) == 0 {
		return ErrEmptyPredictions
	}
	return nil
}

// Violation is one prediction outside the range bounds.
type Violation struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
	Bound string  `json:"bound"`
}

// RangeReport is the result of RangeCheck.
type RangeReport struct {
	Tool           ID          `json:"tool"`
	Bounds         [2]float64  `json:"bounds"`
	ViolationCount int         `json:"violation_count"`
	Violations     []Violation `json:"violations"`
	Pass           bool        `json:"pass"`
}

// RangeCheck flags predictions outside mean ± 3 std of history. At most
// ten violations are listed; the count covers all of them.
func RangeCheck(history, preds []float64) (*RangeReport, error) {
	if err := check(history, preds); err != nil {
		return nil, err
	}
	mean, std := stats.Mean(history), stats.PopStd(history)
	lower, upper := mean-sigmaBand*std, mean+sigmaBand*std

	violations := []Violation{}
	for i, p := range preds {
		switch {
		case p < lower:
			violations = append(violations, Violation{Index: i, Value: stats.Round4(p), Bound: "lower"})
		case p > upper:
			violations = append(violations, Violation{Index: i, Value: stats.Round4(p), Bound: "upper"})
		}
	}

	return &RangeReport{
		Tool:           Range,
		Bounds:         [2]float64{stats.Round4(lower), stats.Round4(upper)},
		ViolationCount: len(violations),
		Violations:     violations[:min(10, len(violations))],
		Pass:           len(violations) == 0,
	}, nil
}

// TrendReport is the result of TrendConsistency.
type TrendReport struct {
	Tool             ID      `json:"tool"`
	HistSlope        float64 `json:"hist_slope"`
	PredSlope        float64 `json:"pred_slope"`
	Consistent       bool    `json:"consistent"`
	ContinuityGap    float64 `json:"continuity_gap"`
	GapRatio         float64 `json:"gap_ratio"`
	SmoothTransition bool    `json:"smooth_transition"`
}

// slopes fits lines through history and predictions. A single prediction
// has slope 0, and so does a single-point history.
func slopes(history, preds []float64) (hist, pred float64) {
	if line, err := stats.LinearFit(history); err == nil {
		hist = line.Slope
	}
	if line, err := stats.LinearFit(preds); err == nil {
		pred = line.Slope
	}
	return hist, pred
}

// gapRatio is |preds[0] - last history value| in units of history std.
func gapRatio(history, preds []float64) (gap, ratio float64) {
	gap = math.Abs(preds[0] - history[len(history)-1])
	return gap, gap / (stats.PopStd(history) + 1e-10)
}

// TrendConsistency compares slope signs and the jump from the last
// observation to the first prediction. A historical slope within 1e-6 of
// zero is consistent with anything.
func TrendConsistency(history, preds []float64) (*TrendReport, error) {
	if err := check(history, preds); err != nil {
		return nil, err
	}
	hist, pred := slopes(history, preds)
	gap, ratio := gapRatio(history, preds)

	return &TrendReport{
		Tool:             TrendCheck,
		HistSlope:        stats.Round(hist, 6),
		PredSlope:        stats.Round(pred, 6),
		Consistent:       hist*pred >= 0 || math.Abs(hist) < 1e-6,
		ContinuityGap:    stats.Round4(gap),
		GapRatio:         stats.Round4(ratio),
		SmoothTransition: ratio < 1.0,
	}, nil
}

// Level buckets a confidence score.
type Level string

const (
	High   Level = "high"
	Medium Level = "medium"
	Low    Level = "low"
)

// ConfidenceReport is the result of Score.
type ConfidenceReport struct {
	Tool       ID      `json:"tool"`
	Confidence float64 `json:"confidence"`
	Level      Level   `json:"level"`
}

// Score starts at 1 and multiplies in penalties: 0.85 per prediction beyond
// 3 std of the history mean, 0.8 when the slopes disagree and the
// historical slope exceeds 1e-4 in magnitude, 0.75 when the first step
// jumps more than 2 std. The result is clamped to [0.1, 1].
func Score(history, preds []float64) (*ConfidenceReport, error) {
	if err := check(history, preds); err != nil {
		return nil, err
	}
	mean, std := stats.Mean(history), stats.PopStd(history)

	score := 1.0
	for _, p := range preds {
		if math.Abs(p-mean) > sigmaBand*std {
			score *= 0.85
		}
	}
	if len(preds) > 1 {
		hist, pred := slopes(history, preds)
		if hist*pred < 0 && math.Abs(hist) > 1e-4 {
			score *= 0.8
		}
	}
	if _, ratio := gapRatio(history, preds); ratio > 2.0 {
		score *= 0.75
	}
	score = max(0.1, min(1.0, score))

	level := Low
	switch {
	case score > 0.7:
		level = High
	case score > 0.4:
		level = Medium
	}
	return &ConfidenceReport{Tool: Confidence, Confidence: stats.Round(score, 3), Level: level}, nil
}

// Report bundles all three checks.
type Report struct {
	Range      *RangeReport      `json:"prediction_range_check"`
	Trend      *TrendReport      `json:"trend_consistency_check"`
	Confidence *ConfidenceReport `json:"confidence_scoring"`
}

// All runs every validator.
func All(history, preds []float64) (*Report, error) {
	rng, err := RangeCheck(history, preds)
	if err != nil {
		return nil, err
	}
	trend, err := TrendConsistency(history, preds)
	if err != nil {
		return nil, err
	}
	conf, err := Score(history, preds)
	if err != nil {
		return nil, err
	}
	return &Report{Range: rng, Trend: trend, Confidence: conf}, nil
}
