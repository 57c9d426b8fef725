package autoarima

import (
	"errors"
	"math"
	"testing"

	"github.com/Yuuki0u0/shuprophet/arima"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if len(config.PValues) != 4 || config.PValues[3] != 5 {
		t.Errorf("Expected PValues=[1 2 3 5], got %v", config.PValues)
	}
	if len(config.DValues) != 2 || len(config.QValues) != 2 {
		t.Errorf("Expected two d and two q values, got %v and %v", config.DValues, config.QValues)
	}
	if config.Criterion != "aic" {
		t.Errorf("Expected Criterion='aic', got %s", config.Criterion)
	}
	if config.Fallback != (arima.Order{P: 1, D: 1, Q: 0}) {
		t.Errorf("Expected fallback ARIMA(1,1,0), got %s", config.Fallback)
	}
}

func TestSearchLinearTrend(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i + 1)
	}

	result, err := Search(values, nil)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if result.Order != (arima.Order{P: 1, D: 1, Q: 0}) {
		t.Errorf("Expected ARIMA(1,1,0), got %s", result.Order)
	}
	if result.ModelsEvaluated != 16 {
		t.Errorf("Expected all 16 orders to fit, got %d", result.ModelsEvaluated)
	}
	if result.UsedFallback {
		t.Error("Fallback should not be used")
	}

	forecasts, err := result.Predict(5)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for i, f := range forecasts {
		if math.Abs(f-float64(21+i)) > 1e-6 {
			t.Errorf("Forecast %d: expected %d, got %f", i, 21+i, f)
		}
	}
}

func TestSearchConstantSeries(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 5
	}

	result, err := Search(values, DefaultConfig())
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	forecasts, _ := result.Predict(3)
	for i, f := range forecasts {
		if math.Abs(f-5) > 1e-9 {
			t.Errorf("Forecast %d: expected 5, got %f", i, f)
		}
	}
}

func TestSearchFallback(t *testing.T) {
	values := make([]float64, 12)
	for i := range values {
		values[i] = float64(i%3) + float64(i)
	}

	config := DefaultConfig()
	config.PValues = []int{5}

	result, err := Search(values, config)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if !result.UsedFallback {
		t.Error("Expected the fallback order to be used")
	}
	if result.Order != config.Fallback {
		t.Errorf("Expected %s, got %s", config.Fallback, result.Order)
	}
	if result.ModelsEvaluated != 0 {
		t.Errorf("Expected no grid order to fit, got %d", result.ModelsEvaluated)
	}
}

func TestSearchTooShort(t *testing.T) {
	_, err := Search([]float64{1, 2, 3, 4, 5, 6, 7, 8}, nil)
	if !errors.Is(err, ErrNoModel) {
		t.Errorf("Expected ErrNoModel, got %v", err)
	}
}

func TestSearchCriterion(t *testing.T) {
	n := 120
	values := make([]float64, n)
	values[0] = 100
	for i := 1; i < n; i++ {
		values[i] = 0.6*(values[i-1]-100) + 100 + float64(i%7-3)/3
	}

	for _, name := range []string{"aic", "aicc", "bic"} {
		config := DefaultConfig()
		config.Criterion = name

		result, err := Search(values, config)
		if err != nil {
			t.Fatalf("%s: search failed: %v", name, err)
		}
		if math.IsInf(result.Criterion, 0) || math.IsNaN(result.Criterion) {
			t.Errorf("%s: criterion should be finite, got %f", name, result.Criterion)
		}
		t.Logf("%s selected %s", name, result.Order)
	}
}

func TestResultWithoutModel(t *testing.T) {
	var r Result
	if _, err := r.Predict(3); !errors.Is(err, arima.ErrNotFitted) {
		t.Errorf("Expected ErrNotFitted, got %v", err)
	}
	if r.Residuals() != nil {
		t.Error("Expected nil residuals")
	}
}
